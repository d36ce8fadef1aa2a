package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyDelimiter separates segments of a configuration path, e.g. "Swagger:Documents:0".
const KeyDelimiter = ":"

// Section is a node of a hierarchical key/value configuration tree.
// Key lookups are case-insensitive.
type Section interface {
	// Key is the last segment of the section path.
	Key() string
	// Path is the full path of the section from the root.
	Path() string
	// Value returns the scalar held by the section, if any.
	Value() (string, bool)
	// Get returns the scalar at key, which may itself be a nested path.
	Get(key string) (string, bool)
	// Sub returns the child section at key. It never returns nil; a missing
	// child reports Exists() == false.
	Sub(key string) Section
	// Children returns the immediate child sections in source order.
	Children() []Section
	// Exists reports whether the section holds a value or any children.
	Exists() bool
	// Raw returns the decoded content of the section (maps, slices, scalars).
	Raw() any
}

// node is the single Section implementation shared by every source.
type node struct {
	key      string
	path     string
	value    *string
	children []*node
	raw      any
}

func (n *node) Key() string  { return n.key }
func (n *node) Path() string { return n.path }
func (n *node) Raw() any     { return n.raw }

func (n *node) Value() (string, bool) {
	if n.value == nil {
		return "", false
	}
	return *n.value, true
}

func (n *node) Exists() bool {
	return n.value != nil || len(n.children) > 0
}

func (n *node) Get(key string) (string, bool) {
	return n.Sub(key).Value()
}

func (n *node) Sub(key string) Section {
	current := n
	for _, segment := range strings.Split(key, KeyDelimiter) {
		current = current.child(segment)
	}
	return current
}

func (n *node) Children() []Section {
	sections := make([]Section, len(n.children))
	for i, child := range n.children {
		sections[i] = child
	}
	return sections
}

func (n *node) child(key string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.key, key) {
			return c
		}
	}
	return &node{key: key, path: joinPath(n.path, key)}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + KeyDelimiter + key
}

// Parse builds a section tree from YAML (or JSON) data. Mapping keys keep
// their document order.
func Parse(data []byte) (Section, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if doc.Kind == 0 {
		return &node{}, nil
	}
	return fromYAML(&doc, "", "")
}

// LoadFile reads a YAML configuration file into a section tree.
func LoadFile(path string) (Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func fromYAML(y *yaml.Node, key, path string) (*node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &node{key: key, path: path}, nil
		}
		return fromYAML(y.Content[0], key, path)
	case yaml.AliasNode:
		return fromYAML(y.Alias, key, path)
	}

	n := &node{key: key, path: path}
	switch y.Kind {
	case yaml.ScalarNode:
		if y.Tag != "!!null" {
			v := y.Value
			n.value = &v
		}
	case yaml.MappingNode:
		children, err := mappingChildren(y, path)
		if err != nil {
			return nil, err
		}
		n.children = children
	case yaml.SequenceNode:
		for i, item := range y.Content {
			k := strconv.Itoa(i)
			child, err := fromYAML(item, k, joinPath(path, k))
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
	}

	if err := y.Decode(&n.raw); err != nil {
		return nil, fmt.Errorf("configuration path '%s': %w", path, err)
	}
	return n, nil
}

// mappingChildren converts the entries of a mapping in source order. A merge
// key ("<<") contributes the entries of the mapping(s) it references at its
// position; keys written explicitly in the mapping take precedence, and among
// several merged mappings the first one wins.
func mappingChildren(y *yaml.Node, path string) ([]*node, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(y.Content); i += 2 {
		if !isMergeKey(y.Content[i]) {
			explicit[strings.ToLower(y.Content[i].Value)] = true
		}
	}

	var children []*node
	seen := make(map[string]bool)
	add := func(child *node) {
		k := strings.ToLower(child.key)
		if seen[k] {
			return
		}
		seen[k] = true
		children = append(children, child)
	}

	for i := 0; i+1 < len(y.Content); i += 2 {
		key, value := y.Content[i], y.Content[i+1]

		if !isMergeKey(key) {
			child, err := fromYAML(value, key.Value, joinPath(path, key.Value))
			if err != nil {
				return nil, err
			}
			add(child)
			continue
		}

		sources := []*yaml.Node{value}
		if value.Kind == yaml.SequenceNode {
			sources = value.Content
		}
		for _, source := range sources {
			merged, err := fromYAML(source, "", path)
			if err != nil {
				return nil, err
			}
			for _, child := range merged.children {
				if !explicit[strings.ToLower(child.key)] {
					add(child)
				}
			}
		}
	}
	return children, nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == "<<" && k.ShortTag() == "!!merge"
}

// FromSettings builds a section tree from a decoded settings map such as the
// one returned by viper.AllSettings. Map keys have no source order: integer
// keys are enumerated first in numeric order, the rest follow sorted.
func FromSettings(settings map[string]any) Section {
	return fromValue(settings, "", "")
}

func fromValue(v any, key, path string) *node {
	n := &node{key: key, path: path, raw: v}
	switch t := v.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
		for _, k := range keys {
			n.children = append(n.children, fromValue(t[k], k, joinPath(path, k)))
		}
	case []any:
		for i, item := range t {
			k := strconv.Itoa(i)
			n.children = append(n.children, fromValue(item, k, joinPath(path, k)))
		}
	default:
		s := fmt.Sprint(t)
		n.value = &s
	}
	return n
}

// keyLess orders "2" before "10" so that index keys keep their list order
func keyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
