package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/prasenjit/swagger-hub/internal/models"
)

// aggregateVersion is the OpenAPI version of the merged document.
const aggregateVersion = "3.0.3"

// merge combines docs into one document described by base.
//
// Direct-call documents keep their paths and get a path-level server pointing
// at the document's base address. Other documents are routed through the hub
// under their URL suffix. The same route declared by two documents is an
// error. So is a component name declared by two documents with different
// content, since $refs of the later document would resolve to the earlier
// one; identical redeclarations are kept once. Tags are merged first-wins.
func merge(base models.SwaggerOption, docs []Document, logger *slog.Logger) (*openapi3.T, error) {
	out := &openapi3.T{
		OpenAPI:    aggregateVersion,
		Info:       base.Info(),
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{},
	}

	owners := make(map[string]int)
	componentOwners := make(map[string]int)
	tags := make(map[string]bool)

	for _, doc := range docs {
		spec := doc.Spec
		if spec == nil {
			continue
		}
		logger := logger.With("document", doc.Index)

		if spec.Paths != nil {
			pathKeys := make([]string, 0, spec.Paths.Len())
			for key := range spec.Paths.Map() {
				pathKeys = append(pathKeys, key)
			}
			sort.Strings(pathKeys)

			for _, key := range pathKeys {
				item := spec.Paths.Value(key)
				if item == nil {
					continue
				}

				route := routePath(doc.Option, key)
				if owner, exists := owners[route]; exists {
					return nil, fmt.Errorf("path %s is declared by documents %d and %d", route, owner, doc.Index)
				}
				owners[route] = doc.Index

				if doc.Option.IsDirectCall {
					item.Servers = openapi3.Servers{{URL: doc.Option.ServerURL()}}
				}

				for _, op := range item.Operations() {
					appendParameters(op, item, doc.Option.Parameters)
					if op.Security == nil && len(spec.Security) > 0 {
						security := spec.Security
						op.Security = &security
					}
				}

				out.Paths.Set(route, item)
			}
		}

		if spec.Components != nil {
			c := componentMerge{owners: componentOwners, index: doc.Index, logger: logger}
			if err := c.merge(out.Components, spec.Components); err != nil {
				return nil, err
			}
		}

		for _, tag := range spec.Tags {
			if tag == nil || tags[tag.Name] {
				continue
			}
			tags[tag.Name] = true
			out.Tags = append(out.Tags, tag)
		}
	}

	return out, nil
}

// routePath returns the hub route of a document path
func routePath(opt models.SwaggerDocumentOption, key string) string {
	if opt.IsDirectCall || opt.URLSuffix == "" {
		return key
	}

	route := path.Join("/", strings.Trim(opt.URLSuffix, "/"), key)
	// path.Join drops a trailing slash the source path may depend on
	if strings.HasSuffix(key, "/") && !strings.HasSuffix(route, "/") {
		route += "/"
	}
	return route
}

// appendParameters adds configured parameters the operation does not declare
func appendParameters(op *openapi3.Operation, item *openapi3.PathItem, params []*openapi3.Parameter) {
	for _, p := range params {
		if op.Parameters.GetByInAndName(p.In, p.Name) != nil || item.Parameters.GetByInAndName(p.In, p.Name) != nil {
			continue
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: p})
	}
}

// componentMerge merges the components of one document into the aggregate
type componentMerge struct {
	owners map[string]int // kind/name -> declaring document
	index  int
	logger *slog.Logger
}

func (c componentMerge) merge(dst, src *openapi3.Components) error {
	steps := []func() error{
		func() error { return mergeMap(c, &dst.Schemas, src.Schemas, "schema") },
		func() error { return mergeMap(c, &dst.Parameters, src.Parameters, "parameter") },
		func() error { return mergeMap(c, &dst.Headers, src.Headers, "header") },
		func() error { return mergeMap(c, &dst.RequestBodies, src.RequestBodies, "requestBody") },
		func() error { return mergeMap(c, &dst.Responses, src.Responses, "response") },
		func() error { return mergeMap(c, &dst.SecuritySchemes, src.SecuritySchemes, "securityScheme") },
		func() error { return mergeMap(c, &dst.Examples, src.Examples, "example") },
		func() error { return mergeMap(c, &dst.Links, src.Links, "link") },
		func() error { return mergeMap(c, &dst.Callbacks, src.Callbacks, "callback") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func mergeMap[M ~map[string]V, V any](c componentMerge, dst *M, src M, kind string) error {
	if len(src) == 0 {
		return nil
	}
	if *dst == nil {
		*dst = make(M, len(src))
	}

	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := src[name]
		existing, exists := (*dst)[name]
		if !exists {
			(*dst)[name] = value
			c.owners[kind+"/"+name] = c.index
			continue
		}

		if !sameComponent(existing, value) {
			return fmt.Errorf("%s %s is declared differently by documents %d and %d", kind, name, c.owners[kind+"/"+name], c.index)
		}
		c.logger.Debug("identical component declared again", "kind", kind, "name", name)
	}
	return nil
}

// sameComponent compares two components by their JSON rendering
func sameComponent(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
