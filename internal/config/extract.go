package config

import (
	"fmt"
	"net/url"
	"strings"
)

// RequiredAbsoluteURI reads key from s as an absolute URI with a scheme and
// an authority. Relative references are rejected.
func RequiredAbsoluteURI(s Section, key string) (*url.URL, error) {
	value, _ := s.Get(key)
	if value == "" {
		return nil, missingValue(s, key)
	}
	return parseAbsolute(s, key, value)
}

// OptionalURI reads key from s as an absolute URI, returning nil when the key
// is absent or empty.
func OptionalURI(s Section, key string) (*url.URL, error) {
	value, _ := s.Get(key)
	if value == "" {
		return nil, nil
	}
	return parseAbsolute(s, key, value)
}

func parseAbsolute(s Section, key, value string) (*url.URL, error) {
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, invalidValue(s, key, value, "must be a valid absolute URI")
	}
	return u, nil
}

// BoolOrDefault reports whether key holds "true", compared case-insensitively.
// Absent, empty and any other value yield false.
func BoolOrDefault(s Section, key string) bool {
	value, _ := s.Get(key)
	if value == "" {
		return false
	}
	return strings.EqualFold(value, "true")
}

// StringOrDefault returns the value at key, or def when it is absent or empty.
func StringOrDefault(s Section, key, def string) string {
	if value, _ := s.Get(key); value != "" {
		return value
	}
	return def
}

// Binder decodes a configuration section into a value of type T.
type Binder[T any] interface {
	Bind(s Section) (T, error)
}

// BindOrError binds s with b. A section with no content or a failed bind is
// reported as ErrInvalidValue naming the target type and the section path.
func BindOrError[T any](s Section, b Binder[T]) (T, error) {
	var zero T
	if !s.Exists() {
		return zero, &ValueError{Kind: ErrInvalidValue, Path: s.Path(), Shape: fmt.Sprintf("%T", zero)}
	}

	v, err := b.Bind(s)
	if err != nil {
		return zero, &ValueError{Kind: ErrInvalidValue, Path: s.Path(), Shape: fmt.Sprintf("%T", zero), Err: err}
	}
	return v, nil
}
