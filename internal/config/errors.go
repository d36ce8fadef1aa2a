package config

import (
	"errors"
	"fmt"
)

// Error kinds reported by the value extractors.
var (
	ErrMissingValue = errors.New("configuration value is missing")
	ErrInvalidValue = errors.New("configuration value is invalid")
)

// ValueError describes a configuration value that is missing or malformed.
// It matches ErrMissingValue or ErrInvalidValue with errors.Is.
type ValueError struct {
	Kind   error  // ErrMissingValue or ErrInvalidValue
	Path   string // full configuration path, including the key
	Value  string
	Reason string
	Shape  string // target type name for bind failures
	Err    error
}

func (e *ValueError) Error() string {
	var msg string
	switch {
	case e.Kind == ErrMissingValue:
		msg = fmt.Sprintf("configuration path '%s' value must be specified", e.Path)
	case e.Shape != "":
		msg = fmt.Sprintf("configuration path '%s' value must be a '%s' value", e.Path, e.Shape)
	default:
		msg = fmt.Sprintf("configuration path '%s' value '%s' %s", e.Path, e.Value, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueError) Is(target error) bool {
	return target == e.Kind
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

func missingValue(s Section, key string) error {
	return &ValueError{Kind: ErrMissingValue, Path: joinPath(s.Path(), key)}
}

func invalidValue(s Section, key, value, reason string) error {
	return &ValueError{Kind: ErrInvalidValue, Path: joinPath(s.Path(), key), Value: value, Reason: reason}
}
