package xltemplate

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRowKind = errors.New("unknown settings row kind")
	ErrUnknownStyle   = errors.New("unknown style name")
	ErrUnknownOption  = errors.New("unknown validation option")
	ErrMissingHeader  = errors.New("HEADER row is missing")
	ErrNoColumns      = errors.New("no column has a non-blank HEADER")
	ErrNoDataRows     = errors.New("no data rows found")
)

// ConfigurationError reports bad settings, option tables or arguments. It is
// raised before anything is rendered.
type ConfigurationError struct {
	Component string
	Key       string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %q: %v", e.Component, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(component, key string, err error) error {
	return &ConfigurationError{Component: component, Key: key, Err: err}
}

// StructureError reports a rendered view whose header or data band cannot be
// located.
type StructureError struct {
	Sheet string
	Err   error
}

func (e *StructureError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q: malformed structure: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("malformed structure: %v", e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// DataIntegrityError reports a requested split value that does not occur in a
// template's split column.
type DataIntegrityError struct {
	Template string
	Column   string
	Value    string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("template %q: value %q not found in column %q", e.Template, e.Value, e.Column)
}

// MissingDependencyError reports an external tool that is required but not
// installed.
type MissingDependencyError struct {
	Tool string
	Err  error
}

func (e *MissingDependencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("required tool %q is not available: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("required tool %q is not available", e.Tool)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}
