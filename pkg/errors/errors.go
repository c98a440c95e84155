// Package errors defines the failures tablemerge reports while loading,
// merging and writing tables. A failure is matched by kind with Is
// (ErrNotFound, ErrInvalidInput, ErrCanceled, ErrMissingHeader) and
// inspected with As to learn which source, line or option caused it.
package errors

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
)

// New, Is and As mirror the standard library so callers need a single
// errors import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

var (
	// ErrNotFound matches a source or config file that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput matches every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled matches work stopped by its context.
	ErrCanceled = errors.New("operation canceled")

	// ErrMissingHeader matches a tabular source with no header row.
	ErrMissingHeader = errors.New("missing header")
)

// ValidationError rejects an option, flag or column definition before any
// source is read.
type ValidationError struct {
	Field   string // option or flag name, e.g. "key_field"
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is reports ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError rejects value for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError is a config file or column definition that could not be
// loaded.
type ConfigError struct {
	Component string // "config file", "columns"
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a failure of component.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError is malformed content in a source or config file. Line and
// Column are 1-based and zero when the position is unknown.
type ParseError struct {
	Format  string // "csv", "yaml"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error reads like a compiler diagnostic: file:line:col: format: message.
func (e *ParseError) Error() string {
	where := e.File
	if where != "" && e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError reports message for file without a position.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// MissingHeader reports a source that ended before its header row.
func MissingHeader(format, file string) *ParseError {
	return NewParseError(format, file, ErrMissingHeader.Error(), ErrMissingHeader)
}

// IOError is a failed open, read, write or rename of Path.
type IOError struct {
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, e.Path, e.Message)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports ErrNotFound when the underlying error is fs.ErrNotExist.
func (e *IOError) Is(target error) bool {
	return target == ErrNotFound && errors.Is(e.Err, fs.ErrNotExist)
}

// NewIOError wraps err from operation on path.
func NewIOError(operation, path string, err error) *IOError {
	e := &IOError{Operation: operation, Path: path, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// IsNotFound reports whether err names a missing source or file.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err rejected an input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsCanceled reports whether err came from a canceled context.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// WrapIO returns nil for a nil err, otherwise an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse returns nil for a nil err, otherwise a ParseError without a
// position.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapCanceled marks err as ErrCanceled and keeps it in the chain.
func WrapCanceled(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrCanceled, err)
}

// WrapRead classifies a failure while reading source. Context errors
// become ErrCanceled, CSV syntax errors become a ParseError at the
// offending line and column, anything else is an IOError.
func WrapRead(format, source string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapCanceled("read "+source, err)
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{
			Format:  format,
			File:    source,
			Line:    pe.Line,
			Column:  pe.Column,
			Message: pe.Err.Error(),
			Err:     err,
		}
	}
	return WrapIO("read", source, err)
}
