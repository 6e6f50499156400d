package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation signals a malformed or type-mismatched input field.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidArgument signals a missing or empty required identifier.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrQueryFailed signals a warehouse execution failure.
	ErrQueryFailed = errors.New("query failed")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field    string
	Expected string
	Got      any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %v", e.Field, e.Expected, e.Got)
}

// ValidationError wraps ErrValidation with per-field detail.
// A request either normalizes fully or is rejected as a whole.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error from field entries.
func NewValidationError(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// QueryError wraps ErrQueryFailed with the failing operation and cause.
// The message never carries SQL text or credentials.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrQueryFailed.Error(), e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return ErrQueryFailed }

// NewQueryError creates a query execution error.
func NewQueryError(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}
