package lanesight

import (
	"errors"

	"github.com/lanesight/lanesight/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation      = domain.ErrValidation
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrQueryFailed     = domain.ErrQueryFailed
)

// FieldError describes one rejected request attribute.
type FieldError struct {
	Field    string
	Expected string
	Got      any
}

// ValidationFields extracts per-field detail from a validation error.
// Returns nil when err is not a validation failure.
func ValidationFields(err error) []FieldError {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]FieldError, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = FieldError{Field: f.Field, Expected: f.Expected, Got: f.Got}
	}
	return out
}
