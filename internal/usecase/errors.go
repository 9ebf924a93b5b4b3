package usecase

import (
	"errors"

	"reviewboard/pkg/utils"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("review not found")
	ErrMissingCredential = errors.New("ownership token required")
	ErrForbidden         = errors.New("ownership token does not match")
	ErrConflict          = errors.New("an identical review was posted moments ago")
	ErrStoreUnavailable  = errors.New("review store unavailable")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
