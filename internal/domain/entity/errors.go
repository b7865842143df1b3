package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced document does not exist at
	// operation time.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a create operation is missing a required
	// field. It is raised before any store mutation.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyResponded is returned when a substitution request is responded
	// to after it already reached a terminal status.
	ErrAlreadyResponded = errors.New("substitution request already responded")
)

// ValidationError reports the first missing required field of a create input.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q is required", e.Field)
}

// Unwrap makes errors.Is(err, ErrValidation) hold for ValidationError values.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for a missing field.
func NewValidationError(field string) error {
	return &ValidationError{Field: field}
}
