package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrCodeNotFound is returned when an operation references a legal code
	// that has not been registered.
	ErrCodeNotFound = errors.New("legal code not found")

	// ErrDuplicateVersion is returned when an inserted article version has
	// the same effective date and content hash as an existing one. Callers
	// treat it as an idempotent no-op, not a failure.
	ErrDuplicateVersion = errors.New("duplicate article version")

	// ErrLockUnavailable is returned when the per-code consolidation lock is
	// held by another worker. The amendment can be retried later.
	ErrLockUnavailable = errors.New("consolidation lock unavailable")

	// ErrAmendmentAltered is returned when an amendment ref was already
	// applied with a different instruction set. Provenance records are never
	// overwritten; the upstream source must issue a new ref.
	ErrAmendmentAltered = errors.New("amendment already applied with different instructions")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
