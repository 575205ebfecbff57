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
	ErrConflict      = errors.New("conflict")
)

// Invoice lifecycle errors. Each wraps a base sentinel so callers can match
// either the specific condition or the broad class.
var (
	// ErrInvoiceNotFound is returned when an invoice id resolves to nothing.
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)

	// ErrAlreadyCommitted is returned when an operation requires a PARSED
	// invoice but the invoice has already been posted.
	ErrAlreadyCommitted = fmt.Errorf("invoice already committed: %w", ErrConflict)

	// ErrNoLineItems is returned when a commit is attempted on an invoice
	// with an empty line-item set.
	ErrNoLineItems = fmt.Errorf("invoice has no line items: %w", ErrValidation)
)

// ErrorCode returns the stable machine-readable code for an error, or
// "INTERNAL" when the error does not map to a published condition.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		return "INVOICE_NOT_FOUND"
	case errors.Is(err, ErrAlreadyCommitted):
		return "ALREADY_COMMITTED"
	case errors.Is(err, ErrNoLineItems):
		return "NO_LINE_ITEMS"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

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
