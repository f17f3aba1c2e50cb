package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// Task validation errors. Each wraps ErrValidation so callers can match
// either the specific condition or the whole class.
var (
	ErrTaskIDEmpty        = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrTaskTitleEmpty     = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong   = fmt.Errorf("%w: task title is too long", ErrValidation)
	ErrInvalidLane        = fmt.Errorf("%w: invalid lane", ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority    = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidDifficulty  = fmt.Errorf("%w: invalid difficulty", ErrValidation)
	ErrInvalidEnergyLevel = fmt.Errorf("%w: invalid energy level", ErrValidation)
	ErrNegativeMinutes    = fmt.Errorf("%w: minutes cannot be negative", ErrValidation)
	ErrSelfParent         = fmt.Errorf("%w: task cannot be its own parent", ErrValidation)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the named field.
// A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
