package service

import (
	"errors"
	"fmt"

	"github.com/eisenboard/eisenboard-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskNotFound indicates the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrParentNotFound indicates a subtask names a parent that does not exist.
	// API layer should map this to HTTP 400 Bad Request.
	ErrParentNotFound = errors.New("parent task not found")

	// ErrInvalidMove indicates a task was dropped onto itself or one of its
	// own subtasks. API layer should map this to HTTP 400 Bad Request.
	ErrInvalidMove = errors.New("invalid move")

	// ErrNoValidTasks indicates an import contained nothing usable.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoValidTasks = errors.New("no valid tasks found in the imported file")

	// ErrAssistantUnavailable indicates no language model is configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrAssistantUnavailable = errors.New("API key not configured")

	// ErrAssistInProgress indicates an assist operation is already running
	// for the task. API layer should map this to HTTP 409 Conflict.
	ErrAssistInProgress = errors.New("an assist operation is already running for this task")

	// ErrNoSubtasks indicates the model proposed no subtasks.
	// API layer should map this to HTTP 502 Bad Gateway.
	ErrNoSubtasks = errors.New("no subtasks generated")

	// ErrJobNotFound indicates the background job does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("job not found")

	// ErrMissingPrompt indicates a proxy request without prompt or type.
	// API layer should map this to HTTP 400 Bad Request.
	ErrMissingPrompt = errors.New("missing prompt or type")
)

// ServiceError wraps errors from the service layer with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "add_task", "move_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError for operation.
// Known sentinel errors are returned directly without wrapping, and
// store-level not-found errors are translated to their service equivalents.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrTaskNotFound, ErrParentNotFound, ErrInvalidMove, ErrNoValidTasks,
		ErrAssistantUnavailable, ErrAssistInProgress, ErrNoSubtasks, ErrJobNotFound,
		ErrMissingPrompt,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	if errors.Is(err, store.ErrJobNotFound) {
		return ErrJobNotFound
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
