package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/job"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrForeignKey),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, service.ErrNoValidTasks),
		errors.Is(err, service.ErrMissingPrompt):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrAssistInProgress),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Unavailable errors
	case errors.Is(err, service.ErrAssistantUnavailable),
		errors.Is(err, job.ErrQueueFull),
		errors.Is(err, job.ErrRunnerStopped):
		return http.StatusServiceUnavailable

	// Language model errors
	case errors.Is(err, assist.ErrEmptyResponse):
		return http.StatusInternalServerError

	case errors.Is(err, service.ErrNoSubtasks),
		errors.Is(err, assist.ErrInvalidResponse),
		errors.Is(err, assist.ErrContentBlocked),
		errors.Is(err, assist.ErrCompletionFailed),
		errors.Is(err, assist.ErrTransientFailure):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	// Bad request errors
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrInvalidFormat):
		return "Invalid file format"

	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, store.ErrForeignKey):
		return "Parent task not found"

	case errors.Is(err, service.ErrInvalidMove):
		return "A task cannot be moved onto itself or one of its subtasks"

	case errors.Is(err, service.ErrNoValidTasks):
		return "No valid tasks found in the imported file"

	case errors.Is(err, service.ErrMissingPrompt):
		return "Missing prompt or type"

	// Conflict errors
	case errors.Is(err, service.ErrAssistInProgress):
		return "An AI operation is already running for this task"

	// Unavailable errors
	case errors.Is(err, service.ErrAssistantUnavailable):
		return "API key not configured"

	case errors.Is(err, job.ErrQueueFull):
		return "Job queue is full, try again later"

	case errors.Is(err, job.ErrRunnerStopped):
		return "Background jobs are not accepted while shutting down"

	// Language model errors
	case errors.Is(err, assist.ErrEmptyResponse):
		return "No response content from AI"

	case errors.Is(err, service.ErrNoSubtasks):
		return "No subtasks generated"

	case errors.Is(err, assist.ErrContentBlocked):
		return "The AI provider blocked the request"

	case errors.Is(err, assist.ErrInvalidResponse):
		return "Could not understand the AI response"

	case errors.Is(err, assist.ErrTransientFailure),
		errors.Is(err, assist.ErrCompletionFailed):
		if upstream, ok := assist.AsUpstreamError(err); ok {
			return upstream.Error()
		}
		return "The AI provider is unavailable"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// validationMessage turns a domain validation error into "Validation
// failed" or the detail that follows the wrapped sentinel.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if idx := strings.LastIndex(msg, prefix); idx >= 0 {
		detail := msg[idx+len(prefix):]
		if detail != "" {
			return strings.ToUpper(detail[:1]) + detail[1:]
		}
	}
	return "Validation failed"
}

// HandleAPIError writes the status and safe message for err. defaultMsg
// replaces the generic message when err maps to a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	if status == http.StatusInternalServerError && defaultMsg != "" &&
		!errors.Is(err, assist.ErrEmptyResponse) {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a request that failed
// decoding or struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	message := SanitizeValidationError(err)
	if errors.As(err, &validationErr) {
		message = fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'MoveTaskRequest.Lane' Error:Field validation for 'Lane' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID format"
	case "gte":
		return "must not be negative"
	default:
		return "validation failed"
	}
}
