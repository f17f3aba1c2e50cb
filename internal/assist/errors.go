package assist

import (
	"errors"
	"fmt"
)

// Common errors returned by the assist package and its providers.
var (
	// ErrCompletionFailed is returned when a completion fails for any general reason.
	ErrCompletionFailed = errors.New("failed to get a completion from the language model")

	// ErrInvalidResponse is returned when the model reply cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrEmptyResponse is returned when the model answered without any content.
	ErrEmptyResponse = errors.New("no response content from AI")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during completion")

	// ErrInvalidConfig is returned when the provider configuration is invalid.
	ErrInvalidConfig = errors.New("invalid language model configuration")
)

// UpstreamError is returned when the provider answered with a non-success
// HTTP status. Body is kept for logging and must not reach clients.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface for UpstreamError.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("OpenRouter API error: %d", e.StatusCode)
}

// Unwrap lets callers match UpstreamError as ErrCompletionFailed.
func (e *UpstreamError) Unwrap() error {
	return ErrCompletionFailed
}

// IsRetryable reports whether the status is worth another attempt.
func (e *UpstreamError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// AsUpstreamError extracts an UpstreamError from err's chain.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}
