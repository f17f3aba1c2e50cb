package assist

import "context"

// CompletionRequest is a single prompt sent to a language model.
// Zero values let the provider fall back to its configured defaults.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
	// Title is sent as the X-Title attribution header where supported.
	Title string
}

// Completer defines the interface for turning a prompt into model text.
// This interface serves as a boundary between the application core and
// external LLM services.
type Completer interface {
	// Complete sends the prompt and returns the raw text of the first
	// choice. Non-success upstream statuses are reported as *UpstreamError;
	// an empty reply is reported as ErrEmptyResponse.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
