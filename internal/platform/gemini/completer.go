package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/redact"
	"google.golang.org/genai"
)

// Completer implements assist.Completer using Gemini.
type Completer struct {
	logger      *slog.Logger
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	maxRetries  int
	baseDelay   time.Duration
}

// Option customizes a Completer.
type Option func(*options)

type options struct {
	baseURL   string
	baseDelay time.Duration
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithBaseDelay sets the first retry delay; later delays double.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) { o.baseDelay = d }
}

// validateConfig checks the settings Gemini needs before a client is built.
func validateConfig(cfg config.LLMConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", assist.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return fmt.Errorf("%w: gemini model cannot be empty", assist.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", assist.ErrInvalidConfig)
	}
	return nil
}

// NewCompleter creates a Completer with the provided configuration.
//
// Returns an error wrapping assist.ErrInvalidConfig when the API key or
// model is missing, or when the genai client cannot be created.
func NewCompleter(ctx context.Context, log *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Completer, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	o := options{baseDelay: time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", assist.ErrInvalidConfig, err)
	}

	return &Completer{
		logger:      log.With(slog.String("component", "gemini")),
		client:      client,
		model:       cfg.GeminiModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   o.baseDelay,
	}, nil
}

var _ assist.Completer = (*Completer)(nil)

// Complete sends the prompt to Gemini and returns the reply text.
//
// The request's Model is ignored because OpenRouter model names do not
// apply here; temperature and token limits are honoured when set.
func (c *Completer) Complete(ctx context.Context, req assist.CompletionRequest) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	}

	attempt := 0
	for {
		text, err := c.generate(ctx, req.Prompt, genCfg)
		if err == nil {
			log.DebugContext(ctx, "Gemini API call successful", slog.Int("attempt", attempt+1))
			return text, nil
		}

		log.WarnContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", redact.Error(err)))

		if !isTransient(err) {
			return "", err
		}
		if attempt >= c.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
				assist.ErrTransientFailure, c.maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(c.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %v", assist.ErrTransientFailure, ctx.Err())
		}
		attempt++
	}
}

// generate performs one GenerateContent call and classifies the result.
func (c *Completer) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &assist.UpstreamError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", assist.ErrCompletionFailed, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", assist.ErrTransientFailure, err)
	}

	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", assist.ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked (%s)", assist.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", assist.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", assist.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", assist.ErrEmptyResponse
	}
	return text, nil
}

func isTransient(err error) bool {
	if up, ok := assist.AsUpstreamError(err); ok {
		return up.IsRetryable()
	}
	return errors.Is(err, assist.ErrTransientFailure)
}
