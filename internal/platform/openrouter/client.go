package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/redact"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 4 << 20

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client calls OpenRouter. It is safe for concurrent use.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float32
	maxTokens   int
	referer     string
	title       string
	maxRetries  int
	baseDelay   time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseDelay sets the first retry delay; later delays double.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a Client from the LLM configuration.
// Returns an error wrapping assist.ErrInvalidConfig when the API key or
// endpoint is missing.
func NewClient(cfg config.LLMConfig, log *slog.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key not configured", assist.ErrInvalidConfig)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint cannot be empty", assist.ErrInvalidConfig)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		referer:     cfg.Referer,
		title:       cfg.Title,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   time.Second,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		logger:      log.With(slog.String("component", "openrouter")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ assist.Completer = (*Client)(nil)

// Complete sends the prompt as a single user message and returns the
// content of the first choice.
func (c *Client) Complete(ctx context.Context, req assist.CompletionRequest) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body := chatRequest{
		Model:       firstNonEmpty(req.Model, c.model),
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	title := firstNonEmpty(req.Title, c.title)

	log.DebugContext(ctx, "sending completion request",
		slog.String("model", body.Model),
		slog.Int("prompt_length", len(req.Prompt)))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return "", fmt.Errorf("%w: %v", assist.ErrTransientFailure, err)
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", assist.ErrTransientFailure, err)
		}

		content, retry, err := c.do(ctx, payload, title)
		if err == nil {
			log.DebugContext(ctx, "completion succeeded",
				slog.Int("attempt", attempt+1),
				slog.Int("content_length", len(content)))
			return content, nil
		}

		log.WarnContext(ctx, "completion attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Bool("retryable", retry),
			slog.String("error", redact.Error(err)))
		if !retry {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
		assist.ErrTransientFailure, c.maxRetries, lastErr)
}

// do performs one HTTP round trip and reports whether a failure may be retried.
func (c *Client) do(ctx context.Context, payload []byte, title string) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if title != "" {
		httpReq.Header.Set("X-Title", title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, fmt.Errorf("%w: %v", assist.ErrTransientFailure, ctx.Err())
		}
		return "", true, fmt.Errorf("%w: request failed: %v", assist.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", true, fmt.Errorf("%w: failed to read response: %v", assist.ErrTransientFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstream := &assist.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
		return "", upstream.IsRetryable(), upstream
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", false, fmt.Errorf("%w: failed to decode response: %v", assist.ErrInvalidResponse, err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", false, fmt.Errorf("%w: %s", assist.ErrCompletionFailed, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", false, assist.ErrEmptyResponse
	}
	return decoded.Choices[0].Message.Content, false, nil
}

// sleep waits baseDelay * 2^(attempt-1) scaled by a jitter factor in [0.5, 1).
func (c *Client) sleep(ctx context.Context, attempt int) error {
	backoff := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
