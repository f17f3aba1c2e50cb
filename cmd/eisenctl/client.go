package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// client is a thin JSON client for the Eisenboard HTTP API.
type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// response is a successful API reply.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// decode unmarshals the body into v.
func (r *response) decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// attachmentName returns the file name from a Content-Disposition header.
func (r *response) attachmentName() string {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// apiError is a non-2xx reply from the server.
type apiError struct {
	StatusCode int
	Message    string
	TraceID    string
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
	if e.TraceID != "" {
		msg += " (trace " + e.TraceID + ")"
	}
	return msg
}

// do sends a request with an optional JSON body. Raw byte bodies are sent
// as is. Non-2xx replies are returned as *apiError.
func (c *client) do(ctx context.Context, method, path string, body interface{}) (*response, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var payload struct {
			Error   string `json:"error"`
			TraceID string `json:"trace_id"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.TraceID = payload.TraceID
		}
		return nil, apiErr
	}

	return &response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
