package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/job"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "task not found", err: service.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{name: "store job not found", err: store.ErrJobNotFound, expectedStatus: http.StatusNotFound},
		{name: "job not found", err: service.ErrJobNotFound, expectedStatus: http.StatusNotFound},
		{name: "validation", err: domain.ErrTaskTitleEmpty, expectedStatus: http.StatusBadRequest},
		{
			name:           "wrapped validation",
			err:            &service.ServiceError{Operation: "add_task", Message: "invalid", Err: domain.ErrInvalidLane},
			expectedStatus: http.StatusBadRequest,
		},
		{name: "invalid entity", err: store.ErrInvalidEntity, expectedStatus: http.StatusBadRequest},
		{name: "parent not found", err: service.ErrParentNotFound, expectedStatus: http.StatusBadRequest},
		{name: "invalid move", err: service.ErrInvalidMove, expectedStatus: http.StatusBadRequest},
		{name: "no valid import tasks", err: service.ErrNoValidTasks, expectedStatus: http.StatusBadRequest},
		{name: "missing prompt", err: service.ErrMissingPrompt, expectedStatus: http.StatusBadRequest},
		{name: "assist in progress", err: service.ErrAssistInProgress, expectedStatus: http.StatusConflict},
		{name: "assistant unavailable", err: service.ErrAssistantUnavailable, expectedStatus: http.StatusServiceUnavailable},
		{
			name:           "queue full through service error",
			err:            &service.ServiceError{Operation: "request_job", Message: "emit", Err: fmt.Errorf("submit: %w", job.ErrQueueFull)},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{name: "upstream error", err: &assist.UpstreamError{StatusCode: 401}, expectedStatus: http.StatusBadGateway},
		{
			name: "upstream retries exhausted",
			err: fmt.Errorf("breakdown: %w", fmt.Errorf("%w: exceeded maximum retry attempts (2): %w",
				assist.ErrTransientFailure, &assist.UpstreamError{StatusCode: 503})),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "transport retries exhausted",
			err:            fmt.Errorf("%w: request failed: connection refused", assist.ErrTransientFailure),
			expectedStatus: http.StatusBadGateway,
		},
		{name: "invalid import format", err: fmt.Errorf("%w: unexpected EOF", domain.ErrInvalidFormat), expectedStatus: http.StatusBadRequest},
		{name: "no subtasks", err: service.ErrNoSubtasks, expectedStatus: http.StatusBadGateway},
		{name: "empty response", err: assist.ErrEmptyResponse, expectedStatus: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("disk on fire"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{name: "nil error", err: nil, expectedMessage: "An unexpected error occurred"},
		{name: "task not found", err: service.ErrTaskNotFound, expectedMessage: "Task not found"},
		{name: "job not found", err: service.ErrJobNotFound, expectedMessage: "Job not found"},
		{name: "validation detail", err: domain.ErrTaskTitleEmpty, expectedMessage: "Task title cannot be empty"},
		{name: "bare validation", err: domain.ErrValidation, expectedMessage: "Validation failed"},
		{
			name:            "field validation",
			err:             domain.NewValidationError("type", "unknown job type", nil),
			expectedMessage: "Invalid type: unknown job type",
		},
		{name: "invalid ID", err: domain.ErrInvalidID, expectedMessage: "Invalid ID"},
		{name: "invalid format", err: fmt.Errorf("%w: unexpected EOF", domain.ErrInvalidFormat), expectedMessage: "Invalid file format"},
		{
			name: "upstream retries exhausted",
			err: fmt.Errorf("%w: exceeded maximum retry attempts (2): %w",
				assist.ErrTransientFailure, &assist.UpstreamError{StatusCode: 429}),
			expectedMessage: "OpenRouter API error: 429",
		},
		{name: "missing prompt", err: service.ErrMissingPrompt, expectedMessage: "Missing prompt or type"},
		{name: "assistant unavailable", err: service.ErrAssistantUnavailable, expectedMessage: "API key not configured"},
		{name: "empty response", err: assist.ErrEmptyResponse, expectedMessage: "No response content from AI"},
		{
			name:            "upstream status",
			err:             fmt.Errorf("breakdown: %w", &assist.UpstreamError{StatusCode: 429, Body: "sk-or-secret"}),
			expectedMessage: "OpenRouter API error: 429",
		},
		{
			name:            "internal details hidden",
			err:             errors.New("pq: relation \"tasks\" does not exist"),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedMessage, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		defaultMsg      string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "mapped error keeps its message",
			err:             service.ErrTaskNotFound,
			defaultMsg:      "Failed to get task",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Task not found",
		},
		{
			name:            "unexpected error uses default message",
			err:             errors.New("database connection error"),
			defaultMsg:      "Failed to get task",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Failed to get task",
		},
		{
			name:            "empty AI response keeps its message",
			err:             assist.ErrEmptyResponse,
			defaultMsg:      "Failed to process AI request",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "No response content from AI",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

			HandleAPIError(rr, req, tc.err, tc.defaultMsg)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tc.expectedMessage, response["error"])
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "domain validation error",
			err:             domain.NewValidationError("lane", "is not a lane", nil),
			expectedMessage: "Invalid lane: is not a lane",
		},
		{
			name: "validator error",
			err: errors.New(
				"Key: 'MoveTaskRequest.lane' Error:Field validation for 'lane' failed on the 'oneof' tag",
			),
			expectedMessage: "Invalid lane: invalid value",
		},
		{
			name:            "generic validation without field",
			err:             errors.New("validation error"),
			expectedMessage: "Validation error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

			HandleValidationError(rr, req, tc.err)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tc.expectedMessage, response["error"])
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		expected string
	}{
		{
			name:     "required field",
			errMsg:   "Key: 'QuickAddRequest.title' Error:Field validation for 'title' failed on the 'required' tag",
			expected: "Invalid title: required field",
		},
		{
			name:     "max length",
			errMsg:   "Key: 'CreateTaskRequest.title' Error:Field validation for 'title' failed on the 'max' tag",
			expected: "Invalid title: too long",
		},
		{
			name:     "negative minutes",
			errMsg:   "Key: 'UpdateTaskRequest.actualMinutes' Error:Field validation for 'actualMinutes' failed on the 'gte' tag",
			expected: "Invalid actualMinutes: must not be negative",
		},
		{
			name:     "unknown tag",
			errMsg:   "Key: 'CreateTaskRequest.tags' Error:Field validation for 'tags' failed on the 'dive' tag",
			expected: "Invalid tags: validation failed",
		},
		{
			name:     "not a validator message",
			errMsg:   "unexpected EOF",
			expected: "Validation error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeValidationError(errors.New(tc.errMsg)))
		})
	}
}
