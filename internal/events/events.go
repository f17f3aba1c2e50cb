package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobRequestEvent represents a request to run a background job.
// It carries what the runner needs without a dependency on the job package.
type JobRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the job type that should be created
	Type string `json:"type"`

	// Payload contains the job-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// JobRequestPayload is the payload of assist job requests.
type JobRequestPayload struct {
	JobID  uuid.UUID `json:"job_id"`
	TaskID uuid.UUID `json:"task_id"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *JobRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates a new JobRequestEvent with the specified type and payload.
func NewJobRequestEvent(jobType string, payload any) (*JobRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &JobRequestEvent{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}
