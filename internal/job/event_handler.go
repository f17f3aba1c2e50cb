package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/events"
	"github.com/google/uuid"
)

// Submitter accepts job records for execution. *Runner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, record *domain.Job) error
}

// EventHandler implements the events.EventHandler interface by turning job
// requests into records and submitting them to the runner.
type EventHandler struct {
	runner Submitter
	logger *slog.Logger
}

// NewEventHandler creates a new event handler that submits jobs to runner.
func NewEventHandler(runner Submitter, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		runner: runner,
		logger: logger.With("component", "job_event_handler"),
	}
}

// HandleEvent extracts the job and task IDs from the event payload, builds
// the pending record and submits it.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	jobType := domain.JobType(event.Type)
	if !jobType.IsValid() {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.JobRequestPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.JobID == uuid.Nil || payload.TaskID == uuid.Nil {
		h.logger.Error("incomplete job request", "event_id", event.ID)
		return fmt.Errorf("%w: job request needs job and task IDs", domain.ErrInvalidID)
	}

	created := event.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	record := &domain.Job{
		ID:        payload.JobID,
		Type:      jobType,
		TaskID:    payload.TaskID,
		Status:    domain.JobStatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}

	if err := h.runner.Submit(ctx, record); err != nil {
		h.logger.Error("failed to submit job",
			"error", err,
			"job_id", record.ID,
			"task_id", record.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Info("job created and submitted successfully",
		"job_id", record.ID,
		"job_type", record.Type,
		"task_id", record.TaskID,
		"event_id", event.ID)
	return nil
}

// Ensure EventHandler implements events.EventHandler
var _ events.EventHandler = (*EventHandler)(nil)
