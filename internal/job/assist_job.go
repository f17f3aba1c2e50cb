package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilAssistant = errors.New("assistant cannot be nil")
	ErrNilRecord    = errors.New("job record cannot be nil")
)

// Assistant is the part of service.AssistService a job drives.
type Assistant interface {
	Breakdown(ctx context.Context, taskID uuid.UUID) (*service.BreakdownResult, error)
	Expand(ctx context.Context, taskID uuid.UUID) (*service.ExpandResult, error)
}

// AssistJob runs a breakdown or expansion for one task.
type AssistJob struct {
	record    domain.Job
	assistant Assistant
	logger    *slog.Logger
}

// NewAssistJob creates an AssistJob for record.
func NewAssistJob(record *domain.Job, assistant Assistant, logger *slog.Logger) (*AssistJob, error) {
	if record == nil {
		return nil, ErrNilRecord
	}
	if assistant == nil {
		return nil, ErrNilAssistant
	}
	if !record.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, record.Type)
	}
	if record.TaskID == uuid.Nil {
		return nil, domain.ErrTaskIDEmpty
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AssistJob{
		record:    *record,
		assistant: assistant,
		logger:    logger.With("job_type", record.Type, "task_id", record.TaskID),
	}, nil
}

func (j *AssistJob) ID() uuid.UUID        { return j.record.ID }
func (j *AssistJob) Type() domain.JobType { return j.record.Type }
func (j *AssistJob) TaskID() uuid.UUID    { return j.record.TaskID }

// Execute calls the assistant and reports the number of subtasks created.
func (j *AssistJob) Execute(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("job cancelled by context: %w", err)
	}

	switch j.record.Type {
	case domain.JobTypeBreakdown:
		result, err := j.assistant.Breakdown(ctx, j.record.TaskID)
		if err != nil {
			return 0, fmt.Errorf("failed to break down task: %w", err)
		}
		j.logger.Info("breakdown finished", "subtasks", len(result.Subtasks))
		return len(result.Subtasks), nil

	case domain.JobTypeExpand:
		result, err := j.assistant.Expand(ctx, j.record.TaskID)
		if err != nil {
			return 0, fmt.Errorf("failed to expand task: %w", err)
		}
		j.logger.Info("expansion finished", "subtasks", len(result.Subtasks))
		return len(result.Subtasks), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, j.record.Type)
}

// AssistFactory creates AssistJob instances
type AssistFactory struct {
	assistant Assistant
	logger    *slog.Logger
}

// NewAssistFactory creates a new factory for assist jobs
func NewAssistFactory(assistant Assistant, logger *slog.Logger) *AssistFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistFactory{
		assistant: assistant,
		logger:    logger.With("component", "assist_job_factory"),
	}
}

// Create builds the job for record.
func (f *AssistFactory) Create(record *domain.Job) (Job, error) {
	job, err := NewAssistJob(record, f.assistant, f.logger)
	if err != nil {
		return nil, err
	}
	return job, nil
}

var _ Factory = (*AssistFactory)(nil)
