package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a background assist job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are expected.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobType names the assist operation a job performs.
type JobType string

const (
	JobTypeBreakdown JobType = "breakdown"
	JobTypeExpand    JobType = "expand"
)

// IsValid reports whether t is a known job type.
func (t JobType) IsValid() bool {
	return t == JobTypeBreakdown || t == JobTypeExpand
}

// Job is the persisted record of an asynchronous assist request.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Type        JobType   `json:"type"`
	TaskID      uuid.UUID `json:"taskId"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	ResultCount int       `json:"resultCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewJob returns a pending job for taskID.
func NewJob(jobType JobType, taskID uuid.UUID) (*Job, error) {
	if !jobType.IsValid() {
		return nil, NewValidationError("type", "unknown job type", ErrValidation)
	}
	if taskID == uuid.Nil {
		return nil, NewValidationError("taskId", "task ID cannot be empty", ErrTaskIDEmpty)
	}

	now := time.Now().UTC()
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		TaskID:    taskID,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
