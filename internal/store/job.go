package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
)

// JobStore persists background assist jobs so their state survives a restart.
type JobStore interface {
	// Save inserts a new job record.
	Save(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID. Returns ErrJobNotFound if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// UpdateStatus records a status transition with an optional error
	// message and the number of subtasks produced.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, errMsg string, resultCount int) error

	// ListByStatus returns jobs in status. When olderThan is non-zero only
	// jobs whose last update is older than that are returned.
	ListByStatus(ctx context.Context, status domain.JobStatus, olderThan time.Duration) ([]*domain.Job, error)

	// WithTx returns a JobStore bound to tx.
	WithTx(tx *sql.Tx) JobStore
}
