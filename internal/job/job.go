package job

import (
	"context"
	"errors"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no room.
	ErrQueueFull = errors.New("job queue is full, try again later")

	// ErrRunnerStopped is returned by Submit after Stop.
	ErrRunnerStopped = errors.New("job runner is stopped")

	// ErrUnsupportedType is returned by a Factory for unknown job types.
	ErrUnsupportedType = errors.New("unsupported job type")
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type
	Type() domain.JobType

	// TaskID returns the board task the job works on
	TaskID() uuid.UUID

	// Execute runs the job and returns how many tasks it created.
	Execute(ctx context.Context) (int, error)
}

// Factory rebuilds a runnable Job from its stored record.
type Factory interface {
	Create(record *domain.Job) (Job, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(record *domain.Job) (Job, error)

// Create calls f(record).
func (f FactoryFunc) Create(record *domain.Job) (Job, error) {
	return f(record)
}
