package store

import (
	"context"
	"database/sql"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
)

// TaskFilter narrows List results. Zero fields match everything.
type TaskFilter struct {
	Lane     domain.Lane
	Status   domain.Status
	ParentID *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
// Results are ordered by lane, status, position and creation time.
type TaskStore interface {
	// Create saves a new task. Returns ErrDuplicate when the ID is taken
	// and ErrForeignKey when the parent does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMany saves several tasks. Parents must precede their children.
	// Run it inside RunInTransaction for atomicity.
	CreateMany(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the tasks matching filter.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update replaces every mutable column of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdatePositions sets the position of each task in the map.
	UpdatePositions(ctx context.Context, positions map[uuid.UUID]int) error

	// Delete removes the given tasks. Missing IDs are ignored; the number
	// of deleted rows is returned.
	Delete(ctx context.Context, ids ...uuid.UUID) (int64, error)

	// DeleteAll removes every task.
	DeleteAll(ctx context.Context) error

	// ReplaceAll swaps the whole board for tasks. Run it inside
	// RunInTransaction so a failed import leaves the old board intact.
	ReplaceAll(ctx context.Context, tasks []*domain.Task) error

	// MaxPosition returns the highest position in a column, or -1 when
	// the column is empty.
	MaxPosition(ctx context.Context, lane domain.Lane, status domain.Status) (int, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
