package service

import (
	"sync"

	"github.com/google/uuid"
)

// inflight tracks the tasks with an assist operation running.
type inflight struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]string
}

func newInflight() *inflight {
	return &inflight{tasks: make(map[uuid.UUID]string)}
}

// acquire marks id as busy with operation. It returns false when another
// operation already holds the task.
func (f *inflight) acquire(id uuid.UUID, operation string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.tasks[id]; busy {
		return false
	}
	f.tasks[id] = operation
	return true
}

func (f *inflight) release(id uuid.UUID) {
	f.mu.Lock()
	delete(f.tasks, id)
	f.mu.Unlock()
}
