package job

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// mockJobStore implements store.JobStore in memory for testing
type mockJobStore struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]domain.Job
	SaveFn func(ctx context.Context, job *domain.Job) error
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{jobs: make(map[uuid.UUID]domain.Job)}
}

func (s *mockJobStore) Save(ctx context.Context, job *domain.Job) error {
	if s.SaveFn != nil {
		if err := s.SaveFn(ctx, job); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *mockJobStore) Get(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return &job, nil
}

func (s *mockJobStore) UpdateStatus(
	_ context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	errMsg string,
	resultCount int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	job.Status = status
	job.Error = errMsg
	job.ResultCount = resultCount
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

func (s *mockJobStore) ListByStatus(
	_ context.Context,
	status domain.JobStatus,
	olderThan time.Duration,
) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, job := range s.jobs {
		if job.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(job.UpdatedAt) < olderThan {
			continue
		}
		j := job
		out = append(out, &j)
	}
	return out, nil
}

func (s *mockJobStore) WithTx(*sql.Tx) store.JobStore { return s }

// put stores job directly, bypassing Save hooks.
func (s *mockJobStore) put(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *mockJobStore) status(id uuid.UUID) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}
