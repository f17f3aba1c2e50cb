package job

import (
	"context"
	"errors"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/google/uuid"
)

// mockJob is a Job whose behaviour is set per test.
type mockJob struct {
	record    domain.Job
	ExecuteFn func(ctx context.Context) (int, error)
}

func (j *mockJob) ID() uuid.UUID        { return j.record.ID }
func (j *mockJob) Type() domain.JobType { return j.record.Type }
func (j *mockJob) TaskID() uuid.UUID    { return j.record.TaskID }

func (j *mockJob) Execute(ctx context.Context) (int, error) {
	if j.ExecuteFn != nil {
		return j.ExecuteFn(ctx)
	}
	return 0, nil
}

// mockFactory builds mockJobs running execute.
func mockFactory(execute func(ctx context.Context, record domain.Job) (int, error)) Factory {
	return FactoryFunc(func(record *domain.Job) (Job, error) {
		if !record.Type.IsValid() {
			return nil, ErrUnsupportedType
		}
		rec := *record
		return &mockJob{
			record: rec,
			ExecuteFn: func(ctx context.Context) (int, error) {
				return execute(ctx, rec)
			},
		}, nil
	})
}

func newRecord(jobType domain.JobType) *domain.Job {
	job, err := domain.NewJob(jobType, uuid.New())
	if err != nil {
		panic(err)
	}
	return job
}

// mockAssistant implements Assistant with function fields.
type mockAssistant struct {
	BreakdownFn func(ctx context.Context, taskID uuid.UUID) (*service.BreakdownResult, error)
	ExpandFn    func(ctx context.Context, taskID uuid.UUID) (*service.ExpandResult, error)
}

func (m *mockAssistant) Breakdown(ctx context.Context, taskID uuid.UUID) (*service.BreakdownResult, error) {
	if m.BreakdownFn == nil {
		return nil, errors.New("breakdown not expected")
	}
	return m.BreakdownFn(ctx, taskID)
}

func (m *mockAssistant) Expand(ctx context.Context, taskID uuid.UUID) (*service.ExpandResult, error) {
	if m.ExpandFn == nil {
		return nil, errors.New("expand not expected")
	}
	return m.ExpandFn(ctx, taskID)
}
