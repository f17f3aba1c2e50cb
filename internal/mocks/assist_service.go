package mocks

import (
	"context"
	"sync"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/google/uuid"
)

// MockAssistService implements service.AssistService for testing
type MockAssistService struct {
	EnabledFn          func() bool
	CategorizeFn       func(ctx context.Context, title, description string) (assist.Categorization, error)
	CategorizeAndAddFn func(ctx context.Context, title, description string) (*domain.Task, assist.Categorization, error)
	BreakdownFn        func(ctx context.Context, taskID uuid.UUID) (*service.BreakdownResult, error)
	ExpandFn           func(ctx context.Context, taskID uuid.UUID) (*service.ExpandResult, error)
	ProxyFn            func(ctx context.Context, prompt, kind string) (any, error)
	RequestJobFn       func(ctx context.Context, jobType domain.JobType, taskID uuid.UUID) (*domain.Job, error)
	GetJobFn           func(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// Default response values, used when the matching Fn is nil
	IsEnabled bool
	Err       error

	// Call tracking for verification
	RequestJobCalls struct {
		mu      sync.Mutex
		Count   int
		Types   []domain.JobType
		TaskIDs []uuid.UUID
	}
}

var _ service.AssistService = (*MockAssistService)(nil)

// Enabled implements service.AssistService
func (m *MockAssistService) Enabled() bool {
	if m.EnabledFn != nil {
		return m.EnabledFn()
	}
	return m.IsEnabled
}

// Categorize implements service.AssistService
func (m *MockAssistService) Categorize(ctx context.Context, title, description string) (assist.Categorization, error) {
	if m.CategorizeFn != nil {
		return m.CategorizeFn(ctx, title, description)
	}
	if m.Err != nil {
		return assist.Categorization{}, m.Err
	}
	return assist.FallbackCategorization(), nil
}

// CategorizeAndAdd implements service.AssistService
func (m *MockAssistService) CategorizeAndAdd(
	ctx context.Context,
	title, description string,
) (*domain.Task, assist.Categorization, error) {
	if m.CategorizeAndAddFn != nil {
		return m.CategorizeAndAddFn(ctx, title, description)
	}
	return nil, assist.Categorization{}, m.Err
}

// Breakdown implements service.AssistService
func (m *MockAssistService) Breakdown(ctx context.Context, taskID uuid.UUID) (*service.BreakdownResult, error) {
	if m.BreakdownFn != nil {
		return m.BreakdownFn(ctx, taskID)
	}
	return nil, m.Err
}

// Expand implements service.AssistService
func (m *MockAssistService) Expand(ctx context.Context, taskID uuid.UUID) (*service.ExpandResult, error) {
	if m.ExpandFn != nil {
		return m.ExpandFn(ctx, taskID)
	}
	return nil, m.Err
}

// Proxy implements service.AssistService
func (m *MockAssistService) Proxy(ctx context.Context, prompt, kind string) (any, error) {
	if m.ProxyFn != nil {
		return m.ProxyFn(ctx, prompt, kind)
	}
	return nil, m.Err
}

// RequestJob implements service.AssistService. Without RequestJobFn it
// returns a pending job for the task.
func (m *MockAssistService) RequestJob(ctx context.Context, jobType domain.JobType, taskID uuid.UUID) (*domain.Job, error) {
	m.RequestJobCalls.mu.Lock()
	m.RequestJobCalls.Count++
	m.RequestJobCalls.Types = append(m.RequestJobCalls.Types, jobType)
	m.RequestJobCalls.TaskIDs = append(m.RequestJobCalls.TaskIDs, taskID)
	m.RequestJobCalls.mu.Unlock()

	if m.RequestJobFn != nil {
		return m.RequestJobFn(ctx, jobType, taskID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewJob(jobType, taskID)
}

// GetJob implements service.AssistService
func (m *MockAssistService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return nil, m.Err
}
