package mocks

import (
	"context"
	"sync"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/domain/overwhelm"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// MockBoardService implements service.BoardService for testing
type MockBoardService struct {
	AddTaskFn        func(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	QuickAddFn       func(ctx context.Context, title string) (*domain.Task, error)
	GetTaskFn        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListTasksFn      func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateTaskFn     func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTaskFn     func(ctx context.Context, id uuid.UUID) (int, error)
	MoveTaskFn       func(ctx context.Context, id uuid.UUID, req service.MoveRequest) (*domain.Task, error)
	ToggleExpandedFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ClearAllFn       func(ctx context.Context) error
	LoadSampleFn     func(ctx context.Context) ([]*domain.Task, error)
	ExportFn         func(ctx context.Context) (*service.Export, error)
	ImportFn         func(ctx context.Context, tasks []service.ImportedTask) (*service.ImportResult, error)
	StatsFn          func(ctx context.Context) (domain.Stats, error)
	BoardFn          func(ctx context.Context) (domain.Board, error)
	AnalyzeFn        func(ctx context.Context) (overwhelm.Report, error)

	// Default response values, used when the matching Fn is nil
	Task  *domain.Task
	Tasks []*domain.Task
	Err   error

	mu    sync.Mutex
	calls map[string]int
}

var _ service.BoardService = (*MockBoardService)(nil)

func (m *MockBoardService) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was called.
func (m *MockBoardService) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// AddTask implements service.BoardService
func (m *MockBoardService) AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	m.record("AddTask")
	if m.AddTaskFn != nil {
		return m.AddTaskFn(ctx, in)
	}
	return m.Task, m.Err
}

// QuickAdd implements service.BoardService
func (m *MockBoardService) QuickAdd(ctx context.Context, title string) (*domain.Task, error) {
	m.record("QuickAdd")
	if m.QuickAddFn != nil {
		return m.QuickAddFn(ctx, title)
	}
	return m.Task, m.Err
}

// GetTask implements service.BoardService
func (m *MockBoardService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.record("GetTask")
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return m.Task, m.Err
}

// ListTasks implements service.BoardService
func (m *MockBoardService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	m.record("ListTasks")
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, filter)
	}
	return m.Tasks, m.Err
}

// UpdateTask implements service.BoardService
func (m *MockBoardService) UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	m.record("UpdateTask")
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, patch)
	}
	return m.Task, m.Err
}

// DeleteTask implements service.BoardService
func (m *MockBoardService) DeleteTask(ctx context.Context, id uuid.UUID) (int, error) {
	m.record("DeleteTask")
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return 1, nil
}

// MoveTask implements service.BoardService
func (m *MockBoardService) MoveTask(ctx context.Context, id uuid.UUID, req service.MoveRequest) (*domain.Task, error) {
	m.record("MoveTask")
	if m.MoveTaskFn != nil {
		return m.MoveTaskFn(ctx, id, req)
	}
	return m.Task, m.Err
}

// ToggleExpanded implements service.BoardService
func (m *MockBoardService) ToggleExpanded(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.record("ToggleExpanded")
	if m.ToggleExpandedFn != nil {
		return m.ToggleExpandedFn(ctx, id)
	}
	return m.Task, m.Err
}

// ClearAll implements service.BoardService
func (m *MockBoardService) ClearAll(ctx context.Context) error {
	m.record("ClearAll")
	if m.ClearAllFn != nil {
		return m.ClearAllFn(ctx)
	}
	return m.Err
}

// LoadSample implements service.BoardService
func (m *MockBoardService) LoadSample(ctx context.Context) ([]*domain.Task, error) {
	m.record("LoadSample")
	if m.LoadSampleFn != nil {
		return m.LoadSampleFn(ctx)
	}
	return m.Tasks, m.Err
}

// Export implements service.BoardService
func (m *MockBoardService) Export(ctx context.Context) (*service.Export, error) {
	m.record("Export")
	if m.ExportFn != nil {
		return m.ExportFn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &service.Export{FileName: "eisenhower-tasks.json", Tasks: m.Tasks}, nil
}

// Import implements service.BoardService
func (m *MockBoardService) Import(ctx context.Context, tasks []service.ImportedTask) (*service.ImportResult, error) {
	m.record("Import")
	if m.ImportFn != nil {
		return m.ImportFn(ctx, tasks)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &service.ImportResult{Imported: len(tasks)}, nil
}

// Stats implements service.BoardService
func (m *MockBoardService) Stats(ctx context.Context) (domain.Stats, error) {
	m.record("Stats")
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return domain.ComputeStats(m.Tasks), m.Err
}

// Board implements service.BoardService
func (m *MockBoardService) Board(ctx context.Context) (domain.Board, error) {
	m.record("Board")
	if m.BoardFn != nil {
		return m.BoardFn(ctx)
	}
	return domain.BuildBoard(m.Tasks), m.Err
}

// Analyze implements service.BoardService
func (m *MockBoardService) Analyze(ctx context.Context) (overwhelm.Report, error) {
	m.record("Analyze")
	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx)
	}
	return overwhelm.Report{}, m.Err
}
