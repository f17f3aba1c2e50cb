package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/domain/overwhelm"
	"github.com/eisenboard/eisenboard-api/internal/metrics"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// MoveRequest describes a drag-and-drop operation.
type MoveRequest struct {
	// Lane and Status name the destination column; an empty value keeps
	// the current one. They are ignored when BeforeTaskID is set.
	Lane   domain.Lane
	Status domain.Status
	// BeforeTaskID drops the task onto another card: the task joins that
	// card's column and parent and is placed immediately before it.
	BeforeTaskID *uuid.UUID
}

// BoardService provides the task board operations.
type BoardService interface {
	// AddTask creates a top-level task or subtask at the end of its column.
	AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)

	// QuickAdd creates a medium priority todo in the Schedule lane.
	QuickAdd(ctx context.Context, title string) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns the tasks matching filter.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// UpdateTask applies a partial update. A lane or status change moves
	// the task to the end of its new column.
	UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes the task and every task nested below it.
	// Returns the number of tasks removed.
	DeleteTask(ctx context.Context, id uuid.UUID) (int, error)

	// MoveTask moves a task to another column or onto another card.
	MoveTask(ctx context.Context, id uuid.UUID, req MoveRequest) (*domain.Task, error)

	// ToggleExpanded flips whether a task's subtasks are shown.
	ToggleExpanded(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ClearAll removes every task.
	ClearAll(ctx context.Context) error

	// LoadSample replaces the board with the demonstration tasks.
	LoadSample(ctx context.Context) ([]*domain.Task, error)

	// Export returns every task in the export file shape.
	Export(ctx context.Context) (*Export, error)

	// Import replaces the board with the valid entries of an export file.
	Import(ctx context.Context, tasks []ImportedTask) (*ImportResult, error)

	// Stats counts tasks per lane and status.
	Stats(ctx context.Context) (domain.Stats, error)

	// Board returns the nested kanban view.
	Board(ctx context.Context) (domain.Board, error)

	// Analyze runs the overwhelm detector over the board.
	Analyze(ctx context.Context) (overwhelm.Report, error)
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	tasks    store.TaskStore
	db       store.TxBeginner
	detector *overwhelm.Detector
	metrics  *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
// A nil recorder disables metrics.
func NewBoardService(
	tasks store.TaskStore,
	db store.TxBeginner,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) (BoardService, error) {
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "task store cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "database cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		tasks:    tasks,
		db:       db,
		detector: overwhelm.NewDetector(overwhelm.DefaultThresholds()),
		metrics:  recorder,
		logger:   logger.With("component", "board_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// AddTask creates a task at the end of its column inside a transaction.
func (s *boardServiceImpl) AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(in)
	if err != nil {
		log.Debug("rejected invalid task", "error", err)
		return nil, NewServiceError("add_task", "invalid task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if task.ParentID != nil {
			if _, err := txTasks.GetByID(ctx, *task.ParentID); err != nil {
				if errors.Is(err, store.ErrTaskNotFound) {
					return ErrParentNotFound
				}
				return NewServiceError("add_task", "failed to load parent task", err)
			}
		}

		maxPos, err := txTasks.MaxPosition(ctx, task.Lane, task.Status)
		if err != nil {
			return NewServiceError("add_task", "failed to read column position", err)
		}
		task.Position = maxPos + 1

		if err := txTasks.Create(ctx, task); err != nil {
			log.Error("failed to save task", "error", err, "task_id", task.ID)
			return NewServiceError("add_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TaskMutation("create")
	log.Info("task added",
		"task_id", task.ID,
		"lane", task.Lane,
		"status", task.Status,
		"is_subtask", task.ParentID != nil)

	return task, nil
}

// QuickAdd creates a task in the Schedule lane with medium priority.
func (s *boardServiceImpl) QuickAdd(ctx context.Context, title string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewServiceError("quick_add", "title is required", domain.ErrTaskTitleEmpty)
	}
	return s.AddTask(ctx, domain.TaskInput{
		Title:    title,
		Lane:     domain.LaneImportantNotUrgent,
		Status:   domain.StatusTodo,
		Priority: domain.PriorityMedium,
	})
}

// GetTask retrieves a task by its ID.
func (s *boardServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks returns the tasks matching filter.
func (s *boardServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies patch inside a transaction.
func (s *boardServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return NewServiceError("update_task", "failed to retrieve task", err)
		}
		lane, status := task.Lane, task.Status

		if err := task.Apply(patch, s.now()); err != nil {
			return NewServiceError("update_task", "invalid update", err)
		}

		if task.Lane != lane || task.Status != status {
			maxPos, err := txTasks.MaxPosition(ctx, task.Lane, task.Status)
			if err != nil {
				return NewServiceError("update_task", "failed to read column position", err)
			}
			task.Position = maxPos + 1
		}

		if err := txTasks.Update(ctx, task); err != nil {
			return NewServiceError("update_task", "failed to save task", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TaskMutation("update")
	log.Debug("task updated", "task_id", id)
	return updated, nil
}

// DeleteTask removes the task and its descendants inside a transaction.
func (s *boardServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if _, err := txTasks.GetByID(ctx, id); err != nil {
			return NewServiceError("delete_task", "failed to retrieve task", err)
		}

		all, err := txTasks.List(ctx, store.TaskFilter{})
		if err != nil {
			return NewServiceError("delete_task", "failed to list tasks", err)
		}

		ids := append([]uuid.UUID{id}, domain.Descendants(all, id)...)
		deleted, err = txTasks.Delete(ctx, ids...)
		if err != nil {
			return NewServiceError("delete_task", "failed to delete tasks", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.TaskMutation("delete")
	log.Info("task deleted", "task_id", id, "removed", deleted)
	return int(deleted), nil
}

// MoveTask moves a task inside a transaction, renumbering the destination
// column when the task is dropped onto another card.
func (s *boardServiceImpl) MoveTask(ctx context.Context, id uuid.UUID, req MoveRequest) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var moved *domain.Task
	changed := false
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return NewServiceError("move_task", "failed to retrieve task", err)
		}
		moved = task

		if req.BeforeTaskID == nil {
			lane, status := req.Lane, req.Status
			if lane == "" {
				lane = task.Lane
			}
			if status == "" {
				status = task.Status
			}
			if lane == task.Lane && status == task.Status {
				return nil
			}
			if err := task.MoveTo(lane, status, s.now()); err != nil {
				return NewServiceError("move_task", "invalid destination", err)
			}
			maxPos, err := txTasks.MaxPosition(ctx, task.Lane, task.Status)
			if err != nil {
				return NewServiceError("move_task", "failed to read column position", err)
			}
			task.Position = maxPos + 1
			if err := txTasks.Update(ctx, task); err != nil {
				return NewServiceError("move_task", "failed to save task", err)
			}
			changed = true
			return nil
		}

		changed, err = s.dropBefore(ctx, txTasks, task, *req.BeforeTaskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.TaskMutation("move")
		log.Info("task moved",
			"task_id", id,
			"lane", moved.Lane,
			"status", moved.Status,
			"position", moved.Position)
	}
	return moved, nil
}

// dropBefore places task immediately before the target card, adopting the
// target's column and parent, and renumbers the column from zero.
func (s *boardServiceImpl) dropBefore(
	ctx context.Context,
	txTasks store.TaskStore,
	task *domain.Task,
	targetID uuid.UUID,
) (bool, error) {
	if targetID == task.ID {
		return false, ErrInvalidMove
	}

	target, err := txTasks.GetByID(ctx, targetID)
	if err != nil {
		return false, NewServiceError("move_task", "failed to retrieve drop target", err)
	}

	all, err := txTasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return false, NewServiceError("move_task", "failed to list tasks", err)
	}
	for _, d := range domain.Descendants(all, task.ID) {
		if d == targetID {
			return false, ErrInvalidMove
		}
	}

	if err := task.MoveTo(target.Lane, target.Status, s.now()); err != nil {
		return false, NewServiceError("move_task", "invalid destination", err)
	}
	if target.ParentID != nil {
		parent := *target.ParentID
		task.ParentID = &parent
	} else {
		task.ParentID = nil
	}

	column, err := txTasks.List(ctx, store.TaskFilter{Lane: target.Lane, Status: target.Status})
	if err != nil {
		return false, NewServiceError("move_task", "failed to list column", err)
	}

	ordered := make([]*domain.Task, 0, len(column)+1)
	for _, t := range column {
		if t.ID == task.ID {
			continue
		}
		if t.ID == targetID {
			ordered = append(ordered, task)
		}
		ordered = append(ordered, t)
	}

	positions := make(map[uuid.UUID]int, len(ordered))
	for i, t := range ordered {
		if t.ID == task.ID {
			task.Position = i
			continue
		}
		if t.Position != i {
			positions[t.ID] = i
		}
	}

	task.UpdatedAt = s.now()
	if err := txTasks.Update(ctx, task); err != nil {
		return false, NewServiceError("move_task", "failed to save task", err)
	}
	if len(positions) > 0 {
		if err := txTasks.UpdatePositions(ctx, positions); err != nil {
			return false, NewServiceError("move_task", "failed to renumber column", err)
		}
	}
	return true, nil
}

// ToggleExpanded flips IsExpanded on the task.
func (s *boardServiceImpl) ToggleExpanded(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var toggled *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return NewServiceError("toggle_expanded", "failed to retrieve task", err)
		}
		task.IsExpanded = !task.IsExpanded
		task.UpdatedAt = s.now()
		if err := txTasks.Update(ctx, task); err != nil {
			return NewServiceError("toggle_expanded", "failed to save task", err)
		}
		toggled = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TaskMutation("toggle")
	return toggled, nil
}

// ClearAll removes every task.
func (s *boardServiceImpl) ClearAll(ctx context.Context) error {
	if err := s.tasks.DeleteAll(ctx); err != nil {
		return NewServiceError("clear_all", "failed to delete tasks", err)
	}
	s.metrics.TaskMutation("clear")
	logger.FromContextOrDefault(ctx, s.logger).Info("board cleared")
	return nil
}

// LoadSample replaces the board with the sample tasks.
func (s *boardServiceImpl) LoadSample(ctx context.Context) ([]*domain.Task, error) {
	tasks := domain.SampleTasks(s.now())
	if err := s.replaceAll(ctx, "load_sample", tasks); err != nil {
		return nil, err
	}
	s.metrics.TaskMutation("sample")
	logger.FromContextOrDefault(ctx, s.logger).Info("sample board loaded", "count", len(tasks))
	return tasks, nil
}

func (s *boardServiceImpl) replaceAll(ctx context.Context, operation string, tasks []*domain.Task) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).ReplaceAll(ctx, tasks); err != nil {
			return NewServiceError(operation, "failed to replace board", err)
		}
		return nil
	})
}

// Stats counts tasks per lane and status.
func (s *boardServiceImpl) Stats(ctx context.Context) (domain.Stats, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return domain.Stats{}, NewServiceError("stats", "failed to list tasks", err)
	}
	return domain.ComputeStats(tasks), nil
}

// Board returns the nested kanban view.
func (s *boardServiceImpl) Board(ctx context.Context) (domain.Board, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return domain.Board{}, NewServiceError("board", "failed to list tasks", err)
	}
	return domain.BuildBoard(tasks), nil
}

// Analyze runs the overwhelm detector and counts the alerts raised.
func (s *boardServiceImpl) Analyze(ctx context.Context) (overwhelm.Report, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return overwhelm.Report{}, NewServiceError("analyze", "failed to list tasks", err)
	}

	report := s.detector.Report(tasks)
	for _, a := range report.Alerts {
		s.metrics.Alert(string(a.Type), string(a.Severity))
	}
	if len(report.Alerts) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Debug("overwhelm alerts raised",
			"count", len(report.Alerts))
	}
	return report, nil
}
