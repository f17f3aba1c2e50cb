package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

const taskColumns = `id, title, description, lane, status, parent_id, is_expanded, priority, tags,
	estimated_minutes, actual_minutes, difficulty, energy_level, position,
	started_at, completed_at, created_at, updated_at`

// TaskStore implements the store.TaskStore interface on database/sql.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewTaskStore creates a TaskStore over a connection or transaction that is
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewTaskStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if err := s.insert(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("lane", string(task.Lane)),
		slog.String("status", string(task.Status)))
	return nil
}

// CreateMany implements store.TaskStore.CreateMany
func (s *TaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			log.Warn("task validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return err
		}
	}

	for _, task := range orderParentsFirst(tasks) {
		if err := s.insert(ctx, task); err != nil {
			log.Error("failed to create task in batch",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.Int("batch_size", len(tasks)))
			return err
		}
	}

	log.Debug("tasks created", slog.Int("count", len(tasks)))
	return nil
}

func (s *TaskStore) insert(ctx context.Context, task *domain.Task) error {
	tags, err := encodeTags(task.Tags)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`INSERT INTO tasks (` + taskColumns + `)
		VALUES (` + placeholders(18) + `)`)

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Lane),
		string(task.Status),
		parentValue(task.ParentID),
		task.IsExpanded,
		string(task.Priority),
		tags,
		intValue(task.EstimatedMinutes),
		intValue(task.ActualMinutes),
		string(task.Difficulty),
		string(task.EnergyLevel),
		task.Position,
		timeValue(task.StartedAt),
		timeValue(task.CompletedAt),
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	)
	if err != nil {
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conds []string
		args  []any
	)
	if filter.Lane != "" {
		conds = append(conds, "lane = ?")
		args = append(args, string(filter.Lane))
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ParentID != nil {
		conds = append(conds, "parent_id = ?")
		args = append(args, *filter.ParentID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY position, created_at, id`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "row iteration failed", MapError(err))
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tags, err := encodeTags(task.Tags)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`UPDATE tasks SET
		title = ?, description = ?, lane = ?, status = ?, parent_id = ?, is_expanded = ?,
		priority = ?, tags = ?, estimated_minutes = ?, actual_minutes = ?, difficulty = ?,
		energy_level = ?, position = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Lane),
		string(task.Status),
		parentValue(task.ParentID),
		task.IsExpanded,
		string(task.Priority),
		tags,
		intValue(task.EstimatedMinutes),
		intValue(task.ActualMinutes),
		string(task.Difficulty),
		string(task.EnergyLevel),
		task.Position,
		timeValue(task.StartedAt),
		timeValue(task.CompletedAt),
		task.UpdatedAt.UTC(),
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return err
	}

	return nil
}

// UpdatePositions implements store.TaskStore.UpdatePositions
func (s *TaskStore) UpdatePositions(ctx context.Context, positions map[uuid.UUID]int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`UPDATE tasks SET position = ? WHERE id = ?`)
	for id, pos := range positions {
		result, err := s.db.ExecContext(ctx, query, pos, id)
		if err != nil {
			log.Error("failed to update task position",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
			return store.NewStoreError("task", "reorder", "update failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}
	}

	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	// Listed descendants may already be gone through ON DELETE CASCADE by the
	// time the IN list reaches them, so RowsAffected undercounts. Count first.
	in := `(` + placeholders(len(ids)) + `)`
	var n int64
	countQuery := s.dialect.Rebind(`SELECT COUNT(*) FROM tasks WHERE id IN ` + in)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&n); err != nil {
		log.Error("failed to count tasks for delete",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return 0, store.NewStoreError("task", "delete", "count failed", MapError(err))
	}

	query := s.dialect.Rebind(`DELETE FROM tasks WHERE id IN ` + in)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete tasks",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return 0, store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	log.Debug("tasks deleted", slog.Int64("count", n))
	return n, nil
}

// DeleteAll implements store.TaskStore.DeleteAll
func (s *TaskStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear tasks",
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "delete", "clear failed", MapError(err))
	}
	return nil
}

// ReplaceAll implements store.TaskStore.ReplaceAll
func (s *TaskStore) ReplaceAll(ctx context.Context, tasks []*domain.Task) error {
	if err := s.DeleteAll(ctx); err != nil {
		return err
	}
	return s.CreateMany(ctx, tasks)
}

// MaxPosition implements store.TaskStore.MaxPosition
func (s *TaskStore) MaxPosition(ctx context.Context, lane domain.Lane, status domain.Status) (int, error) {
	query := s.dialect.Rebind(`SELECT COALESCE(MAX(position), -1) FROM tasks WHERE lane = ? AND status = ?`)

	var pos int64
	if err := s.db.QueryRowContext(ctx, query, string(lane), string(status)).Scan(&pos); err != nil {
		return 0, store.NewStoreError("task", "get", "max position query failed", MapError(err))
	}
	return int(pos), nil
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		lane        string
		status      string
		parentID    uuid.NullUUID
		priority    string
		tags        []byte
		estimated   sql.NullInt64
		actual      sql.NullInt64
		difficulty  string
		energy      string
		position    int64
		startedAt   nullTime
		completedAt nullTime
		createdAt   nullTime
		updatedAt   nullTime
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&lane,
		&status,
		&parentID,
		&task.IsExpanded,
		&priority,
		&tags,
		&estimated,
		&actual,
		&difficulty,
		&energy,
		&position,
		&startedAt,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Lane = domain.Lane(lane)
	task.Status = domain.Status(status)
	if parentID.Valid {
		id := parentID.UUID
		task.ParentID = &id
	}
	task.Priority = domain.Priority(priority)
	if task.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	task.EstimatedMinutes = nullIntPtr(estimated)
	task.ActualMinutes = nullIntPtr(actual)
	task.Difficulty = domain.Difficulty(difficulty)
	task.EnergyLevel = domain.EnergyLevel(energy)
	task.Position = int(position)
	task.StartedAt = startedAt.Ptr()
	task.CompletedAt = completedAt.Ptr()
	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time

	return &task, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func parentValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// orderParentsFirst returns tasks ordered so that every task whose parent is
// in the batch comes after that parent. Tasks on a parent cycle keep their
// relative order at the end.
func orderParentsFirst(tasks []*domain.Task) []*domain.Task {
	inBatch := make(map[uuid.UUID]bool, len(tasks))
	for _, t := range tasks {
		inBatch[t.ID] = true
	}

	placed := make(map[uuid.UUID]bool, len(tasks))
	ordered := make([]*domain.Task, 0, len(tasks))

	for len(ordered) < len(tasks) {
		progress := false
		for _, t := range tasks {
			if placed[t.ID] {
				continue
			}
			if t.ParentID != nil && inBatch[*t.ParentID] && !placed[*t.ParentID] {
				continue
			}
			placed[t.ID] = true
			ordered = append(ordered, t)
			progress = true
		}
		if !progress {
			for _, t := range tasks {
				if !placed[t.ID] {
					placed[t.ID] = true
					ordered = append(ordered, t)
				}
			}
		}
	}

	return ordered
}
