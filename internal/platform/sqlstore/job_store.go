package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

const jobColumns = `id, type, task_id, status, error_message, result_count, created_at, updated_at`

// JobStore implements the store.JobStore interface on database/sql.
type JobStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewJobStore creates a JobStore. If logger is nil, a default logger will be used.
func NewJobStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &JobStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements store.JobStore interface
var _ store.JobStore = (*JobStore)(nil)

// Save implements store.JobStore.Save
func (s *JobStore) Save(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`INSERT INTO jobs (` + jobColumns + `) VALUES (` + placeholders(8) + `)`)
	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		string(job.Type),
		job.TaskID,
		string(job.Status),
		job.Error,
		job.ResultCount,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("job_type", string(job.Type)))
		return store.NewStoreError("job", "create", "insert failed", MapError(err))
	}

	return nil
}

// Get implements store.JobStore.Get
func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := s.dialect.Rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, store.NewStoreError("job", "get", "query failed", MapError(err))
	}
	return job, nil
}

// UpdateStatus implements store.JobStore.UpdateStatus
func (s *JobStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	errMsg string,
	resultCount int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`UPDATE jobs
		SET status = ?, error_message = ?, result_count = ?, updated_at = ?
		WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		string(status),
		errMsg,
		resultCount,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return store.NewStoreError("job", "update", "update failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// ListByStatus implements store.JobStore.ListByStatus
func (s *JobStore) ListByStatus(
	ctx context.Context,
	status domain.JobStatus,
	olderThan time.Duration,
) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = ?`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < ?`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list jobs",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, store.NewStoreError("job", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, store.NewStoreError("job", "list", "scan failed", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("job", "list", "row iteration failed", MapError(err))
	}
	return jobs, nil
}

// WithTx implements store.JobStore.WithTx
func (s *JobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &JobStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job         domain.Job
		jobType     string
		status      string
		resultCount int64
		createdAt   nullTime
		updatedAt   nullTime
	)

	if err := row.Scan(
		&job.ID,
		&jobType,
		&job.TaskID,
		&status,
		&job.Error,
		&resultCount,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	job.Type = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	job.ResultCount = int(resultCount)
	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time
	return &job, nil
}
