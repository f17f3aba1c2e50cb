package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/metrics"
	"github.com/eisenboard/eisenboard-api/internal/redact"
	"github.com/eisenboard/eisenboard-api/internal/store"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StuckJobAge defines how long a job can be in processing state
	// before it's considered stuck and reset
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs
	// If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration

	// JobTimeout bounds a single execution. If zero, defaults to 5 minutes.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             32,
		StuckJobAge:           15 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
		JobTimeout:            5 * time.Minute,
	}
}

// RunnerConfigFrom builds a RunnerConfig from the jobs settings.
func RunnerConfigFrom(cfg config.JobsConfig) RunnerConfig {
	rc := DefaultRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	rc.StuckJobAge = time.Duration(cfg.StuckJobAgeMinutes) * time.Minute
	return rc
}

// Runner manages background job processing
type Runner struct {
	store      store.JobStore
	factory    Factory
	queue      chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	stopped    bool
	config     RunnerConfig
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewRunner creates a new Runner. A nil recorder disables metrics.
func NewRunner(
	jobs store.JobStore,
	factory Factory,
	cfg RunnerConfig,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) (*Runner, error) {
	if jobs == nil {
		return nil, errors.New("job store cannot be nil")
	}
	if factory == nil {
		return nil, errors.New("job factory cannot be nil")
	}
	if cfg.WorkerCount <= 0 || cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("invalid runner config: workers=%d queue=%d", cfg.WorkerCount, cfg.QueueSize)
	}
	if cfg.StuckJobCheckInterval == 0 {
		cfg.StuckJobCheckInterval = 5 * time.Minute
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      jobs,
		factory:    factory,
		queue:      make(chan Job, cfg.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     cfg,
		metrics:    recorder,
		logger:     logger.With("component", "job_runner"),
	}, nil
}

// Submit persists record and queues it for execution.
func (r *Runner) Submit(ctx context.Context, record *domain.Job) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrRunnerStopped
	}

	job, err := r.factory.Create(record)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	// Save job to database first
	if err := r.store.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	// Then add to in-memory queue
	select {
	case r.queue <- job:
		return nil
	default:
		if err := r.store.UpdateStatus(ctx, record.ID, domain.JobStatusFailed, ErrQueueFull.Error(), 0); err != nil {
			r.logger.Error("failed to mark rejected job", "job_id", record.ID, "error", err)
		}
		r.metrics.JobFinished(string(record.Type), "rejected")
		return ErrQueueFull
	}
}

// Start recovers unfinished jobs and starts the workers and the stuck job
// monitor.
func (r *Runner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the runner. Jobs interrupted by the shutdown
// are put back to pending and picked up by the next Start.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancelFunc()
	r.wg.Wait()
	close(r.queue)
}

// Recover loads any unfinished jobs from the database
func (r *Runner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.ListByStatus(ctx, domain.JobStatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	// Processing jobs were interrupted by a crash, regardless of age.
	processing, err := r.store.ListByStatus(ctx, domain.JobStatusProcessing, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, record := range pending {
		r.requeue(ctx, record, "")
	}
	for _, record := range processing {
		r.requeue(ctx, record, "Reset after recovery")
	}

	return nil
}

// requeue rebuilds record and puts it back on the queue. A non-empty
// reason first resets the stored status to pending.
func (r *Runner) requeue(ctx context.Context, record *domain.Job, reason string) {
	log := r.logger.With("job_id", record.ID, "job_type", record.Type)

	job, err := r.factory.Create(record)
	if err != nil {
		log.Error("cannot rebuild job, marking failed", "error", err)
		if err := r.store.UpdateStatus(ctx, record.ID, domain.JobStatusFailed, err.Error(), 0); err != nil {
			log.Error("failed to mark job failed", "error", err)
		}
		return
	}

	if reason != "" {
		if err := r.store.UpdateStatus(ctx, record.ID, domain.JobStatusPending, reason, 0); err != nil {
			log.Error("failed to reset job status", "error", err)
			return
		}
	}

	select {
	case r.queue <- job:
		log.Debug("job requeued")
	default:
		log.Error("failed to requeue job, queue is full")
	}
}

// worker processes jobs from the queue
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-r.queue:
			if !ok {
				r.logger.Debug("job queue closed, stopping worker", "worker_id", id)
				return
			}
			r.processJob(job, id)
		}
	}
}

// processJob handles execution of a single job
func (r *Runner) processJob(job Job, workerID int) {
	// Status writes use their own context so they still land after Stop.
	storeCtx := context.Background()
	log := r.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"task_id", job.TaskID(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateStatus(storeCtx, job.ID(), domain.JobStatusProcessing, "", 0); err != nil {
		log.Error("failed to update job status to processing", "error", err)
		return
	}

	log.Info("processing job")

	ctx, cancel := context.WithTimeout(r.ctx, r.config.JobTimeout)
	count, err := job.Execute(ctx)
	cancel()

	switch {
	case err != nil && r.ctx.Err() != nil:
		log.Warn("job interrupted by shutdown", "error", redact.Error(err))
		if updateErr := r.store.UpdateStatus(storeCtx, job.ID(), domain.JobStatusPending,
			"Interrupted by shutdown", 0); updateErr != nil {
			log.Error("failed to reset interrupted job", "error", updateErr)
		}

	case err != nil:
		log.Error("job execution failed", "error", redact.Error(err))
		if updateErr := r.store.UpdateStatus(storeCtx, job.ID(), domain.JobStatusFailed,
			redact.Error(err), 0); updateErr != nil {
			log.Error("failed to update job status to failed", "error", updateErr)
		}
		r.metrics.JobFinished(string(job.Type()), string(domain.JobStatusFailed))

	default:
		log.Info("job completed successfully", "created", count)
		if updateErr := r.store.UpdateStatus(storeCtx, job.ID(), domain.JobStatusCompleted,
			"", count); updateErr != nil {
			log.Error("failed to update job status to completed", "error", updateErr)
		}
		r.metrics.JobFinished(string(job.Type()), string(domain.JobStatusCompleted))
	}
}

// stuckJobMonitor periodically checks for jobs that have been in
// "processing" state for too long and resets them
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.resetStuckJobs(context.Background())
		}
	}
}

func (r *Runner) resetStuckJobs(ctx context.Context) {
	stuck, err := r.store.ListByStatus(ctx, domain.JobStatusProcessing, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck jobs", "count", len(stuck))
	for _, record := range stuck {
		r.requeue(ctx, record, "Reset after being stuck in processing state")
	}
}
