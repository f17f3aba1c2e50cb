package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/events"
	"github.com/eisenboard/eisenboard-api/internal/job"
	"github.com/eisenboard/eisenboard-api/internal/metrics"
	"github.com/eisenboard/eisenboard-api/internal/platform/gemini"
	"github.com/eisenboard/eisenboard-api/internal/platform/openrouter"
	"github.com/eisenboard/eisenboard-api/internal/platform/sqlstore"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Recorder

	// Stores
	taskStore store.TaskStore
	jobStore  store.JobStore

	// Service interfaces
	boardService  service.BoardService
	assistService service.AssistService

	// Event system
	eventEmitter *events.InMemoryEventEmitter

	// Background jobs
	jobRunner *job.Runner
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be connected and migrated.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Metrics.Enabled {
		app.metrics = metrics.New()
	}

	// Initialize stores
	app.taskStore = sqlstore.NewTaskStore(db, dialect, logger)
	app.jobStore = sqlstore.NewJobStore(db, dialect, logger)

	completer, err := newCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.boardService, err = service.NewBoardService(app.taskStore, db, app.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.assistService, err = service.NewAssistService(
		app.taskStore,
		app.jobStore,
		db,
		completer,
		app.eventEmitter,
		service.AssistConfigFrom(cfg.LLM),
		app.metrics,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assist service: %w", err)
	}

	app.jobRunner, err = setupJobRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup job runner: %w", err)
	}

	// Job requests raised by the assist service are turned into runner submissions
	app.eventEmitter.RegisterHandler(job.NewEventHandler(app.jobRunner, logger))

	logger.Info("Application initialized successfully",
		"ai_enabled", app.assistService.Enabled(),
		"metrics_enabled", app.metrics != nil)
	return app, nil
}

// newCompleter builds the client for the configured LLM provider. Without an
// API key it returns a nil Completer, which leaves the assistant disabled.
func newCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (assist.Completer, error) {
	if !cfg.Enabled() {
		logger.Info("No LLM API key configured, AI features disabled")
		return nil, nil
	}

	switch cfg.Provider {
	case "gemini":
		completer, err := gemini.NewCompleter(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini completer initialized", "model", cfg.GeminiModel)
		return completer, nil
	default:
		client, err := openrouter.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("OpenRouter client initialized", "model", cfg.Model, "expand_model", cfg.ExpandModel)
		return client, nil
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupJobRunner creates and starts the background job runner. Starting it
// recovers jobs left unfinished by a previous run.
func setupJobRunner(app *application) (*job.Runner, error) {
	runner, err := job.NewRunner(
		app.jobStore,
		job.NewAssistFactory(app.assistService, app.logger),
		job.RunnerConfigFrom(app.config.Jobs),
		app.metrics,
		app.logger,
	)
	if err != nil {
		return nil, err
	}

	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	return runner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
