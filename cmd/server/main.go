// Package main implements the entry point for the Eisenboard API server
// which owns an Eisenhower-matrix task board and provides LLM integration
// for categorizing and breaking down tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/platform/sqlstore"
	"github.com/eisenboard/eisenboard-api/internal/redact"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: ./config.yaml if present)")
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command and exit ("+strings.Join(sqlstore.MigrationCommands, ", ")+")")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrateCmd); err != nil {
		slog.Error("Eisenboard API server failed", "error", redact.Error(err))
		stop()
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves the API until ctx is cancelled.
func run(ctx context.Context, configPath, migrateCmd string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"llm_provider", cfg.LLM.Provider,
		"ai_enabled", cfg.LLM.Enabled())

	db, dialect, err := sqlstore.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return sqlstore.Migrate(ctx, db, dialect, migrateCmd, log)
	}

	if cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, db, dialect, "up", log); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, log, db, dialect)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
