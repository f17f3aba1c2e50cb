package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

// MigrationTableName is the name of the table used by goose to track migrations.
const MigrationTableName = "schema_migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// goose keeps its dialect, table and filesystem in package state.
var migrateMu sync.Mutex

// MigrationCommands lists the goose commands Migrate accepts.
var MigrationCommands = []string{"up", "down", "status", "version", "reset", "redo"}

// Migrate runs a goose command against db using the embedded migrations for
// the dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if !isMigrationCommand(command) {
		return fmt.Errorf("unsupported migration command %q (want one of %s)",
			command, strings.Join(MigrationCommands, ", "))
	}

	dir, err := fs.Sub(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to locate migrations for %s: %w", dialect, err)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	goose.SetTableName(MigrationTableName)
	goose.SetBaseFS(dir)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	logger.Info("running migrations",
		slog.String("command", command),
		slog.String("dialect", string(dialect)))

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB, dialect Dialect) (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

func isMigrationCommand(command string) bool {
	for _, c := range MigrationCommands {
		if c == command {
			return true
		}
	}
	return false
}

// slogGooseLogger adapts slog for goose's logger interface.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. goose calls it on unrecoverable errors;
// the error is also returned to the caller, so it is only logged here.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
