package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// PingTimeout bounds the connectivity check in Open.
const PingTimeout = 5 * time.Second

// Open connects to the configured database, sizes the pool for the dialect
// and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.DriverName(), cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	configurePool(db, dialect)

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("dialect", string(dialect)))
	return db, dialect, nil
}

// configurePool applies per-dialect pool limits. SQLite serialises writers, so
// one connection avoids SQLITE_BUSY and keeps in-memory databases alive.
func configurePool(db *sql.DB, dialect Dialect) {
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}
