// Package testdb provides utilities specifically for database testing.
// Every helper returns a freshly migrated database so tests never share state.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// PostgresURLEnv names the variable that enables Postgres integration tests.
const PostgresURLEnv = "EISENBOARD_TEST_DB_URL"

// SQLiteURL returns a DSN for a SQLite file inside dir with foreign keys on.
func SQLiteURL(dir string) string {
	return "file:" + filepath.Join(dir, "board.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// NewSQLite returns a migrated SQLite database in a temporary directory.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	return open(t, config.DatabaseConfig{Driver: "sqlite", URL: SQLiteURL(t.TempDir())})
}

// NewPostgres returns a migrated Postgres database, skipping the test when
// EISENBOARD_TEST_DB_URL is not set. The schema is reset on cleanup.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv(PostgresURLEnv)
	if dbURL == "" {
		t.Skip(PostgresURLEnv + " not set - skipping integration test")
	}

	return open(t, config.DatabaseConfig{Driver: "postgres", URL: dbURL})
}

func open(t *testing.T, cfg config.DatabaseConfig) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, cfg, nil)
	require.NoError(t, err, "Failed to open test database")

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, "up", nil), "Failed to run migrations")

	t.Cleanup(func() {
		if dialect == sqlstore.DialectPostgres {
			if err := sqlstore.Migrate(context.Background(), db, dialect, "reset", nil); err != nil {
				t.Logf("Warning: failed to reset schema: %v", err)
			}
		}
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
