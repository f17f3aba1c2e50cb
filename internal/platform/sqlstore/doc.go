// Package sqlstore implements the store interfaces on database/sql.
//
// Two dialects are supported: an embedded SQLite file through modernc.org/sqlite
// (the default, so the board lives next to the binary) and PostgreSQL through
// the pgx stdlib driver. Queries are written with '?' placeholders and rebound
// for Postgres. Schema changes are goose migrations embedded per dialect.
package sqlstore
