// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing board rules to remain
// independent of the database in use (an embedded SQLite file or Postgres).
package store
