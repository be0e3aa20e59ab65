package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store[S].
//
// It stores instance records in a single-file database. Designed for:
//   - Development and testing with zero setup
//   - Single-process deployments requiring durability
//   - Prototyping before migrating to a shared database
//
// SQLiteStore uses WAL mode for concurrent reads and transactional writes,
// so every Update is flushed durably before it returns.
//
// Schema:
//   - instances: one row per instance, record serialized as JSON
//
// Type parameter S is the record type to persist (must be JSON-serializable).
type SQLiteStore[S any] struct {
	db   *sql.DB
	keys *keyedMutex
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
//
// The path parameter specifies the database file location:
//   - "./dev.db" - file in current directory
//   - "/var/lib/mailflow/instances.db" - absolute path
//   - ":memory:" - in-memory database (data lost on close)
//
// The store automatically:
//   - Creates the database file if it doesn't exist
//   - Creates the instances table
//   - Enables WAL mode for concurrent reads
//   - Configures a busy timeout
//
// Example:
//
//	st, err := store.NewSQLiteStore[flow.Instance]("./instances.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(1)    // SQLite supports one writer at a time
	db.SetMaxIdleConns(1)    // Keep connection open
	db.SetConnMaxLifetime(0) // No max lifetime for SQLite

	ctx := context.Background()

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout (wait up to 5 seconds for locks)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	st := &SQLiteStore[S]{
		db:   db,
		keys: newKeyedMutex(),
		path: path,
	}

	if err := st.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return st, nil
}

// createTables creates the required schema if it doesn't exist.
func (s *SQLiteStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS instances (
			id TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create instances table: %w", err)
	}
	return nil
}

// Get retrieves the current record for an instance.
func (s *SQLiteStore[S]) Get(ctx context.Context, id string) (S, error) {
	var zero S

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT record FROM instances WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load instance %s: %w", id, err)
	}

	var record S
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return zero, fmt.Errorf("failed to decode instance %s: %w", id, err)
	}
	return record, nil
}

// Update applies an atomic read-modify-write for id.
//
// The read-modify-write runs inside one transaction under a per-id lock;
// the commit flushes the write before Update returns.
func (s *SQLiteStore[S]) Update(ctx context.Context, id string, mutate func(S) (S, error)) (S, error) {
	var zero S

	unlock := s.keys.lock(id)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	var current S
	var raw string
	err = tx.QueryRowContext(ctx, "SELECT record FROM instances WHERE id = ?", id).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// Absent: the mutator receives the zero record.
	case err != nil:
		return zero, fmt.Errorf("failed to load instance %s: %w", id, err)
	default:
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return zero, fmt.Errorf("failed to decode instance %s: %w", id, err)
		}
	}

	next, err := mutate(current)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return zero, fmt.Errorf("failed to encode instance %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO instances (id, record, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET record = excluded.record, updated_at = CURRENT_TIMESTAMP
	`, id, string(encoded))
	if err != nil {
		return zero, fmt.Errorf("failed to write instance %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("failed to commit instance %s: %w", id, err)
	}

	return next, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore[S]) Close() error {
	return s.db.Close()
}
