package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store[S].
//
// It stores instance records in a relational database. Designed for:
//   - Production deployments requiring persistence
//   - Multiple processes sharing the instance table
//   - Records that survive process restarts
//
// MySQLStore uses connection pooling and row locking (SELECT ... FOR UPDATE)
// so the per-id read-modify-write window is serialized even across
// processes, in addition to the in-process keyed mutex.
//
// Schema:
//   - instances: one row per instance, record serialized as JSON
//
// Type parameter S is the record type to persist (must be JSON-serializable).
type MySQLStore[S any] struct {
	db   *sql.DB
	keys *keyedMutex
}

// NewMySQLStore creates a new MySQL-backed store.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Example DSNs:
//
//	user:password@tcp(localhost:3306)/mailflow
//	user:password@tcp(127.0.0.1:3306)/mailflow?parseTime=true
//
// Security Warning:
//
//	NEVER hardcode credentials in your source code. Use environment variables:
//	    dsn := os.Getenv("MYSQL_DSN")
//
// Example:
//
//	st, err := store.NewMySQLStore[flow.Instance](os.Getenv("MYSQL_DSN"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	st := &MySQLStore[S]{
		db:   db,
		keys: newKeyedMutex(),
	}

	if err := st.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return st, nil
}

// createTables creates the required schema if it doesn't exist.
func (m *MySQLStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS instances (
			id VARCHAR(255) PRIMARY KEY,
			record JSON NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`
	if _, err := m.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create instances table: %w", err)
	}
	return nil
}

// Get retrieves the current record for an instance.
func (m *MySQLStore[S]) Get(ctx context.Context, id string) (S, error) {
	var zero S

	var raw string
	err := m.db.QueryRowContext(ctx, "SELECT record FROM instances WHERE id = ?", id).Scan(&raw)
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
// The row is locked with SELECT ... FOR UPDATE inside a transaction, so the
// window is serialized across processes; the in-process keyed mutex keeps
// local triggers from queueing on the database lock.
func (m *MySQLStore[S]) Update(ctx context.Context, id string, mutate func(S) (S, error)) (S, error) {
	var zero S

	unlock := m.keys.lock(id)
	defer unlock()

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	var current S
	var raw string
	err = tx.QueryRowContext(ctx, "SELECT record FROM instances WHERE id = ? FOR UPDATE", id).Scan(&raw)
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
		INSERT INTO instances (id, record) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE record = VALUES(record)
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
func (m *MySQLStore[S]) Close() error {
	return m.db.Close()
}
