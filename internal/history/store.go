// Package history persists a record of eject attempts backed by SQLite.
//
// History is an audit trail of what ejectd did, never of drive state: the
// catalog itself is rebuilt from the OS on every refresh and is never
// persisted.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ejectd/internal/drive"
)

// Entry is one recorded eject attempt.
type Entry struct {
	ID               int64
	OperationID      string
	DevicePath       string
	Label            string
	Outcome          string
	FailedPartitions []string
	CreatedAt        time.Time
}

// Store manages eject history persistence.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS eject_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operation_id TEXT NOT NULL,
	device_path TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	failed_partitions TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`

// Open initializes or connects to the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record stores the result of one eject attempt. The label is the drive's
// friendly name at the time of the attempt.
func (s *Store) Record(ctx context.Context, result drive.Result, label string) error {
	var failed []string
	for _, partition := range result.Partitions {
		if !partition.Unmounted {
			failed = append(failed, partition.DevicePath)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eject_attempts (operation_id, device_path, label, outcome, failed_partitions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.OperationID,
		result.DevicePath,
		label,
		result.Outcome.String(),
		strings.Join(failed, ","),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record eject attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation_id, device_path, label, outcome, failed_partitions, created_at
		 FROM eject_attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query eject attempts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var failed, createdRaw string
		if err := rows.Scan(&entry.ID, &entry.OperationID, &entry.DevicePath, &entry.Label, &entry.Outcome, &failed, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan eject attempt: %w", err)
		}
		if failed != "" {
			entry.FailedPartitions = strings.Split(failed, ",")
		}
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eject attempts: %w", err)
	}
	return entries, nil
}
