// Package history mirrors execution records into SQLite for querying.
//
// The JSONL journal is the canonical append-only log; this mirror exists so
// `nucleo history` can filter and page without rescanning the journal.
// Mirror writes are best-effort and never fail a dispatch.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/razonbilstro/nucleo/internal/journal"
)

// ErrRecordNotFound is returned when a dispatch ID has no record.
var ErrRecordNotFound = errors.New("execution record not found")

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dispatch_id TEXT NOT NULL UNIQUE,
	timestamp TEXT NOT NULL,
	command TEXT NOT NULL,
	class TEXT NOT NULL,
	outcome TEXT NOT NULL,
	exit_code INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	output TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_executions_timestamp ON executions(timestamp);
CREATE INDEX IF NOT EXISTS idx_executions_outcome ON executions(outcome);
`

// Open opens (or creates) the history database and applies the schema.
// Use ":memory:" in tests.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent appenders.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating history db: %w", err)
	}
	return &DB{conn}, nil
}

// Append inserts one execution record. Implements dispatch.Recorder.
func (db *DB) Append(rec journal.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO executions (dispatch_id, timestamp, command, class, outcome, exit_code, duration_ms, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.DispatchID, rec.Timestamp.Format(time.RFC3339), rec.Command, rec.Class,
		rec.Outcome, rec.ExitCode, rec.DurationMs, rec.Output)
	if err != nil {
		return fmt.Errorf("inserting execution record: %w", err)
	}
	return nil
}

// ListOptions filters and pages List results.
type ListOptions struct {
	// Outcome filters to one outcome when non-empty.
	Outcome string
	// Search filters to commands containing the substring when non-empty.
	Search string
	// Limit caps the result count; 0 means a default of 50.
	Limit int
	// Offset skips rows for paging.
	Offset int
}

// List returns records newest-first.
func (db *DB) List(opts ListOptions) ([]journal.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT dispatch_id, timestamp, command, class, outcome, exit_code, duration_ms, output
		FROM executions WHERE 1=1`
	args := []any{}
	if opts.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, opts.Outcome)
	}
	if opts.Search != "" {
		query += ` AND command LIKE ?`
		args = append(args, "%"+opts.Search+"%")
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}
	defer rows.Close()

	var records []journal.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the record for a dispatch ID.
func (db *DB) Get(dispatchID string) (journal.Record, error) {
	row := db.QueryRow(`SELECT dispatch_id, timestamp, command, class, outcome, exit_code, duration_ms, output
		FROM executions WHERE dispatch_id = ?`, dispatchID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Record{}, ErrRecordNotFound
	}
	return rec, err
}

// Count returns the total number of mirrored records.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM executions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting executions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (journal.Record, error) {
	var rec journal.Record
	var ts string
	if err := s.Scan(&rec.DispatchID, &ts, &rec.Command, &rec.Class, &rec.Outcome,
		&rec.ExitCode, &rec.DurationMs, &rec.Output); err != nil {
		return journal.Record{}, err
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return journal.Record{}, fmt.Errorf("parsing record timestamp: %w", err)
	}
	rec.Timestamp = parsed
	return rec, nil
}
