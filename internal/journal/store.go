// internal/journal/store.go
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB wraps *sql.DB with journal helpers.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite file at path with WAL journal mode.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	raw, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if err := raw.Ping(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	// single writer
	raw.SetMaxOpenConns(1)
	return &DB{raw}, nil
}

// Migrate applies the schema. It is idempotent.
func Migrate(db *DB) error {
	for _, stmt := range []string{ddlTelemetry, ddlEvents} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return nil
}

const ddlTelemetry = `
CREATE TABLE IF NOT EXISTS telemetry (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    at_ms   INTEGER NOT NULL,
    payload TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_telemetry_at ON telemetry (at_ms DESC);
`

const ddlEvents = `
CREATE TABLE IF NOT EXISTS events (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    at_ms INTEGER NOT NULL,
    name  TEXT    NOT NULL,
    value TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_at ON events (at_ms DESC);
`

const (
	insertTelemetry = "INSERT INTO telemetry (at_ms, payload) VALUES (?, ?)"
	insertEvent     = "INSERT INTO events (at_ms, name, value) VALUES (?, ?, ?)"
	selectEvents    = "SELECT at_ms, name, value FROM events ORDER BY at_ms DESC, id DESC LIMIT ?"
)

// EventRow is one journalled event. Value is the JSON payload, if any.
type EventRow struct {
	At    time.Time
	Name  string
	Value sql.NullString
}

// RecentEvents returns up to limit events, newest first.
func (db *DB) RecentEvents(ctx context.Context, limit int) ([]EventRow, error) {
	rows, err := db.QueryContext(ctx, selectEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var (
			r  EventRow
			ms int64
		)
		if err := rows.Scan(&ms, &r.Name, &r.Value); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		r.At = time.UnixMilli(ms)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: query events: %w", err)
	}
	return out, nil
}
