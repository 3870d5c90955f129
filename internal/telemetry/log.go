// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          INTEGER NOT NULL,
	provider    TEXT    NOT NULL,
	duration_ms INTEGER NOT NULL,
	ok          INTEGER NOT NULL,
	error_kind  TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_requests_at ON requests(at);
CREATE INDEX IF NOT EXISTS idx_requests_provider ON requests(provider);
`

var ErrClosed = errors.New("telemetry log closed")

// =============================================================================
// REQUEST LOG
// =============================================================================

// Entry is one recorded provider call.
type Entry struct {
	At        time.Time
	Provider  string
	Duration  time.Duration
	OK        bool
	ErrorKind string
}

// Summary aggregates recorded calls for one provider.
type Summary struct {
	Provider      string
	Requests      int
	Failures      int
	TotalDuration time.Duration
}

// AvgDuration returns the mean call duration, or zero with no requests.
func (s Summary) AvgDuration() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Requests)
}

// Log records provider calls in a local SQLite database. Recording
// failures are logged and swallowed so telemetry can never break a send.
//
// Safe for concurrent use: a send goroutine may record while the main
// goroutine is closing on exit.
type Log struct {
	mu sync.Mutex
	db *sql.DB
}

// DefaultPath returns ~/.parley/telemetry.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley", "telemetry.db"), nil
}

// Open opens (creating if needed) the request log at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close releases the database handle. Later calls report ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// handle returns the open database, or ErrClosed after Close.
func (l *Log) handle() (*sql.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil, ErrClosed
	}
	return l.db, nil
}

// Record stores one completed provider call. It satisfies the controller's
// Recorder interface; errors here are reported, never returned upward.
func (l *Log) Record(provider string, duration time.Duration, callErr error) {
	if err := l.record(Entry{
		At:        time.Now(),
		Provider:  provider,
		Duration:  duration,
		OK:        callErr == nil,
		ErrorKind: errorKind(callErr),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: record failed: %v\n", err)
	}
}

func (l *Log) record(e Entry) error {
	db, err := l.handle()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO requests (at, provider, duration_ms, ok, error_kind) VALUES (?, ?, ?, ?, ?)`,
		e.At.UnixMilli(), e.Provider, e.Duration.Milliseconds(), boolToInt(e.OK), e.ErrorKind,
	)
	return err
}

// Recent returns the newest n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	db, err := l.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT at, provider, duration_ms, ok, error_kind FROM requests ORDER BY at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var at, durationMS int64
		var ok int
		var e Entry
		if err := rows.Scan(&at, &e.Provider, &durationMS, &ok, &e.ErrorKind); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(at)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.OK = ok != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summarize aggregates calls since the given time, grouped by provider.
func (l *Log) Summarize(since time.Time) ([]Summary, error) {
	db, err := l.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
		SELECT provider,
		       COUNT(*),
		       SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END),
		       SUM(duration_ms)
		FROM requests
		WHERE at >= ?
		GROUP BY provider
		ORDER BY provider`, since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var totalMS int64
		if err := rows.Scan(&s.Provider, &s.Requests, &s.Failures, &totalMS); err != nil {
			return nil, err
		}
		s.TotalDuration = time.Duration(totalMS) * time.Millisecond
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Prune deletes entries older than the given time and returns the count.
func (l *Log) Prune(before time.Time) (int64, error) {
	db, err := l.handle()
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`DELETE FROM requests WHERE at < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// errorKind reduces a send error to a stable label for aggregation.
// The full error text stays out of the database.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
