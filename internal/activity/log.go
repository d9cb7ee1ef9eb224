// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity keeps a local log of confirmed mutations.
//
// Every create/update/delete/convert that the backend acknowledged is
// appended here with the acting user, so the dashboard can show recent
// activity without another backend round trip. The log is purely
// local: losing it loses nothing but history.
package activity

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// schema for the activity log.
const schema = `
CREATE TABLE IF NOT EXISTS activity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    actor TEXT NOT NULL,       -- username of the acting session
    verb TEXT NOT NULL,        -- create, update, delete, convert
    kind TEXT NOT NULL,        -- user, lead, client, project
    record_id TEXT NOT NULL,   -- server-assigned identifier
    at INTEGER NOT NULL        -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_activity_at ON activity(at);
`

// Entry is one recorded mutation.
type Entry struct {
	ID       int64
	Actor    string
	Verb     string
	Kind     string
	RecordID string
	At       time.Time
}

// Log is the sqlite-backed activity log.
type Log struct {
	db         *sql.DB
	maxEntries int
}

// Open opens (creating if needed) the activity database at path. The
// log is pruned to maxEntries rows on each insert.
func Open(path string, maxEntries int) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
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

	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &Log{db: db, maxEntries: maxEntries}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one confirmed mutation and prunes old rows.
func (l *Log) Record(actor, verb, kind, recordID string) error {
	_, err := l.db.Exec(
		"INSERT INTO activity(actor, verb, kind, record_id, at) VALUES(?, ?, ?, ?, ?)",
		actor, verb, kind, recordID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	_, err = l.db.Exec(
		"DELETE FROM activity WHERE id NOT IN (SELECT id FROM activity ORDER BY id DESC LIMIT ?)",
		l.maxEntries,
	)
	if err != nil {
		return fmt.Errorf("failed to prune activity: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(
		"SELECT id, actor, verb, kind, record_id, at FROM activity ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Actor, &e.Verb, &e.Kind, &e.RecordID, &at); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		e.At = time.Unix(at, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
