// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a local log of donation actions in SQLite.
//
// The backend is the system of record for requests; this log exists so the
// donor can review what they did from this device, including actions on
// requests the backend has since resolved and no longer returns.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/bloodlink/bloodlink-tui/internal/store"
)

// Action values recorded in the log.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionCancel  = "cancel"
)

// historyFile is the database file name under the data directory.
const historyFile = "history.db"

// Entry is one recorded donation action.
type Entry struct {
	ID         int64
	RequestID  string
	Action     string
	BloodGroup string
	Hospital   string
	CreatedAt  time.Time
}

// Log is a local, append-only action log.
type Log struct {
	db *sql.DB
}

// Open opens the log at the default location, creating it if needed.
func Open() (*Log, error) {
	dir, err := store.Dir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, historyFile))
}

// OpenPath opens the log at an explicit path.
func OpenPath(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure history database: %w", err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id  TEXT NOT NULL,
			action      TEXT NOT NULL,
			blood_group TEXT NOT NULL DEFAULT '',
			hospital    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at DESC);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one action to the log.
func (l *Log) Record(ctx context.Context, e Entry) error {
	when := e.CreatedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO actions (request_id, action, blood_group, hospital, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.RequestID, e.Action, e.BloodGroup, e.Hospital, when)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, request_id, action, blood_group, hospital, created_at
		FROM actions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Action, &e.BloodGroup, &e.Hospital, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
