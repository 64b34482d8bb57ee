// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the persistence gateway of the dashboard engine:
// typed, parameterized CRUD over the five dashboard tables.
//
// Rows cross this boundary only as typed structs; untyped maps never
// reach the merge engine. Every insert-if-absent sequence runs inside
// a transaction and relies on a UNIQUE constraint over the natural
// key: a constraint violation on insert means another request just
// created the row, in which case the gateway re-reads and proceeds
// instead of failing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// Config holds configuration for a Store instance.
type Config struct {
	// Path is the sqlite database file. Required unless InMemory.
	Path string

	// InMemory opens a private in-memory database. Useful for tests.
	InMemory bool

	// Logger receives gateway diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is the SQL execution façade the merge engine talks to.
//
// It is bound to one *sql.DB; the engine performs request-scoped,
// synchronous statement sequences against it and never retries a
// failed write.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	inserts atomic.Int64
}

// Open opens (or creates) the dashboard database and initializes the
// schema.
func Open(cfg Config) (*Store, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = "file::memory:?cache=shared"
	} else {
		if dsn == "" {
			return nil, fmt.Errorf("store: path is required for persistent databases")
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; serializing through a single
	// connection avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, log: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenInMemory opens a fresh in-memory store. Intended for tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: slog.Default()}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertCount returns the number of INSERT statements executed since
// the store was opened. The merge engine's idempotency contract is
// verified against this counter: reloading unchanged state must not
// issue additional inserts.
func (s *Store) InsertCount() int64 {
	return s.inserts.Load()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dashboard_home (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		owner TEXT
	);

	-- NULL owners are distinct under a plain UNIQUE constraint, which
	-- would let two racing first-loads create the same shared home
	-- twice. The COALESCE index makes the natural key unique for
	-- shared rows too.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_home_natural
		ON dashboard_home(name, COALESCE(owner, ''));

	CREATE TABLE IF NOT EXISTS dashboard (
		id TEXT PRIMARY KEY,
		home_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		owner TEXT,
		disabled INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT 'system'
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_dashboard_natural
		ON dashboard(home_id, name, COALESCE(owner, ''));

	CREATE TABLE IF NOT EXISTS dashlet (
		id TEXT PRIMARY KEY,
		dashboard_id TEXT NOT NULL,
		owner TEXT,
		name TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		disabled INTEGER NOT NULL DEFAULT 0
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_dashlet_natural
		ON dashlet(dashboard_id, name, COALESCE(owner, ''));

	CREATE INDEX IF NOT EXISTS idx_dashboard_home_id ON dashboard(home_id);

	CREATE INDEX IF NOT EXISTS idx_dashlet_dashboard_id ON dashlet(dashboard_id);

	CREATE TABLE IF NOT EXISTS dashboard_override (
		dashboard_id TEXT NOT NULL,
		home_id INTEGER NOT NULL,
		owner TEXT NOT NULL,
		label TEXT,
		disabled INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (dashboard_id, owner)
	);

	CREATE TABLE IF NOT EXISTS dashlet_override (
		dashlet_id TEXT NOT NULL,
		dashboard_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		label TEXT,
		url TEXT,
		disabled INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (dashlet_id, owner)
	);

	CREATE TABLE IF NOT EXISTS id_sequence (
		n INTEGER PRIMARY KEY AUTOINCREMENT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// NextID allocates the next gateway-assigned sequence value, used for
// entities created interactively (derived ids cover the rest).
func (s *Store) NextID(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO id_sequence DEFAULT VALUES`)
	if err != nil {
		return 0, fmt.Errorf("allocate id: %w", err)
	}
	return res.LastInsertId()
}

// exec runs a statement, counting inserts for the idempotency checks.
func (s *Store) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT") {
		s.inserts.Add(1)
	}
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

// isUniqueViolation reports whether err is a UNIQUE constraint
// violation. Matched on the sqlite error text; the driver does not
// export a stable error type for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullable maps an optional owner to its SQL representation. The
// empty string means "shared" and is stored as NULL.
func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// fromNull unwraps a nullable column back to the empty-string
// convention used by the domain types.
func fromNull(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
