// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package structcache persists the fine-grained struct index
// (dwat.FGStructMap) computed for a binary, keyed on the binary's path,
// size, and modification time, so repeated `godwat dump` invocations
// against the same large binary skip re-scanning debug_info. Adapted from
// internal/db/db.go's sqlite-backed Store; the schema and query shape are
// the same, the payload is different (a serialized struct-layout map
// instead of debugging sessions).
package structcache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one cached struct's rendered layout, keyed by the dwat.StructKey
// fields flattened for storage (name, byte size, member signature).
type Entry struct {
	Name       string `json:"name"`
	ByteSize   uint64 `json:"byte_size"`
	Members    string `json:"members"`
	Rendered   string `json:"rendered"`
}

// Store wraps the sqlite-backed struct cache database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the struct cache database at
// cacheDir/structs.db.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	dbPath := filepath.Join(cacheDir, "structs.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening struct cache db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS binaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		mtime INTEGER NOT NULL,
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(path, size, mtime)
	);
	CREATE TABLE IF NOT EXISTS structs (
		binary_id INTEGER NOT NULL REFERENCES binaries(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		byte_size INTEGER NOT NULL,
		members TEXT NOT NULL,
		rendered TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_structs_binary ON structs(binary_id);
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("initializing struct cache schema: %w", err)
	}
	return nil
}

// Key uniquely identifies a cached scan of one binary on disk.
type Key struct {
	Path  string
	Size  int64
	MTime time.Time
}

// KeyForFile stats path and builds the Key a Get/Put call should use.
func KeyForFile(path string) (Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Key{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Key{Path: path, Size: info.Size(), MTime: info.ModTime()}, nil
}

// Get returns the cached struct entries for key, or (nil, false, nil) on a
// cache miss.
func (s *Store) Get(key Key) ([]Entry, bool, error) {
	var binaryID int64
	err := s.db.QueryRow(
		`SELECT id FROM binaries WHERE path = ? AND size = ? AND mtime = ?`,
		key.Path, key.Size, key.MTime.Unix(),
	).Scan(&binaryID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up cached binary: %w", err)
	}

	rows, err := s.db.Query(`SELECT name, byte_size, members, rendered FROM structs WHERE binary_id = ?`, binaryID)
	if err != nil {
		return nil, false, fmt.Errorf("reading cached structs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.ByteSize, &e.Members, &e.Rendered); err != nil {
			return nil, false, fmt.Errorf("scanning cached struct: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, true, nil
}

// Put replaces any cached entries for key with entries.
func (s *Store) Put(key Key, entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting cache transaction: %w", err)
	}
	defer tx.Rollback()

	var binaryID int64
	err = tx.QueryRow(
		`INSERT INTO binaries (path, size, mtime) VALUES (?, ?, ?)
		 ON CONFLICT(path, size, mtime) DO UPDATE SET cached_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		key.Path, key.Size, key.MTime.Unix(),
	).Scan(&binaryID)
	if err != nil {
		return fmt.Errorf("upserting cached binary row: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM structs WHERE binary_id = ?`, binaryID); err != nil {
		return fmt.Errorf("clearing stale cache entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO structs (binary_id, name, byte_size, members, rendered) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(binaryID, e.Name, e.ByteSize, e.Members, e.Rendered); err != nil {
			return fmt.Errorf("inserting cached struct %s: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// MarshalEntries is a convenience for callers that already have the
// structured map and just need a transport shape for tests.
func MarshalEntries(entries []Entry) ([]byte, error) {
	return json.Marshal(entries)
}
