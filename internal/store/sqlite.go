// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"nickandperla.net/lit/internal/token"
)

// SchemaVersion is the version written to the metadata table.
const SchemaVersion = "2"

// SQLite is a SQLite-backed store. The heap is kept as a single BLOB row.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens or creates a SQLite store at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bindings (
			name TEXT PRIMARY KEY,
			tag TEXT NOT NULL,
			text TEXT NOT NULL,
			kind TEXT NOT NULL,
			handle INTEGER NOT NULL,
			items TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS heap (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}
	return s, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putBinding(x execer, b Binding) error {
	var items string
	if b.Tag == token.EXPRESSION {
		data, err := json.Marshal(expressionRow{Ref: b.Ref, Items: b.Items})
		if err != nil {
			return err
		}
		items = string(data)
	}
	// SQLite integers are signed; the packed handle round-trips bit for bit.
	_, err := x.Exec(`
		INSERT INTO bindings (name, tag, text, kind, handle, items) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			tag = excluded.tag, text = excluded.text, kind = excluded.kind,
			handle = excluded.handle, items = excluded.items
	`, b.Name, b.Tag.String(), b.Text, b.Kind, int64(b.Handle), items)
	return err
}

// expressionRow is the JSON form of an expression's items column.
type expressionRow struct {
	Ref   string    `json:"ref,omitempty"`
	Items []Binding `json:"items"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (Binding, error) {
	var (
		b      Binding
		tag    string
		handle int64
		items  string
	)
	if err := row.Scan(&b.Name, &tag, &b.Text, &b.Kind, &handle, &items); err != nil {
		return Binding{}, err
	}
	t, ok := token.ParseTag(tag)
	if !ok {
		return Binding{}, fmt.Errorf("binding %s: tag %q: %w", b.Name, tag, ErrCorrupt)
	}
	b.Tag = t
	b.Handle = uint64(handle)
	if t == token.EXPRESSION {
		var row expressionRow
		if err := json.Unmarshal([]byte(items), &row); err != nil {
			return Binding{}, fmt.Errorf("binding %s: items: %w", b.Name, ErrCorrupt)
		}
		b.Ref, b.Items = row.Ref, row.Items
	}
	return b, nil
}

// Get retrieves a binding by name.
func (s *SQLite) Get(name string) (Binding, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow("SELECT name, tag, text, kind, handle, items FROM bindings WHERE name = ?", name)
	b, err := scanBinding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Binding{}, false, nil
	}
	if err != nil {
		return Binding{}, false, err
	}
	return b, true, nil
}

// Delete removes a binding by name.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM bindings WHERE name = ?", name)
	return err
}

// Save replaces the heap and every binding in one transaction.
func (s *SQLite) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bindings"); err != nil {
		return err
	}
	for _, b := range snap.Bindings {
		if err := putBinding(tx, b); err != nil {
			return fmt.Errorf("save %s: %w", b.Name, err)
		}
	}
	data := snap.Heap
	if data == nil {
		data = []byte{}
	}
	_, err = tx.Exec(`
		INSERT INTO heap (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, data)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored snapshot with bindings sorted by name.
func (s *SQLite) Load() (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap Snapshot
	err := s.db.QueryRow("SELECT data FROM heap WHERE id = 1").Scan(&snap.Heap)
	saved := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, err
	}

	rows, err := s.db.Query("SELECT name, tag, text, kind, handle, items FROM bindings ORDER BY name")
	if err != nil {
		return Snapshot{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return Snapshot{}, false, err
		}
		snap.Bindings = append(snap.Bindings, b)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, false, err
	}
	if !saved && len(snap.Bindings) == 0 {
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
