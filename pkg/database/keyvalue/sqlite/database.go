// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package sqlite provides a SQLite-backed key-value database.
package sqlite

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"strings"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Database stores entries in a single SQLite table keyed by the binary
// encoding of each key.
type Database struct {
	sqlDB *sql.DB
}

// Open opens a SQLite database and creates the schema if necessary.
func Open(path string) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.BadRequest.With("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.UnknownError.WithFormat("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, errors.UnknownError.WithFormat("create schema: %w", err)
	}
	return &Database{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (d *Database) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

// Begin begins a change set. Reads are not isolated from commits made by
// other change sets.
func (d *Database) Begin(prefix *database.Key, writable bool) keyvalue.ChangeSet {
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Prefix:  prefix,
		Get:     d.get,
		ForEach: d.forEach,
		Commit:  commit,
	})
}

func (d *Database) get(key *database.Key) ([]byte, error) {
	k, err := key.MarshalBinary()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}

	var v []byte
	err = d.sqlDB.QueryRow(`SELECT value FROM entries WHERE key = ?`, k).Scan(&v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, database.NewNotFoundError(key)
	default:
		return nil, errors.UnknownError.WithFormat("get %v: %w", key, err)
	}
}

func (d *Database) commit(entries map[string]memory.Entry) error {
	tx, err := d.sqlDB.Begin()
	if err != nil {
		return errors.UnknownError.WithFormat("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for k, e := range entries {
		if e.Delete {
			_, err = tx.Exec(`DELETE FROM entries WHERE key = ?`, []byte(k))
		} else {
			_, err = tx.Exec(`INSERT INTO entries (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`, []byte(k), e.Value)
		}
		if err != nil {
			return errors.UnknownError.WithFormat("write %v: %w", e.Key, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.UnknownError.WithFormat("commit: %w", err)
	}
	return nil
}

func (d *Database) forEach(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
	p, err := prefix.MarshalBinary()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	order := "ASC"
	if reverse {
		order = "DESC"
	}

	var rows *sql.Rows
	if len(p) == 0 {
		rows, err = d.sqlDB.Query(`SELECT key, value FROM entries ORDER BY key ` + order)
	} else if end := prefixEnd(p); end != nil {
		rows, err = d.sqlDB.Query(`SELECT key, value FROM entries WHERE key >= ? AND key < ? ORDER BY key `+order, p, end)
	} else {
		rows, err = d.sqlDB.Query(`SELECT key, value FROM entries WHERE key >= ? ORDER BY key `+order, p)
	}
	if err != nil {
		return errors.UnknownError.WithFormat("query: %w", err)
	}

	// Load everything before calling back so a callback that begins a commit
	// does not contend with the open cursor
	var entries []memory.Entry
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			_ = rows.Close()
			return errors.UnknownError.WithFormat("scan: %w", err)
		}
		key, err := database.ParseKey(k)
		if err != nil {
			_ = rows.Close()
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}
		entries = append(entries, memory.Entry{Key: key, Value: v})
	}
	if err := rows.Close(); err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if err := rows.Err(); err != nil {
		return errors.UnknownError.Wrap(err)
	}

	for _, e := range entries {
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// prefixEnd returns the smallest byte string greater than every string with
// the given prefix, or nil if there is none.
func prefixEnd(p []byte) []byte {
	end := make([]byte, len(p))
	copy(end, p)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
