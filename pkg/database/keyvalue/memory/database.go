// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"bytes"
	"slices"
	"sync"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

type Database struct {
	mu      sync.RWMutex
	entries map[string]Entry
	prefix  *database.Key
}

var _ keyvalue.Beginner = (*Database)(nil)

func New(prefix *database.Key) *Database {
	return &Database{prefix: prefix}
}

// Begin begins a change set.
func (d *Database) Begin(prefix *database.Key, writable bool) keyvalue.ChangeSet {
	var commit CommitFunc
	if writable {
		commit = d.put
	}
	return NewChangeSet(ChangeSetOptions{
		Prefix:  prefix,
		Get:     d.get,
		ForEach: d.forEach,
		Commit:  commit,
	})
}

// Export exports the database as a set of entries, in key order.
func (d *Database) Export() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		entries = append(entries, e)
	}
	sortEntries(entries, false)
	return entries
}

func (d *Database) get(key *database.Key) ([]byte, error) {
	// Prefix the key
	key = d.prefix.AppendKey(key)
	k, err := key.MarshalBinary()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[string(k)]
	if ok {
		return slices.Clone(entry.Value), nil
	}

	// Not found
	return nil, database.NewNotFoundError(key)
}

func (d *Database) put(entries map[string]Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.entries == nil {
		d.entries = make(map[string]Entry, len(entries))
	}

	for _, e := range entries {
		// Prefix the key
		key := d.prefix.AppendKey(e.Key)
		k, err := key.MarshalBinary()
		if err != nil {
			return errors.UnknownError.Wrap(err)
		}

		if e.Delete {
			delete(d.entries, string(k))
		} else {
			d.entries[string(k)] = Entry{Key: key, Value: slices.Clone(e.Value)}
		}
	}
	return nil
}

func (d *Database) forEach(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
	prefix = d.prefix.AppendKey(prefix)
	p, err := prefix.MarshalBinary()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	d.mu.RLock()
	var matches []Entry
	for k, e := range d.entries {
		if bytes.HasPrefix([]byte(k), p) {
			matches = append(matches, e)
		}
	}
	d.mu.RUnlock()

	sortEntries(matches, reverse)
	for _, e := range matches {
		err := fn(e.Key.SliceI(d.prefix.Len()), slices.Clone(e.Value))
		if err != nil {
			return err
		}
	}
	return nil
}
