// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"bytes"
	"slices"
	"sort"
	"sync"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// Entry is a pending or stored key-value pair.
type Entry struct {
	Key    *database.Key
	Value  []byte
	Delete bool
}

type GetFunc = func(*database.Key) ([]byte, error)
type CommitFunc = func(map[string]Entry) error
type ForEachFunc = func(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error

// ChangeSetOptions are the parameters of [NewChangeSet]. If Commit is nil the
// change set is read-only.
type ChangeSetOptions struct {
	Prefix  *database.Key
	Get     GetFunc
	ForEach ForEachFunc
	Commit  CommitFunc
	Discard func()
}

// ChangeSet buffers writes in memory until they are committed to the
// underlying store. Reads see buffered writes.
type ChangeSet struct {
	opts    ChangeSetOptions
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ keyvalue.ChangeSet = (*ChangeSet)(nil)

func NewChangeSet(opts ChangeSetOptions) *ChangeSet {
	c := new(ChangeSet)
	c.opts = opts
	c.entries = map[string]Entry{}
	return c
}

// Begin begins a nested change set. Its writes are committed into this change
// set.
func (c *ChangeSet) Begin(prefix *database.Key, writable bool) keyvalue.ChangeSet {
	var commit CommitFunc
	if writable && c.opts.Commit != nil {
		commit = c.putAll
	}
	return NewChangeSet(ChangeSetOptions{
		Prefix:  prefix,
		Get:     c.Get,
		ForEach: c.ForEach,
		Commit:  commit,
	})
}

func (c *ChangeSet) Get(key *database.Key) ([]byte, error) {
	key = c.opts.Prefix.AppendKey(key)
	k, err := key.MarshalBinary()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}

	c.mu.RLock()
	e, ok := c.entries[string(k)]
	c.mu.RUnlock()
	if ok {
		if e.Delete {
			return nil, database.NewNotFoundError(key)
		}
		return slices.Clone(e.Value), nil
	}

	if c.opts.Get == nil {
		return nil, database.NewNotFoundError(key)
	}
	return c.opts.Get(key)
}

func (c *ChangeSet) Put(key *database.Key, value []byte) error {
	return c.set(key, slices.Clone(value), false)
}

func (c *ChangeSet) Delete(key *database.Key) error {
	return c.set(key, nil, true)
}

func (c *ChangeSet) set(key *database.Key, value []byte, del bool) error {
	if c.opts.Commit == nil {
		return errors.NotAllowed.With("change set is read-only")
	}

	key = c.opts.Prefix.AppendKey(key)
	k, err := key.MarshalBinary()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[string(k)] = Entry{Key: key, Value: value, Delete: del}
	return nil
}

func (c *ChangeSet) putAll(entries map[string]Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		key := c.opts.Prefix.AppendKey(e.Key)
		k, err := key.MarshalBinary()
		if err != nil {
			return errors.UnknownError.Wrap(err)
		}
		c.entries[string(k)] = Entry{Key: key, Value: e.Value, Delete: e.Delete}
	}
	return nil
}

// ForEach iterates over the stored entries merged with pending changes.
func (c *ChangeSet) ForEach(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
	full := c.opts.Prefix.AppendKey(prefix)
	p, err := full.MarshalBinary()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	merged := map[string]Entry{}
	if c.opts.ForEach != nil {
		err = c.opts.ForEach(full, reverse, func(key *database.Key, value []byte) error {
			k, err := key.MarshalBinary()
			if err != nil {
				return errors.UnknownError.Wrap(err)
			}
			merged[string(k)] = Entry{Key: key, Value: value}
			return nil
		})
		if err != nil {
			return err
		}
	}

	c.mu.RLock()
	for k, e := range c.entries {
		if !bytes.HasPrefix([]byte(k), p) {
			continue
		}
		if e.Delete {
			delete(merged, k)
		} else {
			merged[k] = e
		}
	}
	c.mu.RUnlock()

	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sortEntries(entries, reverse)

	n := c.opts.Prefix.Len()
	for _, e := range entries {
		err := fn(e.Key.SliceI(n), slices.Clone(e.Value))
		if err != nil {
			return err
		}
	}
	return nil
}

// Commit writes pending changes to the underlying store. The change set may
// be used again after it is committed.
func (c *ChangeSet) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.Commit == nil {
		if len(c.entries) == 0 {
			return nil
		}
		return errors.NotAllowed.With("change set is read-only")
	}

	err := c.opts.Commit(c.entries)
	if err != nil {
		return err
	}
	c.entries = map[string]Entry{}
	return nil
}

// Discard drops pending changes.
func (c *ChangeSet) Discard() {
	c.mu.Lock()
	c.entries = map[string]Entry{}
	c.mu.Unlock()

	if c.opts.Discard != nil {
		c.opts.Discard()
	}
}

func sortEntries(entries []Entry, reverse bool) {
	sort.Slice(entries, func(i, j int) bool {
		c := entries[i].Key.Compare(entries[j].Key)
		if reverse {
			return c > 0
		}
		return c < 0
	})
}
