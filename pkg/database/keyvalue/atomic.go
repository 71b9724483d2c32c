// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package keyvalue

import "gitlab.com/accumulatenetwork/transmute/pkg/database"

// Store is a key-value store.
type Store interface {
	// Get loads a value. Get returns a [database.NotFoundError] if the key
	// does not exist.
	Get(*database.Key) ([]byte, error)

	// Put stores a value.
	Put(*database.Key, []byte) error

	// Delete deletes a key-value pair.
	Delete(*database.Key) error

	// ForEach calls the callback for every key-value pair that starts with
	// the given prefix, in ascending key order or descending if reverse is
	// set. Keys passed to the callback include the prefix.
	ForEach(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error
}

// ChangeSet is a key-value change set.
type ChangeSet interface {
	Store
	Beginner

	// Commit commits pending changes.
	Commit() error

	// Discard discards pending changes.
	Discard()
}

// A Beginner can begin key-value change sets.
type Beginner interface {
	// Begin begins a transaction or sub-transaction with a prefix applied to keys.
	Begin(prefix *database.Key, writable bool) ChangeSet
}
