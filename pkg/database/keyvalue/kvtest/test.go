// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package kvtest

import (
	"crypto/rand"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

type Opener = func() (keyvalue.Beginner, error)

type closableDb struct {
	keyvalue.Beginner
	t      testing.TB
	closed bool
}

func (c *closableDb) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if d, ok := c.Beginner.(io.Closer); ok {
		require.NoError(c.t, d.Close())
	}
}

func openDb(t testing.TB, open Opener) *closableDb {
	db, err := open()
	require.NoError(t, err)
	c := &closableDb{db, t, false}
	t.Cleanup(c.Close)
	return c
}

// TestSuite runs every conformance test against databases returned by open.
// The opener must return a database backed by the same storage every time it
// is called.
func TestSuite(t *testing.T, open Opener) {
	t.Run("Database", func(t *testing.T) { TestDatabase(t, open) })
	t.Run("SubBatch", func(t *testing.T) { TestSubBatch(t, open) })
	t.Run("Prefix", func(t *testing.T) { TestPrefix(t, open) })
	t.Run("Delete", func(t *testing.T) { TestDelete(t, open) })
	t.Run("ForEach", func(t *testing.T) { TestForEach(t, open) })
	t.Run("ReadOnly", func(t *testing.T) { TestReadOnly(t, open) })
}

// balance returns the key and value of the Nth test balance record.
func balance(i int) (*database.Key, string) {
	return database.NewKey("contract", "contract1", "balance", fmt.Sprintf("owner%d", i)), fmt.Sprintf("%d", i*1_000_000)
}

func TestDatabase(t *testing.T, open Opener) {
	const N = 1000
	db := openDb(t, open)

	batch := db.Begin(nil, true)
	defer batch.Discard()

	// Nothing exists yet
	k, _ := balance(0)
	_, err := batch.Get(k)
	require.ErrorAs(t, err, new(*database.NotFoundError))
	require.ErrorIs(t, err, errors.NotFound)

	want := map[string]string{}
	for i := 0; i < N; i++ {
		k, v := balance(i)
		want[k.String()] = v
		require.NoError(t, batch.Put(k, []byte(v)), "Put")
	}
	require.NoError(t, batch.Commit())
	batch.Discard()

	verify := func(s keyvalue.Store) {
		for i := 0; i < N; i++ {
			k, v := balance(i)
			got, err := s.Get(k)
			require.NoError(t, err, "Get")
			require.Equal(t, v, string(got))
		}
	}

	// A new batch sees the committed records
	batch = db.Begin(nil, false)
	verify(batch)
	batch.Discard()

	// So does a fresh instance
	db.Close()
	db = openDb(t, open)
	batch = db.Begin(nil, false)
	defer batch.Discard()
	verify(batch)

	require.NoError(t, batch.ForEach(database.NewKey("contract", "contract1", "balance"), false, func(key *database.Key, value []byte) error {
		v, ok := want[key.String()]
		require.Truef(t, ok, "%v should exist", key)
		require.Equalf(t, v, string(value), "%v should match", key)
		delete(want, key.String())
		return nil
	}))
	require.Empty(t, want, "every record should be visited")
}

func TestSubBatch(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(nil, true)
	defer batch.Discard()
	sub := batch.Begin(nil, true)
	defer sub.Discard()

	for i := 0; i < 1000; i++ {
		err := sub.Put(database.NewKey("sub", i), []byte(fmt.Sprintf("%x this much data ", i)))
		require.NoError(t, err, "Put")
	}

	// Commit and begin a new sub-batch
	require.NoError(t, sub.Commit())
	sub = batch.Begin(nil, true)
	defer sub.Discard()

	for i := 0; i < 1000; i++ {
		val, err := sub.Get(database.NewKey("sub", i))
		require.NoError(t, err, "Get")
		require.Equal(t, fmt.Sprintf("%x this much data ", i), string(val))
	}

	// A discarded sub-batch leaves the parent untouched
	discarded := batch.Begin(nil, true)
	require.NoError(t, discarded.Put(database.NewKey("sub", "discarded"), []byte("x")))
	discarded.Discard()
	_, err := batch.Get(database.NewKey("sub", "discarded"))
	require.ErrorIs(t, err, errors.NotFound)
}

func TestPrefix(t *testing.T, open Opener) {
	info := make([]byte, 16)
	_, err := io.ReadFull(rand.Reader, info)
	require.NoError(t, err)

	db := openDb(t, open)

	// A contract writes through a store scoped to its address
	scope := database.NewKey("contract", "contract7")
	batch := db.Begin(scope, true)
	require.NoError(t, batch.Put(database.NewKey("token_info"), info))
	require.NoError(t, batch.Commit())
	batch.Discard()

	batch = db.Begin(scope, false)
	v, err := batch.Get(database.NewKey("token_info"))
	require.NoError(t, err)
	require.Equal(t, info, v)
	batch.Discard()

	// The record is visible at its full key
	batch = db.Begin(nil, false)
	defer batch.Discard()
	v, err = batch.Get(scope.Append("token_info"))
	require.NoError(t, err)
	require.Equal(t, info, v)

	// But not to another contract
	other := db.Begin(database.NewKey("contract", "contract8"), false)
	defer other.Discard()
	_, err = other.Get(database.NewKey("token_info"))
	require.ErrorIs(t, err, errors.NotFound)
}

func TestDelete(t *testing.T, open Opener) {
	db := openDb(t, open)

	// Write a value
	batch := db.Begin(nil, true)
	require.NoError(t, batch.Put(database.NewKey("foo"), []byte("bar")))
	require.NoError(t, batch.Commit())
	batch.Discard()

	// Verify it can be retrieved
	batch = db.Begin(nil, false)
	v, err := batch.Get(database.NewKey("foo"))
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))
	batch.Discard()

	// Delete the value
	batch = db.Begin(nil, true)
	require.NoError(t, batch.Delete(database.NewKey("foo")))

	// Verify it returns not found from the same batch
	_, err = batch.Get(database.NewKey("foo"))
	require.ErrorIs(t, err, errors.NotFound)

	// Commit and reopen
	require.NoError(t, batch.Commit())
	batch.Discard()
	db.Close()
	db = openDb(t, open)

	// Verify it returns not found from a new batch
	batch = db.Begin(nil, false)
	defer batch.Discard()
	_, err = batch.Get(database.NewKey("foo"))
	require.ErrorIs(t, err, errors.NotFound)
}

func TestForEach(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(nil, true)
	for _, s := range []string{"b", "d", "a", "c"} {
		require.NoError(t, batch.Put(database.NewKey("list", s), []byte(s)))
	}
	require.NoError(t, batch.Put(database.NewKey("other", "z"), []byte("z")))
	require.NoError(t, batch.Commit())
	batch.Discard()

	collect := func(s keyvalue.Store, reverse bool) []string {
		var got []string
		require.NoError(t, s.ForEach(database.NewKey("list"), reverse, func(key *database.Key, value []byte) error {
			require.Equal(t, key.Get(1), string(value))
			got = append(got, string(value))
			return nil
		}))
		return got
	}

	batch = db.Begin(nil, true)
	defer batch.Discard()
	require.Equal(t, []string{"a", "b", "c", "d"}, collect(batch, false))
	require.Equal(t, []string{"d", "c", "b", "a"}, collect(batch, true))

	// Pending changes are merged
	require.NoError(t, batch.Delete(database.NewKey("list", "b")))
	require.NoError(t, batch.Put(database.NewKey("list", "bb"), []byte("bb")))
	require.Equal(t, []string{"a", "bb", "c", "d"}, collect(batch, false))

	// Prefixed batches strip the prefix
	sub := batch.Begin(database.NewKey("list"), false)
	defer sub.Discard()
	var keys []string
	require.NoError(t, sub.ForEach(nil, true, func(key *database.Key, _ []byte) error {
		keys = append(keys, key.String())
		return nil
	}))
	require.Equal(t, []string{"d", "c", "bb", "a"}, keys)
}

func TestReadOnly(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(nil, false)
	defer batch.Discard()
	err := batch.Put(database.NewKey("foo"), []byte("bar"))
	require.ErrorIs(t, err, errors.NotAllowed)
	require.NoError(t, batch.Commit())
}
