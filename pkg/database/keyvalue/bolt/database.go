// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bolt

import (
	"bytes"
	"time"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Database stores entries in bbolt, using the first part of each key as the
// bucket name.
type Database struct {
	bolt *bolt.DB
}

func Open(filepath string) (*Database, error) {
	d := new(Database)
	var err error
	d.bolt, err = bolt.Open(filepath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open bolt: %w", err)
	}
	return d, nil
}

func (d *Database) bucket(tx *bolt.Tx, key *database.Key, create bool) (*bolt.Bucket, []byte, error) {
	if key.Len() == 0 {
		return nil, nil, errors.InternalError.With("invalid key: empty")
	}

	s, ok := key.Get(0).(string)
	if !ok {
		return nil, nil, errors.InternalError.WithFormat("invalid key: first part is %T, not string", key.Get(0))
	}

	k, err := key.MarshalBinary()
	if err != nil {
		return nil, nil, errors.InternalError.WithFormat("invalid key: %w", err)
	}

	b := tx.Bucket([]byte(s))
	if b != nil || !create {
		return b, k, nil
	}

	b, err = tx.CreateBucket([]byte(s))
	if err != nil {
		return nil, nil, err
	}
	return b, k, nil
}

// Begin begins a change set.
func (d *Database) Begin(prefix *database.Key, writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd, err := d.bolt.Begin(false)

	// Discard the transaction
	discard := func() {
		if rd != nil {
			_ = rd.Rollback()
		}
	}

	// Read from the transaction
	get := func(key *database.Key) ([]byte, error) {
		return d.get(rd, err, key)
	}

	forEach := func(prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
		if err != nil {
			return err
		}
		return d.forEach(rd, prefix, reverse, fn)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = func(entries map[string]memory.Entry) error {
			return d.commit(rd, entries)
		}
	}

	return memory.NewChangeSet(memory.ChangeSetOptions{
		Prefix:  prefix,
		Get:     get,
		ForEach: forEach,
		Commit:  commit,
		Discard: discard,
	})
}

func (d *Database) get(txn *bolt.Tx, err error, key *database.Key) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	b, k, err := d.bucket(txn, key, false)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, database.NewNotFoundError(key)
	}

	v := b.Get(k)
	if v == nil {
		return nil, database.NewNotFoundError(key)
	}

	return bytes.Clone(v), nil
}

func (d *Database) commit(rd *bolt.Tx, entries map[string]memory.Entry) error {
	// Discard the read transaction to unlock the database
	if rd != nil {
		_ = rd.Rollback()
	}

	return d.bolt.Update(func(tx *bolt.Tx) error {
		for _, e := range entries {
			b, k, err := d.bucket(tx, e.Key, true)
			if err != nil {
				return err
			}

			if e.Delete {
				err = b.Delete(k)
			} else {
				err = b.Put(k, e.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database) forEach(txn *bolt.Tx, prefix *database.Key, reverse bool, fn func(*database.Key, []byte) error) error {
	if prefix.Len() > 0 {
		b, p, err := d.bucket(txn, prefix, false)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		return scan(b, p, reverse, fn)
	}

	var buckets []*bolt.Bucket
	err := txn.ForEach(func(_ []byte, b *bolt.Bucket) error {
		buckets = append(buckets, b)
		return nil
	})
	if err != nil {
		return err
	}

	for i := range buckets {
		if reverse {
			i = len(buckets) - 1 - i
		}
		err = scan(buckets[i], nil, reverse, fn)
		if err != nil {
			return err
		}
	}
	return nil
}

func scan(b *bolt.Bucket, prefix []byte, reverse bool, fn func(*database.Key, []byte) error) error {
	c := b.Cursor()

	var k, v []byte
	switch {
	case !reverse:
		k, v = c.Seek(prefix)
	default:
		// Seek past the last key with the prefix, then step back
		k, _ = c.Seek(append(bytes.Clone(prefix), 0xFF, 0xFF, 0xFF, 0xFF))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
	}

	for k != nil && bytes.HasPrefix(k, prefix) {
		key, err := database.ParseKey(k)
		if err != nil {
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}

		err = fn(key, bytes.Clone(v))
		if err != nil {
			return err
		}

		if reverse {
			k, v = c.Prev()
		} else {
			k, v = c.Next()
		}
	}
	return nil
}

func (d *Database) Close() error {
	return d.bolt.Close()
}
