// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package values

import (
	"encoding/json"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

type valueStatus int

const (
	valueUndefined valueStatus = iota
	valueNotFound
	valueClean
)

// Value is a JSON-encoded record stored under a single key. Values cache what
// they load, so a Value should not outlive the change set it was created
// with.
type Value[T any] struct {
	store        keyvalue.Store
	key          *database.Key
	name         string
	allowMissing bool
	status       valueStatus
	value        T
}

// NewValue returns a value that returns [errors.NotFound] if the record does
// not exist.
func NewValue[T any](store keyvalue.Store, key *database.Key, name string) *Value[T] {
	return &Value[T]{store: store, key: key, name: name}
}

// NewOptionalValue returns a value that returns the zero value of T if the
// record does not exist.
func NewOptionalValue[T any](store keyvalue.Store, key *database.Key, name string) *Value[T] {
	return &Value[T]{store: store, key: key, name: name, allowMissing: true}
}

func (v *Value[T]) Key() *database.Key { return v.key }

// Get loads the value.
func (v *Value[T]) Get() (u T, err error) {
	switch v.status {
	case valueNotFound:
		if v.allowMissing {
			return zero[T](), nil
		}
		return zero[T](), errors.NotFound.WithFormat("%s not found", v.name)

	case valueClean:
		return v.value, nil
	}

	b, err := v.store.Get(v.key)
	switch {
	case err == nil:
		// Found it

	case !errors.Is(err, errors.NotFound):
		// Unknown error
		return zero[T](), errors.UnknownError.Wrap(err)

	default:
		v.status = valueNotFound
		return v.Get()
	}

	err = json.Unmarshal(b, &u)
	if err != nil {
		return zero[T](), errors.EncodingError.WithFormat("decode %s: %w", v.name, err)
	}

	v.value, v.status = u, valueClean
	return u, nil
}

// Exists returns true if the record exists.
func (v *Value[T]) Exists() (bool, error) {
	allowMissing := v.allowMissing
	v.allowMissing = false
	defer func() { v.allowMissing = allowMissing }()

	_, err := v.Get()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errors.NotFound):
		return false, nil
	default:
		return false, err
	}
}

// Put stores the value.
func (v *Value[T]) Put(u T) error {
	b, err := json.Marshal(u)
	if err != nil {
		return errors.EncodingError.WithFormat("encode %s: %w", v.name, err)
	}

	err = v.store.Put(v.key, b)
	if err != nil {
		return errors.UnknownError.WithFormat("store %s: %w", v.name, err)
	}

	v.value, v.status = u, valueClean
	return nil
}

// Delete removes the record.
func (v *Value[T]) Delete() error {
	err := v.store.Delete(v.key)
	if err != nil {
		return errors.UnknownError.WithFormat("delete %s: %w", v.name, err)
	}

	v.value, v.status = zero[T](), valueNotFound
	return nil
}

func zero[T any]() (z T) { return z }
