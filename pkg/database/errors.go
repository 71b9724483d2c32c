// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package database

import "gitlab.com/accumulatenetwork/transmute/pkg/errors"

// NotFoundError is returned when a key does not exist.
type NotFoundError Key

// NewNotFoundError returns a [NotFoundError] for the given key.
func NewNotFoundError(key *Key) *NotFoundError {
	return (*NotFoundError)(key)
}

func (e *NotFoundError) Error() string {
	return (*Key)(e).String() + " not found"
}

// Unwrap returns [errors.NotFound] so that errors.Is matches the status code.
func (e *NotFoundError) Unwrap() error {
	return errors.NotFound
}
