// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package registry

import (
	"iter"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Registry is the registry's mapping from external denomination to token
// contract. Entries are written once and never updated or removed.
type Registry struct {
	store keyvalue.Store
}

func New(store keyvalue.Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) entry(denom string) *values.Value[string] {
	return values.NewValue[string](r.store, database.NewKey("denom", denom), "denom "+denom)
}

// Lookup returns the contract registered for a denomination.
func (r *Registry) Lookup(denom string) (string, error) {
	v, err := r.entry(denom).Get()
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, errors.NotFound):
		return "", errors.NotFound.WithFormat("%s is not registered", denom)
	default:
		return "", errors.UnknownError.Wrap(err)
	}
}

// Has returns true if the denomination is registered.
func (r *Registry) Has(denom string) (bool, error) {
	return r.entry(denom).Exists()
}

// Insert adds an entry. Insert fails with [errors.AlreadyRegistered] if the
// denomination is registered.
func (r *Registry) Insert(denom, contract string) error {
	v := r.entry(denom)
	ok, err := v.Exists()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if ok {
		return errors.AlreadyRegistered.WithFormat("%s is already registered", denom)
	}
	return v.Put(contract)
}

// Entries returns the entries selected by the pagination. The sequence is
// read lazily from the store each time it is iterated. If reading fails, the
// sequence yields the error and stops.
func (r *Registry) Entries(p protocol.Pagination) iter.Seq2[protocol.DenomEntry, error] {
	ascending := p.Order == protocol.OrderAscending
	return func(yield func(protocol.DenomEntry, error) bool) {
		var n uint
		var stopped bool
		err := r.store.ForEach(database.NewKey("denom"), !ascending, func(key *database.Key, value []byte) error {
			denom, ok := key.Get(1).(string)
			if !ok {
				return nil
			}
			if p.StartAfter != "" {
				if ascending && denom <= p.StartAfter || !ascending && denom >= p.StartAfter {
					return nil
				}
			}
			if p.Limit > 0 && n >= p.Limit {
				stopped = true
				return errStop
			}

			contract, err := r.entry(denom).Get()
			if err != nil {
				return err
			}

			n++
			if !yield(protocol.DenomEntry{Denom: denom, Contract: contract}, nil) {
				stopped = true
				return errStop
			}
			return nil
		})
		if err != nil && !stopped {
			yield(protocol.DenomEntry{}, errors.UnknownError.Wrap(err))
		}
	}
}

// Collect reads the entries selected by the pagination.
func (r *Registry) Collect(p protocol.Pagination) ([]protocol.DenomEntry, error) {
	entries := []protocol.DenomEntry{}
	for e, err := range r.Entries(p) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// errStop ends a ForEach early. The stopped flag, not the error value, marks
// the early exit, since stores may wrap the error.
var errStop = errors.UnknownError.With("stop iteration")
