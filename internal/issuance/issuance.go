// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package issuance defines the capability a token uses to create, mint, and
// burn its external representation, independent of the issuance backend.
package issuance

import (
	"math/big"
	"sort"
	"sync"

	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Querier reads the state of the external issuance service.
type Querier interface {
	// Supply returns the total issued amount of a denomination.
	Supply(denom string) (*big.Int, error)
}

// Capability builds the requests that create, mint, and burn external units.
// Requests are returned as messages to be dispatched by the caller after its
// own state changes succeed. Amounts are exact.
type Capability interface {
	// Name is the name the backend is registered under.
	Name() string

	// Create returns the identifier that will be created for the issuer and
	// the request that creates it. Create does not check whether the
	// identifier already exists.
	Create(issuer, subdenom string) (denom string, msg protocol.Message, err error)

	// Mint returns a request that issues amount external units to the
	// recipient.
	Mint(issuer, denom string, amount *big.Int, to string) (protocol.Message, error)

	// Burn returns a request that destroys amount external units held by the
	// issuer.
	Burn(issuer, denom string, amount *big.Int) (protocol.Message, error)

	// Supply returns the total external supply of the identifier.
	Supply(q Querier, denom string) (*big.Int, error)
}

var backends = struct {
	sync.RWMutex
	m map[string]func() Capability
}{m: map[string]func() Capability{}}

// Register registers a backend. Register panics if the name is taken.
func Register(name string, fn func() Capability) {
	backends.Lock()
	defer backends.Unlock()
	if _, ok := backends.m[name]; ok {
		panic("issuance backend " + name + " registered twice")
	}
	backends.m[name] = fn
}

// New returns the named backend.
func New(name string) (Capability, error) {
	backends.RLock()
	defer backends.RUnlock()
	fn, ok := backends.m[name]
	if !ok {
		return nil, errors.NotFound.WithFormat("unknown issuance backend %q", name)
	}
	return fn(), nil
}

// Backends returns the names of the registered backends.
func Backends() []string {
	backends.RLock()
	defer backends.RUnlock()
	names := make([]string, 0, len(backends.m))
	for name := range backends.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckAmount returns an error if the amount is nil or not positive.
func CheckAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.BadRequest.WithFormat("invalid amount %v: must be positive", amount)
	}
	return nil
}
