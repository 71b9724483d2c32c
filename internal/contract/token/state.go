// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/internal/issuance"
	"gitlab.com/accumulatenetwork/transmute/internal/ledger"
	"gitlab.com/accumulatenetwork/transmute/internal/supply"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Token is the state of a token instance.
type Token struct {
	Self   string
	Ledger *ledger.Ledger

	querier  execute.Querier
	denom    *values.Value[string]
	backend  *values.Value[string]
	creator  *values.Value[string]
	registry *values.Value[string]
	issuance issuance.Capability
}

func newToken(st *execute.QueryState) *Token {
	t := new(Token)
	t.Self = st.Self
	t.Ledger = ledger.New(st.Store)
	t.querier = st.Querier
	t.denom = values.NewOptionalValue[string](st.Store, database.NewKey("external_denom"), "external denom")
	t.backend = values.NewValue[string](st.Store, database.NewKey("issuance_backend"), "issuance backend")
	t.creator = values.NewValue[string](st.Store, database.NewKey("creator"), "creator")
	t.registry = values.NewOptionalValue[string](st.Store, database.NewKey("registry"), "registry")
	return t
}

// Load loads a token instance.
func Load(st *execute.QueryState) (*Token, error) {
	t := newToken(st)
	name, err := t.backend.Get()
	if err != nil {
		return nil, errors.UnknownError.WithFormat("load token: %w", err)
	}
	t.issuance, err = issuance.New(name)
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}
	return t, nil
}

func (t *Token) init(st *execute.State, backend string, msg *protocol.InstantiateToken) error {
	var err error
	t.issuance, err = issuance.New(backend)
	if err != nil {
		return err
	}

	err = t.Ledger.Init(&protocol.TokenState{
		Name:     msg.Name,
		Symbol:   msg.Symbol,
		Decimals: msg.Decimals,
		Mint:     msg.Mint,
	})
	if err != nil {
		return err
	}

	// Initial balances count against the cap like any other mint
	seen := map[string]bool{}
	deltas := make([]ledger.Delta, 0, len(msg.InitialBalances))
	initial := new(big.Int)
	for _, b := range msg.InitialBalances {
		if b.Address == "" {
			return errors.BadRequest.With("initial balance is missing an address")
		}
		if seen[b.Address] {
			return errors.BadRequest.WithFormat("duplicate initial balance for %s", b.Address)
		}
		seen[b.Address] = true
		if b.Amount == nil || b.Amount.Sign() < 0 {
			return errors.BadRequest.WithFormat("invalid initial balance for %s: %v", b.Address, b.Amount)
		}
		deltas = append(deltas, ledger.Delta{Owner: b.Address, Amount: b.Amount})
		initial.Add(initial, b.Amount)
	}

	for _, put := range []func() error{
		func() error { return t.backend.Put(backend) },
		func() error { return t.creator.Put(st.Sender) },
		func() error { return t.registry.Put(msg.Registry) },
	} {
		if err := put(); err != nil {
			return errors.UnknownError.Wrap(err)
		}
	}

	err = t.EnforceCap(initial)
	if err != nil {
		return err
	}
	err = t.Ledger.Apply(deltas...)
	if err != nil {
		return err
	}

	st.Emit("instantiate",
		"name", msg.Name,
		"symbol", msg.Symbol,
		"initial_supply", initial.String(),
		"backend", backend)

	if msg.Materialize {
		return t.materialize(st, msg.Subdenom)
	}
	return nil
}

// ExternalDenom returns the external denomination, or the empty string if it
// has not been materialized.
func (t *Token) ExternalDenom() (string, error) {
	d, err := t.denom.Get()
	return d, errors.UnknownError.Wrap(err)
}

// RequireExternalDenom returns the external denomination or fails with
// [errors.NoExternalRepresentation].
func (t *Token) RequireExternalDenom() (string, error) {
	d, err := t.ExternalDenom()
	if err != nil {
		return "", err
	}
	if d == "" {
		return "", errors.NoExternalRepresentation.WithFormat("%s has no external representation", t.Self)
	}
	return d, nil
}

// Capability returns the issuance backend of the token.
func (t *Token) Capability() issuance.Capability { return t.issuance }

// Supply returns a reconciler for the token's combined supply.
func (t *Token) Supply() (*supply.Reconciler, error) {
	d, err := t.ExternalDenom()
	if err != nil {
		return nil, err
	}
	return &supply.Reconciler{
		Ledger:     t.Ledger,
		Capability: t.issuance,
		Querier:    t.querier,
		Denom:      d,
	}, nil
}

// EnforceCap fails with [errors.CapExceeded] if increasing the combined supply
// by extra would exceed the cap.
func (t *Token) EnforceCap(extra *big.Int) error {
	r, err := t.Supply()
	if err != nil {
		return err
	}
	return r.EnforceCap(extra)
}

// State returns the token state.
func (t *Token) State() (*protocol.TokenState, error) {
	return t.Ledger.State()
}

func requirePositive(name string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.BadRequest.WithFormat("invalid %s %v: must be positive", name, amount)
	}
	return nil
}
