// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package supply computes the combined supply of a token and enforces its
// cap.
package supply

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/internal/issuance"
	"gitlab.com/accumulatenetwork/transmute/internal/ledger"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Reconciler combines the ledger supply with the external supply. An empty
// Denom means the external representation has not been materialized and the
// external supply is zero. The combined supply is recomputed on every call.
type Reconciler struct {
	Ledger     *ledger.Ledger
	Capability issuance.Capability
	Querier    issuance.Querier
	Denom      string
}

// Details returns the ledger, external, and combined supply.
func (r *Reconciler) Details() (*protocol.SupplyDetails, error) {
	l, err := r.Ledger.TotalSupply()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}

	x := new(big.Int)
	if r.Denom != "" {
		v, err := r.Capability.Supply(r.Querier, r.Denom)
		if err != nil {
			return nil, errors.UnknownError.Wrap(err)
		}
		if v != nil {
			x = v
		}
	}

	return &protocol.SupplyDetails{
		Ledger:   l,
		External: x,
		Total:    new(big.Int).Add(l, x),
	}, nil
}

// Combined returns the combined supply.
func (r *Reconciler) Combined() (*big.Int, error) {
	d, err := r.Details()
	if err != nil {
		return nil, err
	}
	return d.Total, nil
}

// EnforceCap fails with [errors.CapExceeded] if increasing the combined
// supply by extra would exceed the cap. It succeeds if the token has no cap.
func (r *Reconciler) EnforceCap(extra *big.Int) error {
	state, err := r.Ledger.State()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	limit := state.Cap()
	if limit == nil {
		return nil
	}

	total, err := r.Combined()
	if err != nil {
		return err
	}

	candidate := new(big.Int).Add(total, extra)
	if candidate.Cmp(limit) > 0 {
		return errors.CapExceeded.WithFormat("cap exceeded: supply %v plus %v exceeds cap %v", total, extra, limit)
	}
	return nil
}
