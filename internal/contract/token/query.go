// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

func (c *Contract) Query(st *execute.QueryState, q protocol.Query) (any, error) {
	tok, err := Load(st)
	if err != nil {
		return nil, err
	}

	switch q := q.(type) {
	case *protocol.QueryBalance:
		v, err := tok.Ledger.Balance(q.Address)
		if err != nil {
			return nil, err
		}
		return &protocol.BalanceResponse{Balance: v}, nil

	case *protocol.QueryTokenInfo:
		state, err := tok.State()
		if err != nil {
			return nil, err
		}
		d, err := tok.supplyDetails()
		if err != nil {
			return nil, err
		}
		return &protocol.TokenInfoResponse{
			Name:        state.Name,
			Symbol:      state.Symbol,
			Decimals:    state.Decimals,
			TotalSupply: d.Total,
		}, nil

	case *protocol.QueryMinter:
		state, err := tok.State()
		if err != nil {
			return nil, err
		}
		if state.Mint == nil {
			return (*protocol.MinterResponse)(nil), nil
		}
		return &protocol.MinterResponse{Minter: state.Mint.Minter, Cap: state.Mint.Cap}, nil

	case *protocol.QueryExternalDenom:
		denom, err := tok.ExternalDenom()
		if err != nil {
			return nil, err
		}
		if denom == "" {
			return nil, errors.NotFound.WithFormat("%s has no external representation", tok.Self)
		}
		return &protocol.ExternalDenomResponse{Denom: denom}, nil

	case *protocol.QuerySupplyDetails:
		return tok.supplyDetails()

	case *protocol.QueryAllAccounts:
		accounts, err := tok.Ledger.Accounts(q.StartAfter, q.Limit)
		if err != nil {
			return nil, err
		}
		return &protocol.AccountsResponse{Accounts: accounts}, nil
	}

	return nil, execute.Unsupported(q.QueryType())
}

func (t *Token) supplyDetails() (*protocol.SupplyDetails, error) {
	r, err := t.Supply()
	if err != nil {
		return nil, err
	}
	return r.Details()
}
