// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package registry

import (
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

func (Contract) Query(st *execute.QueryState, q protocol.Query) (any, error) {
	r := New(st.Store)
	switch q := q.(type) {
	case *protocol.QueryLookupDenom:
		contract, err := r.Lookup(q.Denom)
		if err != nil {
			return nil, err
		}
		return &protocol.DenomEntry{Denom: q.Denom, Contract: contract}, nil

	case *protocol.QueryListDenoms:
		entries, err := r.Collect(q.Pagination)
		if err != nil {
			return nil, err
		}
		return &protocol.ListDenomsResponse{Entries: entries}, nil

	case *protocol.QueryTokenDetails:
		contract, err := r.Lookup(q.Denom)
		if err != nil {
			return nil, err
		}
		return tokenDetails(st.Querier, protocol.DenomEntry{Denom: q.Denom, Contract: contract})

	case *protocol.QueryTokensDetails:
		resp := &protocol.TokensDetailsResponse{Tokens: []*protocol.TokenDetails{}}
		for e, err := range r.Entries(q.Pagination) {
			if err != nil {
				return nil, err
			}
			d, err := tokenDetails(st.Querier, e)
			if err != nil {
				return nil, err
			}
			resp.Tokens = append(resp.Tokens, d)
		}
		return resp, nil
	}

	return nil, execute.Unsupported(q.QueryType())
}

func tokenDetails(q execute.Querier, e protocol.DenomEntry) (*protocol.TokenDetails, error) {
	info, err := execute.QueryAs[*protocol.TokenInfoResponse](q, e.Contract, &protocol.QueryTokenInfo{})
	if err != nil {
		return nil, errors.UnknownError.WithFormat("query token info of %s: %w", e.Contract, err)
	}
	supply, err := execute.QueryAs[*protocol.SupplyDetails](q, e.Contract, &protocol.QuerySupplyDetails{})
	if err != nil {
		return nil, errors.UnknownError.WithFormat("query supply of %s: %w", e.Contract, err)
	}
	return &protocol.TokenDetails{
		Contract:       e.Contract,
		Denom:          e.Denom,
		Name:           info.Name,
		Symbol:         info.Symbol,
		Decimals:       info.Decimals,
		TotalSupply:    supply.Total,
		LedgerSupply:   supply.Ledger,
		ExternalSupply: supply.External,
	}, nil
}
