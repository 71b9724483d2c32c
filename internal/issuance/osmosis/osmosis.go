// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package osmosis implements the issuance capability with token-factory
// messages. Identifiers have the form factory/<issuer>/<subdenom>.
package osmosis

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/internal/issuance"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

const Name = "osmosis"

func init() {
	issuance.Register(Name, func() issuance.Capability { return TokenFactory{} })
}

type TokenFactory struct{}

var _ issuance.Capability = TokenFactory{}

func (TokenFactory) Name() string { return Name }

func (TokenFactory) Create(issuer, subdenom string) (string, protocol.Message, error) {
	if issuer == "" {
		return "", nil, errors.BadRequest.With("missing issuer")
	}
	if subdenom == "" {
		return "", nil, errors.BadRequest.With("missing subdenom")
	}
	return protocol.FactoryDenom(issuer, subdenom), &protocol.CreateDenom{Subdenom: subdenom}, nil
}

func (TokenFactory) Mint(issuer, denom string, amount *big.Int, to string) (protocol.Message, error) {
	if err := issuance.CheckAmount(amount); err != nil {
		return nil, err
	}
	return &protocol.MintDenom{
		Amount:        protocol.NewCoin(denom, new(big.Int).Set(amount)),
		MintToAddress: to,
	}, nil
}

func (TokenFactory) Burn(issuer, denom string, amount *big.Int) (protocol.Message, error) {
	if err := issuance.CheckAmount(amount); err != nil {
		return nil, err
	}
	return &protocol.BurnDenom{
		Amount: protocol.NewCoin(denom, new(big.Int).Set(amount)),
	}, nil
}

func (TokenFactory) Supply(q issuance.Querier, denom string) (*big.Int, error) {
	v, err := q.Supply(denom)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("query supply of %s: %w", denom, err)
	}
	return v, nil
}
