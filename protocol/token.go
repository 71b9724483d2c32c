// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// TokenState is the metadata and ledger-side supply of a token.
type TokenState struct {
	Name        string      `json:"name" yaml:"name" validate:"min=3,max=50"`
	Symbol      string      `json:"symbol" yaml:"symbol" validate:"symbol"`
	Decimals    uint8       `json:"decimals" yaml:"decimals" validate:"max=18"`
	TotalSupply *big.Int    `json:"totalSupply" yaml:"totalSupply"`
	Mint        *MinterInfo `json:"mint,omitempty" yaml:"mint,omitempty"`
}

// MinterInfo is the mint authority and optional cap on the combined supply.
type MinterInfo struct {
	Minter string   `json:"minter" yaml:"minter" validate:"required"`
	Cap    *big.Int `json:"cap,omitempty" yaml:"cap,omitempty"`
}

// Validate checks the token metadata.
func (s *TokenState) Validate() error {
	err := Validate(s)
	if err != nil {
		return errors.BadRequest.WithFormat("invalid token: %w", err)
	}
	if s.Mint != nil {
		if err := Validate(s.Mint); err != nil {
			return errors.BadRequest.WithFormat("invalid minter: %w", err)
		}
		if s.Mint.Cap != nil && s.Mint.Cap.Sign() < 0 {
			return errors.BadRequest.With("invalid minter: cap must not be negative")
		}
	}
	return nil
}

// Cap returns the supply cap, or nil if there is none.
func (s *TokenState) Cap() *big.Int {
	if s.Mint == nil {
		return nil
	}
	return s.Mint.Cap
}
