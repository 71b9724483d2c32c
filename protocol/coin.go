// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"math/big"
	"strings"

	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// Coin is an amount of external units of a single denomination.
type Coin struct {
	Denom  string   `json:"denom" yaml:"denom"`
	Amount *big.Int `json:"amount" yaml:"amount"`
}

// NewCoin returns a coin. NewCoin does not copy the amount.
func NewCoin(denom string, amount *big.Int) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.String() + c.Denom
}

// Validate returns an error if the coin has no denomination or a non-positive
// amount.
func (c Coin) Validate() error {
	if c.Denom == "" {
		return errors.BadRequest.With("missing denomination")
	}
	if c.Amount == nil || c.Amount.Sign() <= 0 {
		return errors.BadRequest.WithFormat("invalid amount for %s: must be positive", c.Denom)
	}
	return nil
}

// Coins is a list of coins.
type Coins []Coin

func (c Coins) String() string {
	s := make([]string, len(c))
	for i, c := range c {
		s[i] = c.String()
	}
	return strings.Join(s, ",")
}

// Validate validates every coin and rejects duplicate denominations.
func (c Coins) Validate() error {
	seen := map[string]bool{}
	for _, coin := range c {
		if err := coin.Validate(); err != nil {
			return err
		}
		if seen[coin.Denom] {
			return errors.BadRequest.WithFormat("duplicate denomination %s", coin.Denom)
		}
		seen[coin.Denom] = true
	}
	return nil
}

// AmountOf returns the amount of the given denomination, or zero.
func (c Coins) AmountOf(denom string) *big.Int {
	for _, coin := range c {
		if coin.Denom == denom && coin.Amount != nil {
			return new(big.Int).Set(coin.Amount)
		}
	}
	return new(big.Int)
}

// OnlyOneCoin returns the amount of the single attached coin. OnlyOneCoin
// fails if there is not exactly one coin or if its denomination is not the
// expected one.
func OnlyOneCoin(funds Coins, denom string) (*big.Int, error) {
	if len(funds) != 1 {
		return nil, errors.ExpectedExactlyOneCoin.WithFormat("expected exactly one coin, got %d", len(funds))
	}
	if funds[0].Denom != denom {
		return nil, errors.WrongDenom.WithFormat("expected %s, received %s", denom, funds[0].Denom)
	}
	if funds[0].Amount == nil || funds[0].Amount.Sign() <= 0 {
		return nil, errors.BadRequest.WithFormat("invalid amount for %s: must be positive", denom)
	}
	return new(big.Int).Set(funds[0].Amount), nil
}

// ParseAmount parses a non-negative decimal integer.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.BadRequest.WithFormat("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.BadRequest.WithFormat("invalid amount %q: must not be negative", s)
	}
	return v, nil
}

// ParseCoin parses a coin written as an amount followed by a denomination,
// such as 100factory/contract1/tmt.
func ParseCoin(s string) (Coin, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return Coin{}, errors.BadRequest.WithFormat("invalid coin %q: want <amount><denom>", s)
	}
	amount, err := ParseAmount(s[:i])
	if err != nil {
		return Coin{}, err
	}
	return NewCoin(s[i:], amount), nil
}

// ParseCoins parses a comma-separated list of coins.
func ParseCoins(s string) (Coins, error) {
	if s == "" {
		return nil, nil
	}
	var coins Coins
	for _, part := range strings.Split(s, ",") {
		c, err := ParseCoin(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return coins, coins.Validate()
}
