// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

func TestOnlyOneCoin(t *testing.T) {
	const denom = "factory/contract1/tok"
	cases := map[string]struct {
		funds Coins
		code  errors.Status
	}{
		"None":     {nil, errors.ExpectedExactlyOneCoin},
		"Two":      {Coins{NewCoin(denom, big.NewInt(1)), NewCoin("uosmo", big.NewInt(1))}, errors.ExpectedExactlyOneCoin},
		"Wrong":    {Coins{NewCoin("uosmo", big.NewInt(1))}, errors.WrongDenom},
		"Zero":     {Coins{NewCoin(denom, big.NewInt(0))}, errors.BadRequest},
		"Accepted": {Coins{NewCoin(denom, big.NewInt(7))}, 0},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			amount, err := OnlyOneCoin(c.funds, denom)
			if c.code == 0 {
				require.NoError(t, err)
				require.Equal(t, "7", amount.String())
				return
			}
			require.ErrorIs(t, err, c.code)
		})
	}
}

func TestWrongDenomMessage(t *testing.T) {
	_, err := OnlyOneCoin(Coins{NewCoin("uosmo", big.NewInt(1))}, "factory/c/tok")
	require.EqualError(t, err, "expected factory/c/tok, received uosmo")
}

func TestCoinsValidate(t *testing.T) {
	require.NoError(t, Coins{NewCoin("a", big.NewInt(1)), NewCoin("b", big.NewInt(2))}.Validate())
	require.ErrorIs(t, Coins{NewCoin("a", big.NewInt(1)), NewCoin("a", big.NewInt(2))}.Validate(), errors.BadRequest)
	require.ErrorIs(t, Coins{NewCoin("a", big.NewInt(-1))}.Validate(), errors.BadRequest)
	require.ErrorIs(t, Coins{NewCoin("", big.NewInt(1))}.Validate(), errors.BadRequest)
	require.Equal(t, "1a,2b", Coins{NewCoin("a", big.NewInt(1)), NewCoin("b", big.NewInt(2))}.String())
}

func TestSplitDenom(t *testing.T) {
	p, err := SplitDenom("factory/contract1/tok")
	require.NoError(t, err)
	require.Equal(t, DenomParts{FactoryScheme, "contract1", "tok"}, p)
	require.Equal(t, "factory/contract1/tok", FactoryDenom(p.Issuer, p.Subdenom))

	for _, s := range []string{"", "factory", "factory/contract1", "factory/contract1/tok/extra"} {
		_, err := SplitDenom(s)
		require.ErrorIs(t, err, errors.MalformedIdentifier, s)
	}

	// The scheme is not checked here
	_, err = SplitDenom("ibc/contract1/tok")
	require.NoError(t, err)
}

func TestTokenStateValidate(t *testing.T) {
	valid := func() *TokenState {
		return &TokenState{Name: "Transmute Token", Symbol: "TMT", Decimals: 6, TotalSupply: new(big.Int)}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*TokenState){
		"ShortName":   func(s *TokenState) { s.Name = "ab" },
		"ShortSymbol": func(s *TokenState) { s.Symbol = "AB" },
		"BadSymbol":   func(s *TokenState) { s.Symbol = "TM1" },
		"Decimals":    func(s *TokenState) { s.Decimals = 19 },
		"NoMinter":    func(s *TokenState) { s.Mint = &MinterInfo{} },
		"NegativeCap": func(s *TokenState) { s.Mint = &MinterInfo{Minter: "alice", Cap: big.NewInt(-1)} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(s)
			require.ErrorIs(t, s.Validate(), errors.BadRequest)
		})
	}
}

func TestParseOrder(t *testing.T) {
	for s, want := range map[string]Order{"": OrderUnspecified, "asc": OrderAscending, "DESC": OrderDescending, "ascending": OrderAscending} {
		got, err := ParseOrder(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseOrder("sideways")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("340282366920938463463374607431768211456")
	require.NoError(t, err)
	require.Equal(t, "340282366920938463463374607431768211456", v.String())

	_, err = ParseAmount("-1")
	require.ErrorIs(t, err, errors.BadRequest)
	_, err = ParseAmount("1.5")
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestParseCoins(t *testing.T) {
	coins, err := ParseCoins("100factory/contract1/tmt, 5uosmo")
	require.NoError(t, err)
	require.Equal(t, "100factory/contract1/tmt,5uosmo", coins.String())

	for _, s := range []string{"uosmo", "5", "0uosmo", "1a,2a"} {
		_, err := ParseCoins(s)
		require.ErrorIs(t, err, errors.BadRequest, s)
	}

	coins, err = ParseCoins("")
	require.NoError(t, err)
	require.Empty(t, coins)
}

func TestNewQuery(t *testing.T) {
	for typ, name := range queryTypeNames {
		got, ok := QueryTypeByName(name)
		require.True(t, ok, name)
		require.Equal(t, typ, got)

		q, err := NewQuery(typ)
		require.NoError(t, err)
		require.Equal(t, typ, q.QueryType())
	}

	_, ok := QueryTypeByName("nope")
	require.False(t, ok)
	_, err := NewQuery(QueryTypeUnknown)
	require.Error(t, err)
}
