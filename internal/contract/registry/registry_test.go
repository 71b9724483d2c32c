// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package registry_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
	"gitlab.com/accumulatenetwork/transmute/test/harness"
)

const creator = "creator"

func newToken(h *harness.Harness, symbol, registry string, materialize bool) string {
	return h.Instantiate(creator, token.Code, &protocol.InstantiateToken{
		Name:        "Token " + symbol,
		Symbol:      symbol,
		Decimals:    6,
		Mint:        &protocol.MinterInfo{Minter: creator},
		Registry:    registry,
		Materialize: materialize,
	})
}

func lookup(t *testing.T, h *harness.Harness, reg, denom string) string {
	t.Helper()
	return harness.Query[*protocol.DenomEntry](h, reg, &protocol.QueryLookupDenom{Denom: denom}).Contract
}

func TestRegisterOnMaterialize(t *testing.T) {
	h := harness.New(t)
	reg := h.InstantiateRegistry(creator)

	tok := newToken(h, "AAA", reg, true)
	denom := h.ExternalDenom(tok)
	require.Equal(t, tok, lookup(t, h, reg, denom))

	// Materializing later also registers
	tok2 := newToken(h, "BBB", reg, false)
	h.Execute(creator, tok2, &protocol.MaterializeExternal{})
	require.Equal(t, tok2, lookup(t, h, reg, "factory/"+tok2+"/bbb"))
}

func TestRegisterChecks(t *testing.T) {
	h := harness.New(t)
	reg := h.InstantiateRegistry(creator)
	tok := newToken(h, "AAA", "", true)
	denom := h.ExternalDenom(tok)

	// Registration requested through the token
	h.Execute("anyone", tok, &protocol.RegisterWithRegistry{Registry: reg})
	require.Equal(t, tok, lookup(t, h, reg, denom))

	// Duplicate, from the token or anyone else
	err := h.ExecuteErr("anyone", tok, &protocol.RegisterWithRegistry{Registry: reg})
	require.ErrorIs(t, err, errors.AlreadyRegistered)
	err = h.ExecuteErr("mallory", reg, &protocol.RegisterDenom{Denom: denom})
	require.ErrorIs(t, err, errors.AlreadyRegistered)

	cases := map[string]struct {
		sender, denom string
		code          errors.Status
	}{
		"Malformed":    {"mallory", "bad-format", errors.MalformedIdentifier},
		"TooManyParts": {"mallory", "factory/mallory/a/b", errors.MalformedIdentifier},
		"OtherIssuer":  {"mallory", "factory/" + tok + "/fake", errors.IdentityMismatch},
		"WrongScheme":  {"mallory", "ibc/mallory/foo", errors.IdentityMismatch},
		"NotAContract": {"mallory", "factory/mallory/foo", errors.BadRequest},
		"EmptyIssuer":  {"mallory", "factory//", errors.IdentityMismatch},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := h.ExecuteErr(c.sender, reg, &protocol.RegisterDenom{Denom: c.denom})
			require.ErrorIs(t, err, c.code)
		})
	}

	// A contract that does not answer the token queries is rejected
	other := h.InstantiateRegistry(creator)
	_, err = h.X.Execute(other, reg, &protocol.RegisterDenom{Denom: "factory/" + other + "/foo"}, nil)
	require.ErrorIs(t, err, errors.BadRequest)

	list := harness.Query[*protocol.ListDenomsResponse](h, reg, &protocol.QueryListDenoms{})
	require.Len(t, list.Entries, 1)
}

func TestRegisterUnmaterialized(t *testing.T) {
	h := harness.New(t)
	reg := h.InstantiateRegistry(creator)
	tok := newToken(h, "AAA", "", false)

	err := h.ExecuteErr(creator, tok, &protocol.RegisterWithRegistry{Registry: reg})
	require.ErrorIs(t, err, errors.NoExternalRepresentation)
}

func TestList(t *testing.T) {
	h := harness.New(t)
	reg := h.InstantiateRegistry(creator)

	var denoms []string
	for _, sym := range []string{"AAA", "BBB", "CCC", "DDD"} {
		tok := newToken(h, sym, reg, true)
		denoms = append(denoms, h.ExternalDenom(tok))
	}

	list := func(p protocol.Pagination) []string {
		resp := harness.Query[*protocol.ListDenomsResponse](h, reg, &protocol.QueryListDenoms{Pagination: p})
		var s []string
		for _, e := range resp.Entries {
			s = append(s, e.Denom)
		}
		return s
	}

	// Contract addresses contract2..contract5 sort in creation order
	require.Equal(t, []string{denoms[3], denoms[2], denoms[1], denoms[0]}, list(protocol.Pagination{}))
	require.Equal(t, denoms, list(protocol.Pagination{Order: protocol.OrderAscending}))
	require.Equal(t, denoms[1:3], list(protocol.Pagination{Order: protocol.OrderAscending, StartAfter: denoms[0], Limit: 2}))
	require.Equal(t, []string{denoms[1], denoms[0]}, list(protocol.Pagination{Order: protocol.OrderDescending, StartAfter: denoms[2]}))
	require.Empty(t, list(protocol.Pagination{Order: protocol.OrderAscending, StartAfter: denoms[3]}))
}

func TestTokenDetails(t *testing.T) {
	h := harness.New(t)
	reg := h.InstantiateRegistry(creator)
	tok := newToken(h, "AAA", reg, true)
	denom := h.ExternalDenom(tok)
	newToken(h, "BBB", reg, true)

	h.Execute(creator, tok, &protocol.Mint{Recipient: "alice", Amount: big.NewInt(100)})
	h.Execute("alice", tok, &protocol.TransmuteIntoExternal{Amount: big.NewInt(30)})

	d := harness.Query[*protocol.TokenDetails](h, reg, &protocol.QueryTokenDetails{Denom: denom})
	require.Equal(t, tok, d.Contract)
	require.Equal(t, "AAA", d.Symbol)
	require.Equal(t, "70", d.LedgerSupply.String())
	require.Equal(t, "30", d.ExternalSupply.String())
	require.Equal(t, "100", d.TotalSupply.String())

	all := harness.Query[*protocol.TokensDetailsResponse](h, reg, &protocol.QueryTokensDetails{Pagination: protocol.Pagination{Order: protocol.OrderAscending}})
	require.Len(t, all.Tokens, 2)
	require.Equal(t, "AAA", all.Tokens[0].Symbol)
	require.Equal(t, "BBB", all.Tokens[1].Symbol)

	_, err := h.X.Query(reg, &protocol.QueryTokenDetails{Denom: "factory/nobody/x"})
	require.ErrorIs(t, err, errors.NotFound)
}
