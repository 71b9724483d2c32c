// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
	"gitlab.com/accumulatenetwork/transmute/test/harness"
)

const (
	minter = "minter"
	alice  = "alice"
	bob    = "bob"
)

func newToken(h *harness.Harness, limit *big.Int, materialize bool) string {
	return h.Instantiate(minter, token.Code, &protocol.InstantiateToken{
		Name:        "Transmute Token",
		Symbol:      "TMT",
		Decimals:    6,
		Mint:        &protocol.MinterInfo{Minter: minter, Cap: limit},
		Materialize: materialize,
	})
}

func requireInt(t *testing.T, want int64, got *big.Int, msg string) {
	t.Helper()
	require.Equalf(t, big.NewInt(want).String(), got.String(), "%s", msg)
}

func requireSupply(t *testing.T, h *harness.Harness, tok string, ledger, external int64) {
	t.Helper()
	s := h.Supply(tok)
	requireInt(t, ledger, s.Ledger, "ledger supply")
	requireInt(t, external, s.External, "external supply")
	requireInt(t, ledger+external, s.Total, "combined supply")
}

func mint(amount int64) *protocol.Mint {
	return &protocol.Mint{Recipient: alice, Amount: big.NewInt(amount)}
}

func toExternal(amount int64) *protocol.TransmuteIntoExternal {
	return &protocol.TransmuteIntoExternal{Amount: big.NewInt(amount)}
}

func TestScenario(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)
	denom := h.ExternalDenom(tok)
	require.Equal(t, "factory/"+tok+"/tmt", denom)

	// Mint 100 ledger units
	h.Execute(minter, tok, mint(100))
	requireSupply(t, h, tok, 100, 0)

	// Transmute 50 into external units
	h.Execute(alice, tok, toExternal(50))
	requireInt(t, 50, h.LedgerBalance(tok, alice), "ledger balance")
	requireInt(t, 50, h.ExternalBalance(alice, denom), "external balance")
	requireSupply(t, h, tok, 50, 50)

	// Transmute 25 back
	h.Execute(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins(denom, 25)...)
	requireInt(t, 75, h.LedgerBalance(tok, alice), "ledger balance")
	requireInt(t, 25, h.ExternalBalance(alice, denom), "external balance")
	requireInt(t, 0, h.ExternalBalance(tok, denom), "contract balance")
	requireSupply(t, h, tok, 75, 25)

	// Transmuting more than the balance fails and changes nothing
	err := h.ExecuteErr(alice, tok, toExternal(76))
	require.ErrorIs(t, err, errors.InsufficientBalance)
	require.ErrorContains(t, err, "current 75, requested 76")
	requireInt(t, 75, h.LedgerBalance(tok, alice), "ledger balance")
	requireSupply(t, h, tok, 75, 25)
}

func TestConservation(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, big.NewInt(1000), true)
	denom := h.ExternalDenom(tok)
	h.Execute(minter, tok, mint(500))

	steps := []func(){
		func() { h.Execute(alice, tok, toExternal(200)) },
		func() { h.Execute(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins(denom, 150)...) },
		func() { h.Execute(alice, tok, toExternal(1)) },
		func() { h.Execute(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins(denom, 51)...) },
		func() { h.Execute(alice, tok, toExternal(450)) },
	}
	for _, step := range steps {
		step()
		requireInt(t, 500, h.Supply(tok).Total, "combined supply")
	}

	// Transmutation is value neutral, so it is allowed at the cap
	h.Execute(minter, tok, mint(500))
	requireInt(t, 1000, h.Supply(tok).Total, "combined supply")
	h.Execute(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins(denom, 450)...)
	requireSupply(t, h, tok, 1000, 0)
}

func TestCap(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, big.NewInt(100), true)
	denom := h.ExternalDenom(tok)

	h.Execute(minter, tok, mint(60))
	h.Execute(alice, tok, toExternal(20))

	// S = 60, C - S = 40
	err := h.ExecuteErr(minter, tok, mint(41))
	require.ErrorIs(t, err, errors.CapExceeded)
	err = h.ExecuteErr(minter, tok, &protocol.Mint{Recipient: bob, Amount: big.NewInt(41), AsExternal: true})
	require.ErrorIs(t, err, errors.CapExceeded)
	requireSupply(t, h, tok, 40, 20)

	// External units count against the cap
	h.Execute(minter, tok, &protocol.Mint{Recipient: bob, Amount: big.NewInt(30), AsExternal: true})
	requireInt(t, 30, h.ExternalBalance(bob, denom), "external balance")
	requireInt(t, 0, h.LedgerBalance(tok, bob), "ledger balance")
	requireSupply(t, h, tok, 40, 50)

	h.Execute(minter, tok, mint(10))
	requireSupply(t, h, tok, 50, 50)
	require.ErrorIs(t, h.ExecuteErr(minter, tok, mint(1)), errors.CapExceeded)

	// Burning makes room
	h.Execute(alice, tok, &protocol.Burn{Amount: big.NewInt(5)})
	h.Execute(minter, tok, mint(5))
	requireSupply(t, h, tok, 50, 50)
}

func TestCapIgnoresFunding(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, big.NewInt(100), true)
	denom := h.ExternalDenom(tok)

	// External units of the token cannot be issued around the mint authority
	_, err := h.X.Fund(alice, harness.Coins(denom, 1000))
	require.ErrorIs(t, err, errors.NotAllowed)
	requireInt(t, 0, h.ExternalBalance(alice, denom), "external balance")

	err = h.ExecuteErr(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins(denom, 1000)...)
	require.ErrorIs(t, err, errors.InsufficientBalance)
	requireInt(t, 0, h.LedgerBalance(tok, alice), "ledger balance")
	requireSupply(t, h, tok, 0, 0)
}

func TestInitialBalances(t *testing.T) {
	h := harness.New(t)
	msg := func() *protocol.InstantiateToken {
		return &protocol.InstantiateToken{
			Name:     "Transmute Token",
			Symbol:   "TMT",
			Decimals: 6,
			Mint:     &protocol.MinterInfo{Minter: minter, Cap: big.NewInt(100)},
			InitialBalances: []protocol.Balance{
				{Address: alice, Amount: big.NewInt(60)},
				{Address: bob, Amount: big.NewInt(40)},
			},
		}
	}

	tok := h.Instantiate(minter, token.Code, msg())
	requireInt(t, 60, h.LedgerBalance(tok, alice), "alice")
	requireInt(t, 40, h.LedgerBalance(tok, bob), "bob")
	requireSupply(t, h, tok, 100, 0)

	accounts := harness.Query[*protocol.AccountsResponse](h, tok, &protocol.QueryAllAccounts{})
	require.Equal(t, []string{alice, bob}, accounts.Accounts)

	m := msg()
	m.InitialBalances[1].Amount = big.NewInt(41)
	_, err := h.X.Instantiate(minter, token.Code, m, nil)
	require.ErrorIs(t, err, errors.CapExceeded)

	m = msg()
	m.InitialBalances[1].Address = alice
	_, err = h.X.Instantiate(minter, token.Code, m, nil)
	require.ErrorIs(t, err, errors.BadRequest)

	m = msg()
	m.Symbol = "T1"
	_, err = h.X.Instantiate(minter, token.Code, m, nil)
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestMaterialize(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, false)

	// Not yet materialized
	_, err := h.X.Query(tok, &protocol.QueryExternalDenom{})
	require.ErrorIs(t, err, errors.NotFound)
	h.Execute(minter, tok, mint(10))
	require.ErrorIs(t, h.ExecuteErr(alice, tok, toExternal(1)), errors.NoExternalRepresentation)
	require.ErrorIs(t, h.ExecuteErr(minter, tok, &protocol.Mint{Recipient: bob, Amount: big.NewInt(1), AsExternal: true}), errors.NoExternalRepresentation)
	requireSupply(t, h, tok, 10, 0)

	// Only the creator or minter may materialize
	err = h.ExecuteErr(alice, tok, &protocol.MaterializeExternal{Subdenom: "mine"})
	require.ErrorIs(t, err, errors.Unauthorized)

	h.Execute(minter, tok, &protocol.MaterializeExternal{Subdenom: "transmute"})
	denom := h.ExternalDenom(tok)
	require.Equal(t, "factory/"+tok+"/transmute", denom)

	// Write once
	err = h.ExecuteErr(minter, tok, &protocol.MaterializeExternal{Subdenom: "other"})
	require.ErrorIs(t, err, errors.AlreadyMaterialized)
	require.Equal(t, denom, h.ExternalDenom(tok))

	h.Execute(alice, tok, toExternal(4))
	requireSupply(t, h, tok, 6, 4)
}

func TestTransmuteIntoLedgerFunds(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)
	denom := h.ExternalDenom(tok)
	h.Fund(alice, harness.Coins("uosmo", 10))
	h.Execute(minter, tok, mint(10))
	h.Execute(alice, tok, toExternal(10))

	cases := map[string]struct {
		funds protocol.Coins
		code  errors.Status
	}{
		"NoFunds":    {nil, errors.ExpectedExactlyOneCoin},
		"TwoCoins":   {protocol.Coins{protocol.NewCoin(denom, big.NewInt(1)), protocol.NewCoin("uosmo", big.NewInt(1))}, errors.ExpectedExactlyOneCoin},
		"WrongDenom": {harness.Coins("uosmo", 1), errors.WrongDenom},
		"TooMuch":    {harness.Coins(denom, 11), errors.InsufficientBalance},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := h.ExecuteErr(alice, tok, &protocol.TransmuteIntoLedger{}, c.funds...)
			require.ErrorIs(t, err, c.code)
			requireInt(t, 10, h.ExternalBalance(alice, denom), "external balance")
			requireInt(t, 10, h.ExternalBalance(alice, "uosmo"), "uosmo balance")
			requireSupply(t, h, tok, 0, 10)
		})
	}

	err := h.ExecuteErr(alice, tok, &protocol.TransmuteIntoLedger{}, harness.Coins("uosmo", 1)...)
	require.EqualError(t, err, "expected "+denom+", received uosmo")
}

func TestMintAuthority(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)

	require.ErrorIs(t, h.ExecuteErr(alice, tok, mint(1)), errors.Unauthorized)
	require.ErrorIs(t, h.ExecuteErr(minter, tok, mint(0)), errors.BadRequest)

	noMinter := h.Instantiate(minter, token.Code, &protocol.InstantiateToken{Name: "Fixed", Symbol: "FIX"})
	require.ErrorIs(t, h.ExecuteErr(minter, noMinter, mint(1)), errors.Unauthorized)
	require.Nil(t, harness.Query[*protocol.MinterResponse](h, noMinter, &protocol.QueryMinter{}))

	m := harness.Query[*protocol.MinterResponse](h, tok, &protocol.QueryMinter{})
	require.Equal(t, minter, m.Minter)
	require.Nil(t, m.Cap)
}

func TestBurn(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)
	denom := h.ExternalDenom(tok)
	h.Execute(minter, tok, mint(100))
	h.Execute(alice, tok, toExternal(40))

	// Neither funds nor an amount
	require.ErrorIs(t, h.ExecuteErr(alice, tok, &protocol.Burn{}), errors.ZeroBurnAmount)
	require.ErrorIs(t, h.ExecuteErr(alice, tok, &protocol.Burn{Amount: new(big.Int)}), errors.ZeroBurnAmount)

	// Ledger burn
	h.Execute(alice, tok, &protocol.Burn{Amount: big.NewInt(10)})
	requireSupply(t, h, tok, 50, 40)
	require.ErrorIs(t, h.ExecuteErr(alice, tok, &protocol.Burn{Amount: big.NewInt(51)}), errors.InsufficientBalance)

	// External burn; the attached funds take precedence over the amount
	h.Execute(alice, tok, &protocol.Burn{Amount: big.NewInt(50)}, harness.Coins(denom, 15)...)
	requireInt(t, 50, h.LedgerBalance(tok, alice), "ledger balance")
	requireInt(t, 25, h.ExternalBalance(alice, denom), "external balance")
	requireSupply(t, h, tok, 50, 25)

	h.Fund(alice, harness.Coins("uosmo", 5))
	require.ErrorIs(t, h.ExecuteErr(alice, tok, &protocol.Burn{}, harness.Coins("uosmo", 5)...), errors.WrongDenom)
}

func TestTransferAndFunds(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)
	h.Execute(minter, tok, mint(10))

	h.Execute(alice, tok, &protocol.Transfer{Recipient: bob, Amount: big.NewInt(3)})
	requireInt(t, 7, h.LedgerBalance(tok, alice), "alice")
	requireInt(t, 3, h.LedgerBalance(tok, bob), "bob")
	requireSupply(t, h, tok, 10, 0)

	// Sending to oneself still requires the balance
	h.Execute(bob, tok, &protocol.Transfer{Recipient: bob, Amount: big.NewInt(3)})
	err := h.ExecuteErr(bob, tok, &protocol.Transfer{Recipient: bob, Amount: big.NewInt(1000000)})
	require.ErrorIs(t, err, errors.InsufficientBalance)
	requireInt(t, 3, h.LedgerBalance(tok, bob), "bob")
	requireSupply(t, h, tok, 10, 0)

	// Messages that do not take funds reject them
	h.Fund(alice, harness.Coins("uosmo", 5))
	err = h.ExecuteErr(alice, tok, &protocol.Transfer{Recipient: bob, Amount: big.NewInt(1)}, harness.Coins("uosmo", 5)...)
	require.ErrorIs(t, err, errors.BadRequest)
	requireInt(t, 5, h.ExternalBalance(alice, "uosmo"), "uosmo balance")

	require.ErrorIs(t, h.ExecuteErr(alice, tok, &protocol.RegisterDenom{Denom: "x"}), errors.BadRequest)
}

func TestTokenInfo(t *testing.T) {
	h := harness.New(t)
	tok := newToken(h, nil, true)
	h.Execute(minter, tok, mint(10))
	h.Execute(alice, tok, toExternal(4))

	info := harness.Query[*protocol.TokenInfoResponse](h, tok, &protocol.QueryTokenInfo{})
	require.Equal(t, "Transmute Token", info.Name)
	require.Equal(t, "TMT", info.Symbol)
	require.EqualValues(t, 6, info.Decimals)
	requireInt(t, 10, info.TotalSupply, "total supply")
}
