// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package harness runs token and registry contracts on an in-memory executor
// for tests.
package harness

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/registry"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/internal/issuance/osmosis"
	"gitlab.com/accumulatenetwork/transmute/internal/logging"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

type Harness struct {
	tb testing.TB
	X  *execute.Executor
}

// New returns a harness backed by an in-memory database.
func New(tb testing.TB) *Harness {
	return NewWith(tb, memory.New(nil))
}

// NewWith returns a harness backed by the given database.
func NewWith(tb testing.TB, db keyvalue.Beginner) *Harness {
	h := new(Harness)
	h.tb = tb
	h.X = execute.New(execute.Options{
		Database: db,
		Logger:   logging.NewTestLogger(tb),
		Contracts: map[string]execute.Contract{
			token.Code:    token.New(osmosis.Name),
			registry.Code: registry.Contract{},
		},
	})
	return h
}

// Coins returns a single coin.
func Coins(denom string, amount int64) protocol.Coins {
	return protocol.Coins{protocol.NewCoin(denom, big.NewInt(amount))}
}

func (h *Harness) Fund(addr string, coins protocol.Coins) {
	h.tb.Helper()
	_, err := h.X.Fund(addr, coins)
	require.NoError(h.tb, err)
}

// Instantiate instantiates a contract and returns its address.
func (h *Harness) Instantiate(sender, code string, msg protocol.Message) string {
	h.tb.Helper()
	r, err := h.X.Instantiate(sender, code, msg, nil)
	require.NoError(h.tb, err)
	return r.Contract
}

// InstantiateRegistry instantiates a registry and returns its address.
func (h *Harness) InstantiateRegistry(sender string) string {
	h.tb.Helper()
	return h.Instantiate(sender, registry.Code, &protocol.InstantiateRegistry{})
}

// Execute executes a message and requires it to succeed.
func (h *Harness) Execute(sender, contract string, msg protocol.Message, funds ...protocol.Coin) *execute.Result {
	h.tb.Helper()
	r, err := h.X.Execute(sender, contract, msg, funds)
	require.NoError(h.tb, err)
	return r
}

// ExecuteErr executes a message and returns the error.
func (h *Harness) ExecuteErr(sender, contract string, msg protocol.Message, funds ...protocol.Coin) error {
	h.tb.Helper()
	_, err := h.X.Execute(sender, contract, msg, funds)
	return err
}

// Query queries a contract and requires a response of type T.
func Query[T any](h *Harness, contract string, q protocol.Query) T {
	h.tb.Helper()
	v, err := h.X.Query(contract, q)
	require.NoError(h.tb, err)
	u, ok := v.(T)
	require.Truef(h.tb, ok, "want %T, got %T", u, v)
	return u
}

// LedgerBalance returns the ledger balance of addr.
func (h *Harness) LedgerBalance(contract, addr string) *big.Int {
	h.tb.Helper()
	return Query[*protocol.BalanceResponse](h, contract, &protocol.QueryBalance{Address: addr}).Balance
}

// ExternalBalance returns the external balance of addr.
func (h *Harness) ExternalBalance(addr, denom string) *big.Int {
	h.tb.Helper()
	v, err := h.X.Balance(addr, denom)
	require.NoError(h.tb, err)
	return v
}

// Supply returns the supply details of a token.
func (h *Harness) Supply(contract string) *protocol.SupplyDetails {
	h.tb.Helper()
	return Query[*protocol.SupplyDetails](h, contract, &protocol.QuerySupplyDetails{})
}

// ExternalDenom returns the external denomination of a token.
func (h *Harness) ExternalDenom(contract string) string {
	h.tb.Helper()
	return Query[*protocol.ExternalDenomResponse](h, contract, &protocol.QueryExternalDenom{}).Denom
}
