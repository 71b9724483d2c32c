// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package token implements the dual-ledger token contract. A token's units
// exist either as ledger units, tracked in the contract's balance map, or as
// external units, issued by the issuance service under the token's external
// denomination. Transmutation converts between the two without changing the
// combined supply.
package token

import (
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/internal/issuance"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Code is the name the contract is registered under.
const Code = "token"

// Executor executes a message type.
type Executor interface {
	Type() protocol.MessageType
	Execute(st *execute.State, tok *Token, msg protocol.Message) error
}

// Payable is implemented by executors that accept funds.
type Payable interface {
	Payable() bool
}

var executors = map[protocol.MessageType]Executor{}

func init() {
	for _, x := range []Executor{
		Transfer{},
		TransmuteIntoExternal{},
		TransmuteIntoLedger{},
		Mint{},
		Burn{},
		MaterializeExternal{},
		RegisterWithRegistry{},
	} {
		executors[x.Type()] = x
	}
}

// Contract is the token contract code.
type Contract struct {
	backend string
}

var _ execute.Contract = (*Contract)(nil)

// New returns the token contract. New instances use the named issuance
// backend.
func New(backend string) *Contract {
	return &Contract{backend: backend}
}

func (c *Contract) Execute(st *execute.State, msg protocol.Message) error {
	x, ok := executors[msg.Type()]
	if !ok {
		return execute.Unsupported(msg.Type())
	}
	if p, ok := x.(Payable); (!ok || !p.Payable()) && len(st.Funds) > 0 {
		return errors.BadRequest.WithFormat("%v does not accept funds", msg.Type())
	}

	tok, err := Load(&st.QueryState)
	if err != nil {
		return err
	}

	err = x.Execute(st, tok, msg)
	if err != nil {
		return err
	}

	st.Logger.Debug().Str("sender", st.Sender).Stringer("type", msg.Type()).Msg("Executed")
	return nil
}

func (c *Contract) Instantiate(st *execute.State, msg protocol.Message) error {
	body, ok := msg.(*protocol.InstantiateToken)
	if !ok {
		return errors.BadRequest.WithFormat("invalid instantiate message: want %v, got %v", protocol.MessageTypeInstantiateToken, msg.Type())
	}
	if len(st.Funds) > 0 {
		return errors.BadRequest.WithFormat("%v does not accept funds", msg.Type())
	}
	if _, err := issuance.New(c.backend); err != nil {
		return err
	}

	tok := newToken(&st.QueryState)
	return tok.init(st, c.backend, body)
}
