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

// TransmuteIntoExternal debits the sender's ledger balance and mints the same
// amount of external units to the sender.
type TransmuteIntoExternal struct{}

func (TransmuteIntoExternal) Type() protocol.MessageType {
	return protocol.MessageTypeTransmuteIntoExternal
}

func (TransmuteIntoExternal) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.TransmuteIntoExternal)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.TransmuteIntoExternal), msg)
	}
	if err := requirePositive("amount", body.Amount); err != nil {
		return err
	}

	denom, err := tok.RequireExternalDenom()
	if err != nil {
		return err
	}

	err = tok.Ledger.Debit(st.Sender, body.Amount)
	if err != nil {
		return err
	}

	mint, err := tok.Capability().Mint(st.Self, denom, body.Amount, st.Sender)
	if err != nil {
		return err
	}
	st.Submit(mint)

	st.Emit("transmute_into_external", "owner", st.Sender, "amount", body.Amount.String(), "denom", denom)
	return nil
}

// TransmuteIntoLedger burns the attached external units and credits the same
// amount of ledger units to the sender.
type TransmuteIntoLedger struct{}

func (TransmuteIntoLedger) Type() protocol.MessageType {
	return protocol.MessageTypeTransmuteIntoLedger
}

func (TransmuteIntoLedger) Payable() bool { return true }

func (TransmuteIntoLedger) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	if _, ok := msg.(*protocol.TransmuteIntoLedger); !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.TransmuteIntoLedger), msg)
	}

	denom, err := tok.RequireExternalDenom()
	if err != nil {
		return err
	}

	amount, err := protocol.OnlyOneCoin(st.Funds, denom)
	if err != nil {
		return err
	}

	err = tok.Ledger.Credit(st.Sender, amount)
	if err != nil {
		return err
	}

	burn, err := tok.Capability().Burn(st.Self, denom, amount)
	if err != nil {
		return err
	}
	st.Submit(burn)

	st.Emit("transmute_into_ledger", "owner", st.Sender, "amount", amount.String(), "denom", denom)
	return nil
}
