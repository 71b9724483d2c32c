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

// Burn destroys units. Attached external units take precedence over the
// amount in the message.
type Burn struct{}

func (Burn) Type() protocol.MessageType { return protocol.MessageTypeBurn }

func (Burn) Payable() bool { return true }

func (Burn) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.Burn)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.Burn), msg)
	}

	if len(st.Funds) == 0 {
		if body.Amount == nil || body.Amount.Sign() == 0 {
			return errors.ZeroBurnAmount.With("burn requires attached funds or a non-zero amount")
		}
		if body.Amount.Sign() < 0 {
			return errors.BadRequest.WithFormat("invalid amount %v", body.Amount)
		}

		err := tok.Ledger.Debit(st.Sender, body.Amount)
		if err != nil {
			return err
		}
		st.Emit("burn", "owner", st.Sender, "amount", body.Amount.String(), "representation", "ledger")
		return nil
	}

	denom, err := tok.RequireExternalDenom()
	if err != nil {
		return err
	}
	amount, err := protocol.OnlyOneCoin(st.Funds, denom)
	if err != nil {
		return err
	}
	burn, err := tok.Capability().Burn(st.Self, denom, amount)
	if err != nil {
		return err
	}
	st.Submit(burn)

	st.Emit("burn", "owner", st.Sender, "amount", amount.String(), "representation", "external")
	return nil
}
