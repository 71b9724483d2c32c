// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Mint creates new units. Only the mint authority may mint, and the combined
// supply must stay within the cap.
type Mint struct{}

func (Mint) Type() protocol.MessageType { return protocol.MessageTypeMint }

func (Mint) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.Mint)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.Mint), msg)
	}
	if err := requirePositive("amount", body.Amount); err != nil {
		return err
	}
	if body.Recipient == "" {
		return errors.BadRequest.With("missing recipient")
	}

	err := checkMinter(tok, st.Sender)
	if err != nil {
		return err
	}

	err = tok.EnforceCap(body.Amount)
	if err != nil {
		return err
	}

	if !body.AsExternal {
		err = tok.Ledger.Credit(body.Recipient, body.Amount)
		if err != nil {
			return err
		}
		st.Emit("mint", "recipient", body.Recipient, "amount", body.Amount.String(), "representation", "ledger")
		return nil
	}

	denom, err := tok.RequireExternalDenom()
	if err != nil {
		return err
	}
	mint, err := tok.Capability().Mint(st.Self, denom, new(big.Int).Set(body.Amount), body.Recipient)
	if err != nil {
		return err
	}
	st.Submit(mint)

	st.Emit("mint", "recipient", body.Recipient, "amount", body.Amount.String(), "representation", "external")
	return nil
}

func checkMinter(tok *Token, sender string) error {
	state, err := tok.State()
	if err != nil {
		return err
	}
	if state.Mint == nil {
		return errors.Unauthorized.WithFormat("%s has no mint authority", tok.Self)
	}
	if state.Mint.Minter != sender {
		return errors.Unauthorized.WithFormat("%s is not the mint authority of %s", sender, tok.Self)
	}
	return nil
}
