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

type Transfer struct{}

func (Transfer) Type() protocol.MessageType { return protocol.MessageTypeTransfer }

func (Transfer) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.Transfer)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.Transfer), msg)
	}

	err := tok.Ledger.Transfer(st.Sender, body.Recipient, body.Amount)
	if err != nil {
		return err
	}

	st.Emit("transfer", "from", st.Sender, "to", body.Recipient, "amount", body.Amount.String())
	return nil
}
