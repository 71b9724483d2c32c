// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

var lcase = cases.Lower(language.AmericanEnglish)

// MaterializeExternal creates the token's external denomination. The
// denomination is written once and never changes.
type MaterializeExternal struct{}

func (MaterializeExternal) Type() protocol.MessageType {
	return protocol.MessageTypeMaterializeExternal
}

func (MaterializeExternal) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.MaterializeExternal)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.MaterializeExternal), msg)
	}

	// The creator or the mint authority
	creator, err := tok.creator.Get()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if st.Sender != creator {
		if err := checkMinter(tok, st.Sender); err != nil {
			return errors.Unauthorized.WithFormat("%s may not materialize %s", st.Sender, tok.Self)
		}
	}

	return tok.materialize(st, body.Subdenom)
}

func (t *Token) materialize(st *execute.State, subdenom string) error {
	existing, err := t.ExternalDenom()
	if err != nil {
		return err
	}
	if existing != "" {
		return errors.AlreadyMaterialized.WithFormat("%s is already materialized as %s", t.Self, existing)
	}

	if subdenom == "" {
		state, err := t.State()
		if err != nil {
			return err
		}
		subdenom = lcase.String(state.Symbol)
	}
	if err := protocol.Validate(&protocol.CreateDenom{Subdenom: subdenom}); err != nil {
		return errors.BadRequest.WithFormat("invalid subdenom %q: %w", subdenom, err)
	}

	denom, create, err := t.issuance.Create(st.Self, subdenom)
	if err != nil {
		return err
	}
	err = t.denom.Put(denom)
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	st.Submit(create)
	st.Emit("materialize", "denom", denom, "backend", t.issuance.Name())

	registry, err := t.registry.Get()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if registry != "" {
		t.register(st, registry, denom)
	}
	return nil
}

// RegisterWithRegistry registers the token's external denomination with a
// registry. Anyone may request it; the registry verifies the token itself.
type RegisterWithRegistry struct{}

func (RegisterWithRegistry) Type() protocol.MessageType {
	return protocol.MessageTypeRegisterWithRegistry
}

func (RegisterWithRegistry) Execute(st *execute.State, tok *Token, msg protocol.Message) error {
	body, ok := msg.(*protocol.RegisterWithRegistry)
	if !ok {
		return errors.InternalError.WithFormat("invalid message: want %T, got %T", new(protocol.RegisterWithRegistry), msg)
	}
	if body.Registry == "" {
		return errors.BadRequest.With("missing registry")
	}

	denom, err := tok.RequireExternalDenom()
	if err != nil {
		return err
	}
	tok.register(st, body.Registry, denom)
	return nil
}

func (t *Token) register(st *execute.State, registry, denom string) {
	st.Submit(&protocol.ExecuteContract{
		Contract: registry,
		Msg:      &protocol.RegisterDenom{Denom: denom},
	})
	st.Emit("register", "registry", registry, "denom", denom)
}
