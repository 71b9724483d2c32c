// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package registry implements the registry contract, which maps external
// denominations to the token contracts that issue them. A token may only
// register a denomination that names the token itself as its issuer.
package registry

import (
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Code is the name the contract is registered under.
const Code = "registry"

// Contract is the registry contract code.
type Contract struct{}

var _ execute.Contract = Contract{}

func (Contract) Instantiate(st *execute.State, msg protocol.Message) error {
	if _, ok := msg.(*protocol.InstantiateRegistry); !ok {
		return errors.BadRequest.WithFormat("invalid instantiate message: want %v, got %v", protocol.MessageTypeInstantiateRegistry, msg.Type())
	}
	if len(st.Funds) > 0 {
		return errors.BadRequest.WithFormat("%v does not accept funds", msg.Type())
	}
	st.Emit("instantiate", "creator", st.Sender)
	return nil
}

func (Contract) Execute(st *execute.State, msg protocol.Message) error {
	body, ok := msg.(*protocol.RegisterDenom)
	if !ok {
		return execute.Unsupported(msg.Type())
	}
	if len(st.Funds) > 0 {
		return errors.BadRequest.WithFormat("%v does not accept funds", msg.Type())
	}

	err := Register(st, New(st.Store), body.Denom)
	if err != nil {
		return err
	}

	st.Logger.Info().Str("denom", body.Denom).Str("token", st.Sender).Msg("Registered")
	st.Emit("register_denom", "denom", body.Denom, "contract", st.Sender)
	return nil
}

// Register validates and records a registration by the sender. The checks run
// in a fixed order: the identifier must be well formed, must not already be
// registered, and must name the sender as its issuer. Finally the sender must
// answer the token info and external denomination queries.
func Register(st *execute.State, r *Registry, denom string) error {
	parts, err := protocol.SplitDenom(denom)
	if err != nil {
		return err
	}

	ok, err := r.Has(denom)
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if ok {
		return errors.AlreadyRegistered.WithFormat("%s is already registered", denom)
	}

	if parts.Scheme != protocol.FactoryScheme {
		return errors.IdentityMismatch.WithFormat("invalid scheme %q: want %q", parts.Scheme, protocol.FactoryScheme)
	}
	if parts.Issuer != st.Sender {
		return errors.IdentityMismatch.WithFormat("%s cannot register a denomination issued by %s", st.Sender, parts.Issuer)
	}

	err = checkConformance(st.Querier, st.Sender)
	if err != nil {
		return err
	}

	return r.Insert(denom, st.Sender)
}

// checkConformance verifies that the contract answers the queries the
// registry relies on.
func checkConformance(q execute.Querier, contract string) error {
	_, err := execute.QueryAs[*protocol.TokenInfoResponse](q, contract, &protocol.QueryTokenInfo{})
	if err != nil {
		return errors.BadRequest.WithFormat("%s does not answer the token info query: %w", contract, err)
	}
	_, err = execute.QueryAs[*protocol.ExternalDenomResponse](q, contract, &protocol.QueryExternalDenom{})
	if err != nil {
		return errors.BadRequest.WithFormat("%s does not answer the external denom query: %w", contract, err)
	}
	return nil
}
