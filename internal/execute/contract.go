// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package execute

import (
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Contract is the code of a contract. The executor creates instances of it,
// each with its own address and storage namespace.
type Contract interface {
	// Instantiate initializes a new instance.
	Instantiate(st *State, msg protocol.Message) error

	// Execute executes a message.
	Execute(st *State, msg protocol.Message) error

	// Query answers a query. Query must not modify state.
	Query(st *QueryState, q protocol.Query) (any, error)
}

// ContractInfo is the executor's record of a contract instance.
type ContractInfo struct {
	Address string `json:"address" yaml:"address"`
	Code    string `json:"code" yaml:"code"`
	Creator string `json:"creator" yaml:"creator"`
}

// QueryState is the context of a query.
type QueryState struct {
	// Self is the address of the contract being queried.
	Self string

	// Store is the contract's namespace.
	Store keyvalue.Store

	Querier Querier
	Logger  zerolog.Logger
}

// State is the context of an instantiation or execution. Changes to Store are
// only committed if the call and every message it submits succeed.
type State struct {
	QueryState

	// Sender is the address that called the contract.
	Sender string

	// Funds are the external units attached to the call. They have already
	// been transferred to the contract.
	Funds protocol.Coins

	messages []protocol.Message
	events   []*Event
}

// Submit queues a message to be executed on behalf of the contract after the
// contract's changes are committed.
func (s *State) Submit(msg protocol.Message) {
	s.messages = append(s.messages, msg)
}

// Emit records an event. kv is a list of alternating keys and values.
func (s *State) Emit(typ string, kv ...string) {
	e := &Event{Type: typ, Contract: s.Self}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attributes = append(e.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	s.events = append(s.events, e)
}

// Messages returns the queued messages.
func (s *State) Messages() []protocol.Message { return s.messages }

// Unsupported returns the error for a message or query a contract does not
// handle.
func Unsupported(v interface{ String() string }) error {
	return errors.BadRequest.WithFormat("unsupported %v", v)
}
