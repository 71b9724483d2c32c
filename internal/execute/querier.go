// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package execute

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Querier reads the state of other modules and contracts.
type Querier interface {
	// Balance returns the amount of external units of denom held by addr.
	Balance(addr, denom string) (*big.Int, error)

	// Supply returns the total issued amount of denom.
	Supply(denom string) (*big.Int, error)

	// QueryContract queries a contract.
	QueryContract(addr string, q protocol.Query) (any, error)
}

// QueryAs queries a contract and checks the type of the response.
func QueryAs[T any](q Querier, addr string, query protocol.Query) (T, error) {
	var z T
	v, err := q.QueryContract(addr, query)
	if err != nil {
		return z, err
	}
	u, ok := v.(T)
	if !ok {
		return z, errors.BadRequest.WithFormat("%s answered %v with %T, want %T", addr, query.QueryType(), v, z)
	}
	return u, nil
}

type querier struct {
	x     *Executor
	batch keyvalue.ChangeSet
	depth int
}

var _ Querier = (*querier)(nil)

func (q *querier) Balance(addr, denom string) (*big.Int, error) {
	return q.x.bank.Balance(q.batch, addr, denom)
}

func (q *querier) Supply(denom string) (*big.Int, error) {
	return q.x.bank.Supply(q.batch, denom)
}

func (q *querier) QueryContract(addr string, query protocol.Query) (any, error) {
	if q.depth >= maxDepth {
		return nil, errors.BadRequest.WithFormat("query depth limit of %d exceeded", maxDepth)
	}

	info, impl, err := q.x.load(q.batch, addr)
	if err != nil {
		return nil, err
	}

	store := q.batch.Begin(database.NewKey("contract", addr), false)
	defer store.Discard()

	q.x.logger.Trace().Str("contract", addr).Str("code", info.Code).Stringer("query", query.QueryType()).Msg("Query")
	return impl.Query(&QueryState{
		Self:    addr,
		Store:   store,
		Querier: &querier{q.x, q.batch, q.depth + 1},
		Logger:  q.x.contractLogger(info),
	}, query)
}
