// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package execute_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	. "gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/internal/logging"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// counter counts the transfers it receives and forwards them as bank sends.
type counter struct{}

func (counter) count(st *QueryState) *values.Value[uint64] {
	return values.NewOptionalValue[uint64](st.Store, database.NewKey("count"), "count")
}

func (c counter) Instantiate(st *State, msg protocol.Message) error {
	st.Emit("instantiate", "creator", st.Sender)
	return c.count(&st.QueryState).Put(0)
}

func (c counter) Execute(st *State, msg protocol.Message) error {
	v := c.count(&st.QueryState)
	n, err := v.Get()
	if err != nil {
		return err
	}
	err = v.Put(n + 1)
	if err != nil {
		return err
	}

	switch msg := msg.(type) {
	case *protocol.Transfer:
		st.Submit(&protocol.BankSend{
			ToAddress: msg.Recipient,
			Amount:    protocol.Coins{protocol.NewCoin("uosmo", msg.Amount)},
		})
	case *protocol.ExecuteContract:
		st.Submit(msg)
	default:
		return Unsupported(msg.Type())
	}
	st.Emit("counted")
	return nil
}

func (c counter) Query(st *QueryState, q protocol.Query) (any, error) {
	switch q.(type) {
	case *protocol.QueryBalance:
		n, err := c.count(st).Get()
		return &protocol.BalanceResponse{Balance: new(big.Int).SetUint64(n)}, err
	}
	return nil, Unsupported(q.QueryType())
}

func setup(t *testing.T) *Executor {
	x := New(Options{
		Database:  memory.New(nil),
		Logger:    logging.NewTestLogger(t),
		Contracts: map[string]Contract{"counter": counter{}},
	})
	_, err := x.Fund("alice", protocol.Coins{protocol.NewCoin("uosmo", big.NewInt(100))})
	require.NoError(t, err)
	return x
}

func queryCount(t *testing.T, x *Executor, addr string) int64 {
	t.Helper()
	v, err := x.Query(addr, &protocol.QueryBalance{})
	require.NoError(t, err)
	return v.(*protocol.BalanceResponse).Balance.Int64()
}

func requireBalance(t *testing.T, x *Executor, addr string, want int64) {
	t.Helper()
	v, err := x.Balance(addr, "uosmo")
	require.NoError(t, err)
	require.Equalf(t, big.NewInt(want).String(), v.String(), "balance of %s", addr)
}

func funds(amount int64) protocol.Coins {
	return protocol.Coins{protocol.NewCoin("uosmo", big.NewInt(amount))}
}

func TestInstantiate(t *testing.T) {
	x := setup(t)

	r, err := x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	require.Equal(t, "contract1", r.Contract)
	require.Len(t, r.Events, 1)
	creator, _ := r.Events[0].Get("creator")
	require.Equal(t, "alice", creator)

	r, err = x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	require.Equal(t, "contract2", r.Contract)

	_, err = x.Instantiate("alice", "missing", &protocol.InstantiateRegistry{}, nil)
	require.ErrorIs(t, err, errors.NotFound)

	list, err := x.Contracts()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "contract1", list[0].Address)
	require.Equal(t, "counter", list[0].Code)
}

func TestExecuteDispatches(t *testing.T) {
	x := setup(t)
	r, err := x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	addr := r.Contract

	// Funds are moved to the contract before it runs, and the contract
	// forwards them
	r, err = x.Execute("alice", addr, &protocol.Transfer{Recipient: "bob", Amount: big.NewInt(30)}, funds(30))
	require.NoError(t, err)
	requireBalance(t, x, "alice", 70)
	requireBalance(t, x, addr, 0)
	requireBalance(t, x, "bob", 30)
	require.EqualValues(t, 1, queryCount(t, x, addr))

	var types []string
	for _, e := range r.Events {
		types = append(types, e.Type)
	}
	require.Equal(t, []string{"counted", "bankSend"}, types)
}

func TestFailedDispatchDiscardsEverything(t *testing.T) {
	x := setup(t)
	r, err := x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	addr := r.Contract

	// The contract's own write succeeds but the submitted send overdraws
	_, err = x.Execute("alice", addr, &protocol.Transfer{Recipient: "bob", Amount: big.NewInt(31)}, funds(30))
	require.ErrorIs(t, err, errors.InsufficientBalance)

	require.EqualValues(t, 0, queryCount(t, x, addr))
	requireBalance(t, x, "alice", 100)
	requireBalance(t, x, addr, 0)
	requireBalance(t, x, "bob", 0)
}

func TestNestedCall(t *testing.T) {
	x := setup(t)
	r, err := x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	a := r.Contract
	r, err = x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)
	b := r.Contract

	// a forwards an execution to b, which forwards the funds it receives
	inner := &protocol.ExecuteContract{Contract: b, Msg: &protocol.Transfer{Recipient: "bob", Amount: big.NewInt(5)}, Funds: funds(5)}
	_, err = x.Execute("alice", a, inner, funds(5))
	require.NoError(t, err)
	require.EqualValues(t, 1, queryCount(t, x, a))
	require.EqualValues(t, 1, queryCount(t, x, b))
	requireBalance(t, x, "bob", 5)

	// A contract that calls itself forever hits the depth limit
	var loop protocol.Message = &protocol.Transfer{Recipient: "bob", Amount: big.NewInt(1)}
	for i := 0; i < 10; i++ {
		loop = &protocol.ExecuteContract{Contract: a, Msg: loop}
	}
	_, err = x.Execute("alice", a, loop, nil)
	require.ErrorIs(t, err, errors.BadRequest)
	require.EqualValues(t, 1, queryCount(t, x, a))
}

func TestQueryErrors(t *testing.T) {
	x := setup(t)
	r, err := x.Instantiate("alice", "counter", &protocol.InstantiateRegistry{}, nil)
	require.NoError(t, err)

	_, err = x.Query("contract9", &protocol.QueryBalance{})
	require.ErrorIs(t, err, errors.NotFound)

	_, err = x.Query(r.Contract, &protocol.QueryMinter{})
	require.ErrorIs(t, err, errors.BadRequest)

	_, err = x.Execute("alice", r.Contract, &protocol.Burn{}, nil)
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestExecuteNative(t *testing.T) {
	x := setup(t)

	_, err := x.ExecuteNative("alice", &protocol.BankSend{ToAddress: "bob", Amount: funds(10)})
	require.NoError(t, err)
	requireBalance(t, x, "bob", 10)

	_, err = x.ExecuteNative("alice", &protocol.CreateDenom{Subdenom: "tok"})
	require.NoError(t, err)
	_, err = x.ExecuteNative("alice", &protocol.MintDenom{Amount: protocol.NewCoin("factory/alice/tok", big.NewInt(3)), MintToAddress: "bob"})
	require.NoError(t, err)

	supply, err := x.Supply("factory/alice/tok")
	require.NoError(t, err)
	require.Equal(t, "3", supply.String())

	coins, err := x.Balances("bob")
	require.NoError(t, err)
	require.Equal(t, "3factory/alice/tok,10uosmo", coins.String())

	_, err = x.ExecuteNative("alice", &protocol.Transfer{})
	require.ErrorIs(t, err, errors.BadRequest)
}
