// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package execute hosts contracts. Every operation runs against a single
// change set: the contract's changes are committed into it, the messages the
// contract submitted are dispatched, and only then is the change set
// committed to the database. Any failure discards everything.
package execute

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/internal/bank"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

var _ Querier = (*Executor)(nil)

// maxDepth limits nested contract calls and queries.
const maxDepth = 8

type Executor struct {
	mu        sync.Mutex
	db        keyvalue.Beginner
	bank      *bank.Bank
	contracts map[string]Contract
	logger    zerolog.Logger
}

type Options struct {
	Database keyvalue.Beginner
	Logger   zerolog.Logger

	// Contracts maps code names to contract implementations.
	Contracts map[string]Contract
}

func New(opts Options) *Executor {
	x := new(Executor)
	x.db = opts.Database
	x.logger = opts.Logger.With().Str("module", "executor").Logger()
	x.bank = bank.New(opts.Logger)
	x.contracts = opts.Contracts
	return x
}

// Codes returns the names of the available contract codes.
func (x *Executor) Codes() []string {
	codes := make([]string, 0, len(x.contracts))
	for c := range x.contracts {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Fund issues external units to an address outside of any contract.
func (x *Executor) Fund(addr string, coins protocol.Coins) (*Result, error) {
	return x.run("fund", func(batch keyvalue.ChangeSet) ([]*Event, string, error) {
		err := x.bank.Fund(batch, addr, coins)
		if err != nil {
			return nil, "", err
		}
		return []*Event{{Type: "fund", Attributes: []Attribute{{"recipient", addr}, {"amount", coins.String()}}}}, "", nil
	})
}

// Instantiate creates a contract instance.
func (x *Executor) Instantiate(sender, code string, msg protocol.Message, funds protocol.Coins) (*Result, error) {
	return x.run("instantiate", func(batch keyvalue.ChangeSet) ([]*Event, string, error) {
		impl, ok := x.contracts[code]
		if !ok {
			return nil, "", errors.NotFound.WithFormat("unknown contract code %q", code)
		}

		seq := values.NewOptionalValue[uint64](batch, database.NewKey("executor", "sequence"), "contract sequence")
		n, err := seq.Get()
		if err != nil {
			return nil, "", errors.UnknownError.Wrap(err)
		}
		n++
		err = seq.Put(n)
		if err != nil {
			return nil, "", errors.UnknownError.Wrap(err)
		}

		info := &ContractInfo{Address: fmt.Sprintf("contract%d", n), Code: code, Creator: sender}
		err = contractInfo(batch, info.Address).Put(info)
		if err != nil {
			return nil, "", errors.UnknownError.Wrap(err)
		}

		events, err := x.call(batch, 0, sender, info, impl, funds, func(st *State) error {
			return impl.Instantiate(st, msg)
		})
		return events, info.Address, err
	})
}

// Execute executes a message on a contract, attaching funds.
func (x *Executor) Execute(sender, contract string, msg protocol.Message, funds protocol.Coins) (*Result, error) {
	return x.run("execute", func(batch keyvalue.ChangeSet) ([]*Event, string, error) {
		events, err := x.executeContract(batch, 0, sender, contract, msg, funds)
		return events, contract, err
	})
}

// ExecuteNative executes a bank or token-factory message on behalf of sender.
func (x *Executor) ExecuteNative(sender string, msg protocol.Message) (*Result, error) {
	return x.run("native", func(batch keyvalue.ChangeSet) ([]*Event, string, error) {
		events, err := x.dispatch(batch, 0, sender, msg)
		return events, "", err
	})
}

// Query queries a contract.
func (x *Executor) Query(contract string, q protocol.Query) (any, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()
	v, err := (&querier{x, batch, 0}).QueryContract(contract, q)
	x.count("query", err)
	return v, err
}

// QueryContract is equivalent to Query. It lets the executor serve as a
// [Querier].
func (x *Executor) QueryContract(addr string, q protocol.Query) (any, error) {
	return x.Query(addr, q)
}

// Balance returns the amount of external units of denom held by addr.
func (x *Executor) Balance(addr, denom string) (*big.Int, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()
	return x.bank.Balance(batch, addr, denom)
}

// Balances returns the external balances of addr.
func (x *Executor) Balances(addr string) (protocol.Coins, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()
	return x.bank.Balances(batch, addr)
}

// Supply returns the total issued amount of denom.
func (x *Executor) Supply(denom string) (*big.Int, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()
	return x.bank.Supply(batch, denom)
}

// Contract returns the record of a contract instance.
func (x *Executor) Contract(addr string) (*ContractInfo, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()
	return contractInfo(batch, addr).Get()
}

// Contracts returns every contract instance, in creation order.
func (x *Executor) Contracts() ([]*ContractInfo, error) {
	batch := x.db.Begin(nil, false)
	defer batch.Discard()

	var list []*ContractInfo
	err := batch.ForEach(database.NewKey("executor", "contract"), false, func(key *database.Key, _ []byte) error {
		addr, _ := key.Get(2).(string)
		info, err := contractInfo(batch, addr).Get()
		if err != nil {
			return err
		}
		list = append(list, info)
		return nil
	})
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}

	// Addresses sort lexically, so contract10 would precede contract2
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Address, list[j].Address
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return list, nil
}

func contractInfo(store keyvalue.Store, addr string) *values.Value[*ContractInfo] {
	return values.NewValue[*ContractInfo](store, database.NewKey("executor", "contract", addr), "contract "+addr)
}

func (x *Executor) load(store keyvalue.Store, addr string) (*ContractInfo, Contract, error) {
	info, err := contractInfo(store, addr).Get()
	switch {
	case err == nil:
	case errors.Is(err, errors.NotFound):
		return nil, nil, errors.NotFound.WithFormat("contract %s not found", addr)
	default:
		return nil, nil, errors.UnknownError.Wrap(err)
	}

	impl, ok := x.contracts[info.Code]
	if !ok {
		return nil, nil, errors.InternalError.WithFormat("contract %s has unknown code %q", addr, info.Code)
	}
	return info, impl, nil
}

func (x *Executor) contractLogger(info *ContractInfo) zerolog.Logger {
	return x.logger.With().Str("contract", info.Address).Str("code", info.Code).Logger()
}

// run executes fn in a root change set and commits it if fn succeeds.
func (x *Executor) run(kind string, fn func(keyvalue.ChangeSet) ([]*Event, string, error)) (*Result, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.db.Begin(nil, true)
	defer batch.Discard()

	events, contract, err := fn(batch)
	if err == nil {
		err = batch.Commit()
	}
	x.count(kind, err)
	if err != nil {
		x.logger.Debug().Err(err).Str("kind", kind).Str("contract", contract).Msg("Operation failed")
		return nil, err
	}

	r := &Result{ID: uuid.New(), Contract: contract, Events: events}
	x.logger.Info().Str("kind", kind).Str("contract", contract).Stringer("id", r.ID).Int("events", len(events)).Msg("Executed")
	return r, nil
}

func (x *Executor) count(kind string, err error) {
	status := "ok"
	if err != nil {
		status = errors.Code(err).String()
	}
	mOperations.WithLabelValues(kind, status).Inc()
}

func (x *Executor) executeContract(batch keyvalue.ChangeSet, depth int, sender, addr string, msg protocol.Message, funds protocol.Coins) ([]*Event, error) {
	if msg == nil {
		return nil, errors.BadRequest.With("missing message")
	}
	info, impl, err := x.load(batch, addr)
	if err != nil {
		return nil, err
	}
	return x.call(batch, depth, sender, info, impl, funds, func(st *State) error {
		return impl.Execute(st, msg)
	})
}

// call runs a contract call in a sub-batch of batch. The funds are moved to
// the contract, the contract's namespace is committed into the sub-batch, and
// then the submitted messages are dispatched in order.
func (x *Executor) call(batch keyvalue.ChangeSet, depth int, sender string, info *ContractInfo, impl Contract, funds protocol.Coins, fn func(*State) error) ([]*Event, error) {
	if depth >= maxDepth {
		return nil, errors.BadRequest.WithFormat("call depth limit of %d exceeded", maxDepth)
	}

	sub := batch.Begin(nil, true)
	defer sub.Discard()

	if len(funds) > 0 {
		err := x.bank.Send(sub, sender, info.Address, funds)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("attach funds: %w", err)
		}
	}

	store := sub.Begin(database.NewKey("contract", info.Address), true)
	defer store.Discard()

	st := new(State)
	st.Self = info.Address
	st.Sender = sender
	st.Funds = funds
	st.Store = store
	st.Querier = &querier{x, sub, depth + 1}
	st.Logger = x.contractLogger(info)

	err := fn(st)
	if err != nil {
		return nil, err
	}
	err = store.Commit()
	if err != nil {
		return nil, errors.UnknownError.WithFormat("commit contract state: %w", err)
	}

	events := st.events
	for _, msg := range st.messages {
		ev, err := x.dispatch(sub, depth+1, info.Address, msg)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("dispatch %v: %w", msg.Type(), err)
		}
		events = append(events, ev...)
	}

	err = sub.Commit()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}
	return events, nil
}

// dispatch executes a message submitted by sender.
func (x *Executor) dispatch(batch keyvalue.ChangeSet, depth int, sender string, msg protocol.Message) ([]*Event, error) {
	mDispatched.WithLabelValues(msg.Type().String()).Inc()
	x.logger.Debug().Str("sender", sender).Stringer("type", msg.Type()).Msg("Dispatch")

	switch msg := msg.(type) {
	case *protocol.ExecuteContract:
		return x.executeContract(batch, depth, sender, msg.Contract, msg.Msg, msg.Funds)

	case *protocol.BankSend, *protocol.CreateDenom, *protocol.MintDenom, *protocol.BurnDenom:
		err := x.bank.Handle(batch, sender, msg)
		if err != nil {
			return nil, err
		}
		return []*Event{nativeEvent(sender, msg)}, nil

	default:
		return nil, errors.BadRequest.WithFormat("cannot dispatch %v", msg.Type())
	}
}

func nativeEvent(sender string, msg protocol.Message) *Event {
	e := &Event{Type: msg.Type().String(), Attributes: []Attribute{{"sender", sender}}}
	switch msg := msg.(type) {
	case *protocol.BankSend:
		e.Attributes = append(e.Attributes, Attribute{"recipient", msg.ToAddress}, Attribute{"amount", msg.Amount.String()})
	case *protocol.CreateDenom:
		e.Attributes = append(e.Attributes, Attribute{"denom", protocol.FactoryDenom(sender, msg.Subdenom)})
	case *protocol.MintDenom:
		e.Attributes = append(e.Attributes, Attribute{"recipient", msg.MintToAddress}, Attribute{"amount", msg.Amount.String()})
	case *protocol.BurnDenom:
		e.Attributes = append(e.Attributes, Attribute{"amount", msg.Amount.String()})
	}
	return e
}
