// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ledger implements the ledger side of a token: the account balance
// map and the token state record holding the ledger total supply.
package ledger

import (
	"math/big"

	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// Ledger reads and writes a token's ledger state. The store must be the
// token instance's own namespace.
type Ledger struct {
	store keyvalue.Store
	state *values.Value[*protocol.TokenState]
}

// Delta is a signed change to an owner's balance.
type Delta struct {
	Owner  string
	Amount *big.Int
}

func New(store keyvalue.Store) *Ledger {
	return &Ledger{
		store: store,
		state: values.NewValue[*protocol.TokenState](store, database.NewKey("token_info"), "token info"),
	}
}

func (l *Ledger) balance(owner string) *values.Value[*big.Int] {
	return values.NewOptionalValue[*big.Int](l.store, database.NewKey("balance", owner), "balance of "+owner)
}

// Init writes the initial token state. The ledger total supply starts at
// zero; initial balances are credited separately.
func (l *Ledger) Init(state *protocol.TokenState) error {
	err := state.Validate()
	if err != nil {
		return err
	}

	ok, err := l.state.Exists()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if ok {
		return errors.Conflict.With("token already initialized")
	}

	state.TotalSupply = new(big.Int)
	return l.state.Put(state)
}

// State returns the token state.
func (l *Ledger) State() (*protocol.TokenState, error) {
	s, err := l.state.Get()
	if err != nil {
		return nil, errors.UnknownError.WithFormat("load token state: %w", err)
	}
	if s.TotalSupply == nil {
		s.TotalSupply = new(big.Int)
	}
	return s, nil
}

// TotalSupply returns the ledger total supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	s, err := l.State()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(s.TotalSupply), nil
}

// Balance returns an owner's ledger balance.
func (l *Ledger) Balance(owner string) (*big.Int, error) {
	v, err := l.balance(owner).Get()
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Credit increases an owner's balance and the total supply.
func (l *Ledger) Credit(owner string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.BadRequest.WithFormat("invalid credit amount %v", amount)
	}
	return l.Apply(Delta{owner, amount})
}

// Debit decreases an owner's balance and the total supply. Debit fails with
// [errors.InsufficientBalance] if the balance is less than the amount.
func (l *Ledger) Debit(owner string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.BadRequest.WithFormat("invalid debit amount %v", amount)
	}
	return l.Apply(Delta{owner, new(big.Int).Neg(amount)})
}

// Transfer moves units between owners. The total supply is unchanged.
func (l *Ledger) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.BadRequest.WithFormat("invalid transfer amount %v", amount)
	}
	if to == "" {
		return errors.BadRequest.With("missing recipient")
	}

	// The sender must cover the amount even when the deltas net to zero
	bal, err := l.Balance(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.InsufficientBalance.WithFormat("insufficient balance: current %v, requested %v", bal, amount)
	}
	if from == to {
		return nil
	}

	return l.Apply(
		Delta{from, new(big.Int).Neg(amount)},
		Delta{to, amount},
	)
}

// Apply applies a set of signed deltas. Deltas for the same owner are summed
// and each owner's resulting balance is range-checked before anything is
// written, so either every delta is applied or none is.
func (l *Ledger) Apply(deltas ...Delta) error {
	state, err := l.State()
	if err != nil {
		return err
	}

	var order []string
	net := map[string]*big.Int{}
	for _, d := range deltas {
		if d.Owner == "" {
			return errors.BadRequest.With("missing owner")
		}
		if d.Amount == nil {
			return errors.BadRequest.WithFormat("missing amount for %s", d.Owner)
		}
		if _, ok := net[d.Owner]; !ok {
			order = append(order, d.Owner)
			net[d.Owner] = new(big.Int)
		}
		net[d.Owner].Add(net[d.Owner], d.Amount)
	}

	type update struct {
		value   *values.Value[*big.Int]
		balance *big.Int
	}
	updates := make([]update, 0, len(order))
	supply := new(big.Int).Set(state.TotalSupply)
	for _, owner := range order {
		delta := net[owner]
		if delta.Sign() == 0 {
			continue
		}

		v := l.balance(owner)
		current, err := v.Get()
		if err != nil {
			return errors.UnknownError.Wrap(err)
		}
		if current == nil {
			current = new(big.Int)
		}

		u := new(big.Int).Add(current, delta)
		if u.Sign() < 0 {
			return errors.InsufficientBalance.WithFormat("insufficient balance: current %v, requested %v", current, new(big.Int).Neg(delta))
		}
		updates = append(updates, update{v, u})
		supply.Add(supply, delta)
	}
	if supply.Sign() < 0 {
		return errors.InternalError.WithFormat("ledger supply would be negative: %v", supply)
	}

	for _, u := range updates {
		if u.balance.Sign() == 0 {
			err = u.value.Delete()
		} else {
			err = u.value.Put(u.balance)
		}
		if err != nil {
			return errors.UnknownError.Wrap(err)
		}
	}

	state.TotalSupply = supply
	return l.state.Put(state)
}

// Accounts returns owners with a non-zero balance, in ascending order,
// starting after the given owner. A zero limit is unlimited.
func (l *Ledger) Accounts(startAfter string, limit uint) ([]string, error) {
	var owners []string
	err := l.store.ForEach(database.NewKey("balance"), false, func(key *database.Key, _ []byte) error {
		owner, ok := key.Get(1).(string)
		if !ok || startAfter != "" && owner <= startAfter {
			return nil
		}
		if limit == 0 || uint(len(owners)) < limit {
			owners = append(owners, owner)
		}
		return nil
	})
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}
	return owners, nil
}
