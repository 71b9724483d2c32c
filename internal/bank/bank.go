// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package bank implements the external issuance service: per-address balances
// of external units, per-denomination supply, and a token factory that lets an
// address create and administer its own denominations.
package bank

import (
	"math/big"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/pkg/database"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/values"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

type Bank struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Bank {
	return &Bank{logger: logger.With().Str("module", "bank").Logger()}
}

func balanceKey(addr, denom string) *database.Key {
	return database.NewKey("bank", "balance", addr, denom)
}

func (b *Bank) balance(store keyvalue.Store, addr, denom string) *values.Value[*big.Int] {
	return values.NewOptionalValue[*big.Int](store, balanceKey(addr, denom), "balance")
}

func (b *Bank) supply(store keyvalue.Store, denom string) *values.Value[*big.Int] {
	return values.NewOptionalValue[*big.Int](store, database.NewKey("bank", "supply", denom), "supply")
}

func (b *Bank) admin(store keyvalue.Store, denom string) *values.Value[string] {
	return values.NewValue[string](store, database.NewKey("bank", "admin", denom), "denom "+denom)
}

// Balance returns the amount of denom held by addr.
func (b *Bank) Balance(store keyvalue.Store, addr, denom string) (*big.Int, error) {
	v, err := b.balance(store, addr, denom).Get()
	return orZero(v), errors.UnknownError.Wrap(err)
}

// Balances returns every non-zero balance of addr.
func (b *Bank) Balances(store keyvalue.Store, addr string) (protocol.Coins, error) {
	var coins protocol.Coins
	err := store.ForEach(database.NewKey("bank", "balance", addr), false, func(key *database.Key, _ []byte) error {
		denom, _ := key.Get(3).(string)
		amount, err := b.Balance(store, addr, denom)
		if err != nil {
			return err
		}
		coins = append(coins, protocol.NewCoin(denom, amount))
		return nil
	})
	return coins, errors.UnknownError.Wrap(err)
}

// Supply returns the total issued amount of denom.
func (b *Bank) Supply(store keyvalue.Store, denom string) (*big.Int, error) {
	v, err := b.supply(store, denom).Get()
	return orZero(v), errors.UnknownError.Wrap(err)
}

// Admin returns the admin of a token-factory denomination.
func (b *Bank) Admin(store keyvalue.Store, denom string) (string, error) {
	return b.admin(store, denom).Get()
}

// Send moves coins from one address to another.
func (b *Bank) Send(store keyvalue.Store, from, to string, coins protocol.Coins) error {
	err := coins.Validate()
	if err != nil {
		return err
	}

	for _, c := range coins {
		err = b.addBalance(store, from, c.Denom, new(big.Int).Neg(c.Amount))
		if err != nil {
			return err
		}
		err = b.addBalance(store, to, c.Denom, c.Amount)
		if err != nil {
			return err
		}
	}

	b.logger.Debug().Str("from", from).Str("to", to).Stringer("amount", coins).Msg("Send")
	return nil
}

// Fund issues coins to an address outside of the token factory. It is used
// for genesis allocations of native denominations. Token-factory
// denominations can only be issued by their admin.
func (b *Bank) Fund(store keyvalue.Store, addr string, coins protocol.Coins) error {
	err := coins.Validate()
	if err != nil {
		return err
	}
	for _, c := range coins {
		if p, err := protocol.SplitDenom(c.Denom); err == nil && p.Scheme == protocol.FactoryScheme {
			return errors.NotAllowed.WithFormat("cannot fund %s: token-factory denominations are minted by their admin", c.Denom)
		}
	}
	for _, c := range coins {
		err = b.issue(store, addr, c.Denom, c.Amount)
		if err != nil {
			return err
		}
	}
	return nil
}

// Handle executes a bank or token-factory message on behalf of sender.
func (b *Bank) Handle(store keyvalue.Store, sender string, msg protocol.Message) error {
	switch msg := msg.(type) {
	case *protocol.BankSend:
		return b.Send(store, sender, msg.ToAddress, msg.Amount)
	case *protocol.CreateDenom:
		return b.createDenom(store, sender, msg)
	case *protocol.MintDenom:
		return b.mintDenom(store, sender, msg)
	case *protocol.BurnDenom:
		return b.burnDenom(store, sender, msg)
	default:
		return errors.BadRequest.WithFormat("bank cannot handle %v", msg.Type())
	}
}

func (b *Bank) createDenom(store keyvalue.Store, sender string, msg *protocol.CreateDenom) error {
	if err := protocol.Validate(msg); err != nil {
		return errors.BadRequest.WithFormat("invalid subdenom %q: %w", msg.Subdenom, err)
	}
	if msg.Subdenom == "" {
		return errors.BadRequest.With("invalid subdenom: empty")
	}

	denom := protocol.FactoryDenom(sender, msg.Subdenom)
	admin := b.admin(store, denom)
	ok, err := admin.Exists()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	if ok {
		return errors.Conflict.WithFormat("denom %s already exists", denom)
	}

	err = admin.Put(sender)
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	b.logger.Debug().Str("denom", denom).Str("admin", sender).Msg("Create denom")
	return nil
}

func (b *Bank) mintDenom(store keyvalue.Store, sender string, msg *protocol.MintDenom) error {
	err := msg.Amount.Validate()
	if err != nil {
		return err
	}
	if msg.MintToAddress == "" {
		return errors.BadRequest.With("missing mint recipient")
	}
	err = b.checkAdmin(store, sender, msg.Amount.Denom)
	if err != nil {
		return err
	}

	err = b.issue(store, msg.MintToAddress, msg.Amount.Denom, msg.Amount.Amount)
	if err != nil {
		return err
	}

	b.logger.Debug().Str("to", msg.MintToAddress).Stringer("amount", msg.Amount).Msg("Mint")
	return nil
}

func (b *Bank) burnDenom(store keyvalue.Store, sender string, msg *protocol.BurnDenom) error {
	err := msg.Amount.Validate()
	if err != nil {
		return err
	}
	err = b.checkAdmin(store, sender, msg.Amount.Denom)
	if err != nil {
		return err
	}

	neg := new(big.Int).Neg(msg.Amount.Amount)
	err = b.addBalance(store, sender, msg.Amount.Denom, neg)
	if err != nil {
		return err
	}
	err = b.addSupply(store, msg.Amount.Denom, neg)
	if err != nil {
		return err
	}

	b.logger.Debug().Str("from", sender).Stringer("amount", msg.Amount).Msg("Burn")
	return nil
}

func (b *Bank) checkAdmin(store keyvalue.Store, sender, denom string) error {
	admin, err := b.Admin(store, denom)
	switch {
	case err == nil:
	case errors.Is(err, errors.NotFound):
		return errors.NotFound.WithFormat("denom %s does not exist", denom)
	default:
		return errors.UnknownError.Wrap(err)
	}
	if admin != sender {
		return errors.Unauthorized.WithFormat("%s is not the admin of %s", sender, denom)
	}
	return nil
}

func (b *Bank) issue(store keyvalue.Store, addr, denom string, amount *big.Int) error {
	err := b.addBalance(store, addr, denom, amount)
	if err != nil {
		return err
	}
	return b.addSupply(store, denom, amount)
}

func (b *Bank) addBalance(store keyvalue.Store, addr, denom string, delta *big.Int) error {
	v := b.balance(store, addr, denom)
	bal, err := v.Get()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	bal = orZero(bal)

	u := new(big.Int).Add(bal, delta)
	if u.Sign() < 0 {
		return errors.InsufficientBalance.WithFormat("insufficient %s balance: current %v, requested %v", denom, bal, new(big.Int).Neg(delta))
	}
	if u.Sign() == 0 {
		return errors.UnknownError.Wrap(v.Delete())
	}
	return errors.UnknownError.Wrap(v.Put(u))
}

func (b *Bank) addSupply(store keyvalue.Store, denom string, delta *big.Int) error {
	v := b.supply(store, denom)
	s, err := v.Get()
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}

	u := new(big.Int).Add(orZero(s), delta)
	if u.Sign() < 0 {
		return errors.InternalError.WithFormat("supply of %s would be negative", denom)
	}
	return errors.UnknownError.Wrap(v.Put(u))
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
