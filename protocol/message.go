// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"math/big"
)

// MessageType is the type of a [Message].
type MessageType uint64

const (
	MessageTypeUnknown MessageType = iota
	MessageTypeInstantiateToken
	MessageTypeTransfer
	MessageTypeTransmuteIntoExternal
	MessageTypeTransmuteIntoLedger
	MessageTypeMint
	MessageTypeBurn
	MessageTypeMaterializeExternal
	MessageTypeRegisterWithRegistry
	MessageTypeInstantiateRegistry
	MessageTypeRegisterDenom
	MessageTypeExecuteContract
	MessageTypeBankSend
	MessageTypeCreateDenom
	MessageTypeMintDenom
	MessageTypeBurnDenom
)

var messageTypeNames = map[MessageType]string{
	MessageTypeInstantiateToken:      "instantiateToken",
	MessageTypeTransfer:              "transfer",
	MessageTypeTransmuteIntoExternal: "transmuteIntoExternal",
	MessageTypeTransmuteIntoLedger:   "transmuteIntoLedger",
	MessageTypeMint:                  "mint",
	MessageTypeBurn:                  "burn",
	MessageTypeMaterializeExternal:   "materializeExternal",
	MessageTypeRegisterWithRegistry:  "registerWithRegistry",
	MessageTypeInstantiateRegistry:   "instantiateRegistry",
	MessageTypeRegisterDenom:         "registerDenom",
	MessageTypeExecuteContract:       "executeContract",
	MessageTypeBankSend:              "bankSend",
	MessageTypeCreateDenom:           "createDenom",
	MessageTypeMintDenom:             "mintDenom",
	MessageTypeBurnDenom:             "burnDenom",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MessageType:%d", uint64(t))
}

func (t MessageType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Message is a request executed by a contract or a native module.
type Message interface {
	Type() MessageType
}

// InstantiateToken creates a token ledger instance.
type InstantiateToken struct {
	Name            string      `json:"name" yaml:"name"`
	Symbol          string      `json:"symbol" yaml:"symbol"`
	Decimals        uint8       `json:"decimals" yaml:"decimals"`
	InitialBalances []Balance   `json:"initialBalances,omitempty" yaml:"initialBalances,omitempty"`
	Mint            *MinterInfo `json:"mint,omitempty" yaml:"mint,omitempty"`

	// Registry is notified when the external representation is created.
	Registry string `json:"registry,omitempty" yaml:"registry,omitempty"`

	// Materialize creates the external representation during instantiation.
	Materialize bool   `json:"materialize,omitempty" yaml:"materialize,omitempty"`
	Subdenom    string `json:"subdenom,omitempty" yaml:"subdenom,omitempty"`
}

// Balance is an owner and an amount of ledger units.
type Balance struct {
	Address string   `json:"address" yaml:"address"`
	Amount  *big.Int `json:"amount" yaml:"amount"`
}

// Transfer moves ledger units from the sender to the recipient.
type Transfer struct {
	Recipient string   `json:"recipient" yaml:"recipient"`
	Amount    *big.Int `json:"amount" yaml:"amount"`
}

// TransmuteIntoExternal converts the sender's ledger units into external
// units.
type TransmuteIntoExternal struct {
	Amount *big.Int `json:"amount" yaml:"amount"`
}

// TransmuteIntoLedger converts the attached external units into ledger units
// credited to the sender.
type TransmuteIntoLedger struct{}

// Mint creates new units for the recipient, as ledger units or, if
// AsExternal is set, as external units.
type Mint struct {
	Recipient  string   `json:"recipient" yaml:"recipient"`
	Amount     *big.Int `json:"amount" yaml:"amount"`
	AsExternal bool     `json:"asExternal,omitempty" yaml:"asExternal,omitempty"`
}

// Burn destroys units. If funds are attached, the attached external units are
// burned and Amount is ignored. Otherwise Amount ledger units are burned from
// the sender.
type Burn struct {
	Amount *big.Int `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// MaterializeExternal creates the external representation of a token. An
// empty Subdenom defaults to the lower-cased symbol.
type MaterializeExternal struct {
	Subdenom string `json:"subdenom,omitempty" yaml:"subdenom,omitempty"`
}

// RegisterWithRegistry asks a registry to record the token's external
// identifier.
type RegisterWithRegistry struct {
	Registry string `json:"registry" yaml:"registry"`
}

// InstantiateRegistry creates a registry instance.
type InstantiateRegistry struct{}

// RegisterDenom records the sender as the ledger instance for Denom.
type RegisterDenom struct {
	Denom string `json:"denom" yaml:"denom"`
}

// ExecuteContract executes a message on a contract, attaching funds.
type ExecuteContract struct {
	Contract string  `json:"contract" yaml:"contract"`
	Msg      Message `json:"msg" yaml:"msg"`
	Funds    Coins   `json:"funds,omitempty" yaml:"funds,omitempty"`
}

// BankSend moves external units from the sender to the recipient.
type BankSend struct {
	ToAddress string `json:"toAddress" yaml:"toAddress"`
	Amount    Coins  `json:"amount" yaml:"amount"`
}

// CreateDenom creates the denomination factory/<sender>/<subdenom> with the
// sender as its admin.
type CreateDenom struct {
	Subdenom string `json:"subdenom" yaml:"subdenom" validate:"subdenom"`
}

// MintDenom mints external units. The sender must be the denomination's
// admin.
type MintDenom struct {
	Amount        Coin   `json:"amount" yaml:"amount"`
	MintToAddress string `json:"mintToAddress" yaml:"mintToAddress"`
}

// BurnDenom burns external units held by the sender. The sender must be the
// denomination's admin.
type BurnDenom struct {
	Amount Coin `json:"amount" yaml:"amount"`
}

func (*InstantiateToken) Type() MessageType      { return MessageTypeInstantiateToken }
func (*Transfer) Type() MessageType              { return MessageTypeTransfer }
func (*TransmuteIntoExternal) Type() MessageType { return MessageTypeTransmuteIntoExternal }
func (*TransmuteIntoLedger) Type() MessageType   { return MessageTypeTransmuteIntoLedger }
func (*Mint) Type() MessageType                  { return MessageTypeMint }
func (*Burn) Type() MessageType                  { return MessageTypeBurn }
func (*MaterializeExternal) Type() MessageType   { return MessageTypeMaterializeExternal }
func (*RegisterWithRegistry) Type() MessageType  { return MessageTypeRegisterWithRegistry }
func (*InstantiateRegistry) Type() MessageType   { return MessageTypeInstantiateRegistry }
func (*RegisterDenom) Type() MessageType         { return MessageTypeRegisterDenom }
func (*ExecuteContract) Type() MessageType       { return MessageTypeExecuteContract }
func (*BankSend) Type() MessageType              { return MessageTypeBankSend }
func (*CreateDenom) Type() MessageType           { return MessageTypeCreateDenom }
func (*MintDenom) Type() MessageType             { return MessageTypeMintDenom }
func (*BurnDenom) Type() MessageType             { return MessageTypeBurnDenom }
