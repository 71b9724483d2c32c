// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"math/big"
	"strings"
)

// QueryType is the type of a [Query].
type QueryType uint64

const (
	QueryTypeUnknown QueryType = iota
	QueryTypeBalance
	QueryTypeTokenInfo
	QueryTypeMinter
	QueryTypeExternalDenom
	QueryTypeSupplyDetails
	QueryTypeAllAccounts
	QueryTypeLookupDenom
	QueryTypeListDenoms
	QueryTypeTokenDetails
	QueryTypeTokensDetails
)

var queryTypeNames = map[QueryType]string{
	QueryTypeBalance:       "balance",
	QueryTypeTokenInfo:     "tokenInfo",
	QueryTypeMinter:        "minter",
	QueryTypeExternalDenom: "externalDenom",
	QueryTypeSupplyDetails: "supplyDetails",
	QueryTypeAllAccounts:   "allAccounts",
	QueryTypeLookupDenom:   "lookupDenom",
	QueryTypeListDenoms:    "listDenoms",
	QueryTypeTokenDetails:  "tokenDetails",
	QueryTypeTokensDetails: "tokensDetails",
}

func (t QueryType) String() string {
	if s, ok := queryTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("QueryType:%d", uint64(t))
}

// Query is a read-only request answered by a contract.
type Query interface {
	QueryType() QueryType
}

// QueryBalance returns the ledger balance of an address.
type QueryBalance struct {
	Address string `json:"address" yaml:"address"`
}

// QueryTokenInfo returns the token metadata. The reported total supply is the
// combined supply.
type QueryTokenInfo struct{}

// QueryMinter returns the mint authority.
type QueryMinter struct{}

// QueryExternalDenom returns the external identifier.
type QueryExternalDenom struct{}

// QuerySupplyDetails returns the ledger, external, and combined supply.
type QuerySupplyDetails struct{}

// QueryAllAccounts lists the owners of non-zero ledger balances.
type QueryAllAccounts struct {
	StartAfter string `json:"startAfter,omitempty" yaml:"startAfter,omitempty"`
	Limit      uint   `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// QueryLookupDenom returns the ledger instance registered for a denomination.
type QueryLookupDenom struct {
	Denom string `json:"denom" yaml:"denom"`
}

// QueryListDenoms lists registry entries.
type QueryListDenoms struct {
	Pagination
}

// QueryTokenDetails returns the details of a registered token.
type QueryTokenDetails struct {
	Denom string `json:"denom" yaml:"denom"`
}

// QueryTokensDetails returns the details of registered tokens.
type QueryTokensDetails struct {
	Pagination
}

func (*QueryBalance) QueryType() QueryType       { return QueryTypeBalance }
func (*QueryTokenInfo) QueryType() QueryType     { return QueryTypeTokenInfo }
func (*QueryMinter) QueryType() QueryType        { return QueryTypeMinter }
func (*QueryExternalDenom) QueryType() QueryType { return QueryTypeExternalDenom }
func (*QuerySupplyDetails) QueryType() QueryType { return QueryTypeSupplyDetails }
func (*QueryAllAccounts) QueryType() QueryType   { return QueryTypeAllAccounts }
func (*QueryLookupDenom) QueryType() QueryType   { return QueryTypeLookupDenom }
func (*QueryListDenoms) QueryType() QueryType    { return QueryTypeListDenoms }
func (*QueryTokenDetails) QueryType() QueryType  { return QueryTypeTokenDetails }
func (*QueryTokensDetails) QueryType() QueryType { return QueryTypeTokensDetails }

// Order is the direction of a listing.
type Order uint64

const (
	// OrderUnspecified lists in the registry's default order, which is
	// descending.
	OrderUnspecified Order = iota
	OrderAscending
	OrderDescending
)

func (o Order) String() string {
	switch o {
	case OrderAscending:
		return "ascending"
	case OrderDescending:
		return "descending"
	default:
		return "unspecified"
	}
}

// ParseOrder parses asc, ascending, desc, descending, or the empty string.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "":
		return OrderUnspecified, nil
	case "asc", "ascending":
		return OrderAscending, nil
	case "desc", "descending":
		return OrderDescending, nil
	}
	return 0, fmt.Errorf("invalid order %q", s)
}

func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Order) UnmarshalText(b []byte) error {
	if string(b) == "unspecified" {
		*o = OrderUnspecified
		return nil
	}
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Pagination selects a page of a listing. StartAfter is exclusive. A zero
// Limit is unlimited.
type Pagination struct {
	StartAfter string `json:"startAfter,omitempty" yaml:"startAfter,omitempty"`
	Limit      uint   `json:"limit,omitempty" yaml:"limit,omitempty"`
	Order      Order  `json:"order,omitempty" yaml:"order,omitempty"`
}

// BalanceResponse is the response to [QueryBalance].
type BalanceResponse struct {
	Balance *big.Int `json:"balance" yaml:"balance"`
}

// TokenInfoResponse is the response to [QueryTokenInfo].
type TokenInfoResponse struct {
	Name        string   `json:"name" yaml:"name"`
	Symbol      string   `json:"symbol" yaml:"symbol"`
	Decimals    uint8    `json:"decimals" yaml:"decimals"`
	TotalSupply *big.Int `json:"totalSupply" yaml:"totalSupply"`
}

// MinterResponse is the response to [QueryMinter]. It is nil if the token has
// no mint authority.
type MinterResponse struct {
	Minter string   `json:"minter" yaml:"minter"`
	Cap    *big.Int `json:"cap,omitempty" yaml:"cap,omitempty"`
}

// ExternalDenomResponse is the response to [QueryExternalDenom].
type ExternalDenomResponse struct {
	Denom string `json:"denom" yaml:"denom"`
}

// SupplyDetails is the response to [QuerySupplyDetails].
type SupplyDetails struct {
	Ledger   *big.Int `json:"ledger" yaml:"ledger"`
	External *big.Int `json:"external" yaml:"external"`
	Total    *big.Int `json:"total" yaml:"total"`
}

// AccountsResponse is the response to [QueryAllAccounts].
type AccountsResponse struct {
	Accounts []string `json:"accounts" yaml:"accounts"`
}

// DenomEntry is a registry entry.
type DenomEntry struct {
	Denom    string `json:"denom" yaml:"denom"`
	Contract string `json:"contract" yaml:"contract"`
}

// ListDenomsResponse is the response to [QueryListDenoms].
type ListDenomsResponse struct {
	Entries []DenomEntry `json:"entries" yaml:"entries"`
}

// TokenDetails is the response to [QueryTokenDetails].
type TokenDetails struct {
	Contract       string   `json:"contract" yaml:"contract"`
	Denom          string   `json:"denom" yaml:"denom"`
	Name           string   `json:"name" yaml:"name"`
	Symbol         string   `json:"symbol" yaml:"symbol"`
	Decimals       uint8    `json:"decimals" yaml:"decimals"`
	TotalSupply    *big.Int `json:"totalSupply" yaml:"totalSupply"`
	LedgerSupply   *big.Int `json:"ledgerSupply" yaml:"ledgerSupply"`
	ExternalSupply *big.Int `json:"externalSupply" yaml:"externalSupply"`
}

// TokensDetailsResponse is the response to [QueryTokensDetails].
type TokensDetailsResponse struct {
	Tokens []*TokenDetails `json:"tokens" yaml:"tokens"`
}

// QueryTypeByName returns the query type with the given name.
func QueryTypeByName(name string) (QueryType, bool) {
	for typ, s := range queryTypeNames {
		if strings.EqualFold(s, name) {
			return typ, true
		}
	}
	return 0, false
}

// NewQuery returns a new, empty query of the given type.
func NewQuery(typ QueryType) (Query, error) {
	switch typ {
	case QueryTypeBalance:
		return new(QueryBalance), nil
	case QueryTypeTokenInfo:
		return new(QueryTokenInfo), nil
	case QueryTypeMinter:
		return new(QueryMinter), nil
	case QueryTypeExternalDenom:
		return new(QueryExternalDenom), nil
	case QueryTypeSupplyDetails:
		return new(QuerySupplyDetails), nil
	case QueryTypeAllAccounts:
		return new(QueryAllAccounts), nil
	case QueryTypeLookupDenom:
		return new(QueryLookupDenom), nil
	case QueryTypeListDenoms:
		return new(QueryListDenoms), nil
	case QueryTypeTokenDetails:
		return new(QueryTokenDetails), nil
	case QueryTypeTokensDetails:
		return new(QueryTokensDetails), nil
	}
	return nil, fmt.Errorf("unknown query type %v", typ)
}
