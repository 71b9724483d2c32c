// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"strings"

	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
)

// FactoryScheme is the scheme segment of token-factory denominations.
const FactoryScheme = "factory"

// FactoryDenom returns the token-factory denomination for the issuer and
// subdenomination.
func FactoryDenom(issuer, subdenom string) string {
	return FactoryScheme + "/" + issuer + "/" + subdenom
}

// DenomParts are the segments of an external identifier.
type DenomParts struct {
	Scheme   string
	Issuer   string
	Subdenom string
}

// SplitDenom splits an identifier of the form scheme/issuer/subdenom. It does
// not check the scheme.
func SplitDenom(denom string) (DenomParts, error) {
	parts := strings.Split(denom, "/")
	if len(parts) != 3 {
		return DenomParts{}, errors.MalformedIdentifier.WithFormat("invalid denom %q: expected 3 segments, got %d", denom, len(parts))
	}
	return DenomParts{Scheme: parts[0], Issuer: parts[1], Subdenom: parts[2]}, nil
}
