// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package osmosis

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/internal/issuance"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

type supplyFunc func(string) (*big.Int, error)

func (f supplyFunc) Supply(denom string) (*big.Int, error) { return f(denom) }

func TestRegistered(t *testing.T) {
	c, err := issuance.New(Name)
	require.NoError(t, err)
	require.Equal(t, Name, c.Name())
	require.Contains(t, issuance.Backends(), Name)

	_, err = issuance.New("ethereum")
	require.ErrorIs(t, err, errors.NotFound)
}

func TestMessages(t *testing.T) {
	var c TokenFactory

	denom, msg, err := c.Create("contract1", "tmt")
	require.NoError(t, err)
	require.Equal(t, "factory/contract1/tmt", denom)
	require.Equal(t, &protocol.CreateDenom{Subdenom: "tmt"}, msg)

	msg, err = c.Mint("contract1", denom, big.NewInt(50), "alice")
	require.NoError(t, err)
	require.Equal(t, &protocol.MintDenom{Amount: protocol.NewCoin(denom, big.NewInt(50)), MintToAddress: "alice"}, msg)

	msg, err = c.Burn("contract1", denom, big.NewInt(25))
	require.NoError(t, err)
	require.Equal(t, &protocol.BurnDenom{Amount: protocol.NewCoin(denom, big.NewInt(25))}, msg)

	_, err = c.Mint("contract1", denom, big.NewInt(0), "alice")
	require.ErrorIs(t, err, errors.BadRequest)
	_, err = c.Burn("contract1", denom, nil)
	require.ErrorIs(t, err, errors.BadRequest)
	_, _, err = c.Create("contract1", "")
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestSupply(t *testing.T) {
	var c TokenFactory
	v, err := c.Supply(supplyFunc(func(denom string) (*big.Int, error) {
		require.Equal(t, "factory/contract1/tmt", denom)
		return big.NewInt(77), nil
	}), "factory/contract1/tmt")
	require.NoError(t, err)
	require.Equal(t, "77", v.String())

	_, err = c.Supply(supplyFunc(func(string) (*big.Int, error) {
		return nil, errors.NotReady.With("offline")
	}), "factory/contract1/tmt")
	require.ErrorIs(t, err, errors.NotReady)
}
