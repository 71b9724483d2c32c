// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"math/big"
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// interactive is set by the console. Interactive commands report errors
// instead of exiting, and share one open node.
var interactive struct {
	enabled bool
	node    *node
}

// runNode returns a cobra Run function that opens the node, calls fn, and
// prints the result.
func runNode(fn func(n *node, args []string) (any, error)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		var v any
		var err error
		if interactive.node != nil {
			v, err = fn(interactive.node, args)
		} else {
			err = withNode(func(n *node) error {
				v, err = fn(n, args)
				return err
			})
		}
		if err == nil {
			err = writeOutput(cmd.OutOrStdout(), v)
		}
		if err == nil {
			return
		}
		if interactive.enabled {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		fatalf("%v", err)
	}
}

func parseAmount(s string) *big.Int {
	v, err := protocol.ParseAmount(s)
	checkf(err, "amount")
	return v
}

func parseCoins(s string) protocol.Coins {
	v, err := protocol.ParseCoins(s)
	checkf(err, "coins")
	return v
}

func parseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 64)
	checkf(err, "invalid number %q", s)
	return uint(v)
}

func requireFrom(cmd *cobra.Command) {
	_ = cmd.MarkFlagRequired("from")
}
