// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

var cmdBank = &cobra.Command{
	Use:   "bank",
	Short: "Operate on external balances",
}

var cmdBankFund = &cobra.Command{
	Use:   "fund [address] [coins]",
	Short: "Issue native coins to an address",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Fund(args[0], parseCoins(args[1]))
	}),
}

var cmdBankSend = &cobra.Command{
	Use:   "send [recipient] [coins]",
	Short: "Send external coins",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.BankSend{ToAddress: args[0], Amount: parseCoins(args[1])}
		return n.Executor.ExecuteNative(flagBank.From, msg)
	}),
}

var cmdBankBalance = &cobra.Command{
	Use:   "balance [address] [denom]",
	Short: "Show the external balances of an address",
	Args:  cobra.RangeArgs(1, 2),
	Run: runNode(func(n *node, args []string) (any, error) {
		if len(args) == 1 {
			return n.Executor.Balances(args[0])
		}
		v, err := n.Executor.Balance(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return protocol.Coins{protocol.NewCoin(args[1], v)}, nil
	}),
}

var cmdBankSupply = &cobra.Command{
	Use:   "supply [denom]",
	Short: "Show the issued supply of a denomination",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		v, err := n.Executor.Supply(args[0])
		if err != nil {
			return nil, err
		}
		return protocol.NewCoin(args[0], v), nil
	}),
}

var flagBank struct {
	From string
}

func init() {
	cmdMain.AddCommand(cmdBank)
	cmdBank.AddCommand(
		cmdBankFund,
		cmdBankSend,
		cmdBankBalance,
		cmdBankSupply,
	)

	cmdBankSend.Flags().StringVar(&flagBank.From, "from", "", "Address of the sender")
	requireFrom(cmdBankSend)
}
