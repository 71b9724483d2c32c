// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

var cmdToken = &cobra.Command{
	Use:   "token",
	Short: "Create, operate, and query tokens",
}

var cmdTokenInstantiate = &cobra.Command{
	Use:   "instantiate",
	Short: "Create a token",
	Args:  cobra.NoArgs,
	Run: runNode(func(n *node, _ []string) (any, error) {
		msg := &protocol.InstantiateToken{
			Name:        flagToken.Name,
			Symbol:      flagToken.Symbol,
			Decimals:    flagToken.Decimals,
			Registry:    flagToken.Registry,
			Materialize: flagToken.Materialize,
			Subdenom:    flagToken.Subdenom,
		}
		if msg.Registry == "" {
			msg.Registry = n.Config.Registry.Address
		}
		if flagToken.Minter != "" {
			msg.Mint = &protocol.MinterInfo{Minter: flagToken.Minter}
			if flagToken.Cap != "" {
				msg.Mint.Cap = parseAmount(flagToken.Cap)
			}
		}
		for _, b := range flagToken.Balances {
			addr, amt, ok := strings.Cut(b, "=")
			if !ok {
				fatalf("invalid balance %q: want address=amount", b)
			}
			msg.InitialBalances = append(msg.InitialBalances, protocol.Balance{Address: addr, Amount: parseAmount(amt)})
		}
		return n.Executor.Instantiate(flagToken.From, token.Code, msg, nil)
	}),
}

var cmdTokenTransfer = &cobra.Command{
	Use:   "transfer [token] [recipient] [amount]",
	Short: "Transfer ledger units",
	Args:  cobra.ExactArgs(3),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.Transfer{Recipient: args[1], Amount: parseAmount(args[2])}
		return n.Executor.Execute(flagToken.From, args[0], msg, nil)
	}),
}

var cmdTokenToExternal = &cobra.Command{
	Use:   "to-external [token] [amount]",
	Short: "Transmute ledger units into external units",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.TransmuteIntoExternal{Amount: parseAmount(args[1])}
		return n.Executor.Execute(flagToken.From, args[0], msg, nil)
	}),
}

var cmdTokenToLedger = &cobra.Command{
	Use:   "to-ledger [token] [amount]",
	Short: "Transmute external units into ledger units",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		funds, err := externalFunds(n, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return n.Executor.Execute(flagToken.From, args[0], &protocol.TransmuteIntoLedger{}, funds)
	}),
}

var cmdTokenMint = &cobra.Command{
	Use:   "mint [token] [recipient] [amount]",
	Short: "Mint ledger or external units",
	Args:  cobra.ExactArgs(3),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.Mint{Recipient: args[1], Amount: parseAmount(args[2]), AsExternal: flagToken.External}
		return n.Executor.Execute(flagToken.From, args[0], msg, nil)
	}),
}

var cmdTokenBurn = &cobra.Command{
	Use:   "burn [token] [amount]",
	Short: "Burn ledger units, or external units with --external",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		if !flagToken.External {
			msg := &protocol.Burn{Amount: parseAmount(args[1])}
			return n.Executor.Execute(flagToken.From, args[0], msg, nil)
		}
		funds, err := externalFunds(n, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return n.Executor.Execute(flagToken.From, args[0], &protocol.Burn{}, funds)
	}),
}

var cmdTokenMaterialize = &cobra.Command{
	Use:   "materialize [token]",
	Short: "Create the external representation of a token",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.MaterializeExternal{Subdenom: flagToken.Subdenom}
		return n.Executor.Execute(flagToken.From, args[0], msg, nil)
	}),
}

var cmdTokenRegister = &cobra.Command{
	Use:   "register [token] [registry]",
	Short: "Register the external denomination of a token with a registry",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		msg := &protocol.RegisterWithRegistry{Registry: args[1]}
		return n.Executor.Execute(flagToken.From, args[0], msg, nil)
	}),
}

var cmdTokenBalance = &cobra.Command{
	Use:   "balance [token] [address]",
	Short: "Query the ledger balance of an address",
	Args:  cobra.ExactArgs(2),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(args[0], &protocol.QueryBalance{Address: args[1]})
	}),
}

var cmdTokenInfo = &cobra.Command{
	Use:   "info [token]",
	Short: "Query the token metadata and combined supply",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(args[0], &protocol.QueryTokenInfo{})
	}),
}

var cmdTokenMinter = &cobra.Command{
	Use:   "minter [token]",
	Short: "Query the mint authority",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(args[0], &protocol.QueryMinter{})
	}),
}

var cmdTokenDenom = &cobra.Command{
	Use:   "denom [token]",
	Short: "Query the external denomination",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(args[0], &protocol.QueryExternalDenom{})
	}),
}

var cmdTokenSupply = &cobra.Command{
	Use:   "supply [token]",
	Short: "Query the ledger, external, and combined supply",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(args[0], &protocol.QuerySupplyDetails{})
	}),
}

var cmdTokenAccounts = &cobra.Command{
	Use:   "accounts [token]",
	Short: "List the owners of ledger units",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		q := &protocol.QueryAllAccounts{StartAfter: flagToken.StartAfter, Limit: flagToken.Limit}
		return n.Executor.Query(args[0], q)
	}),
}

var flagToken struct {
	From        string
	Name        string
	Symbol      string
	Decimals    uint8
	Minter      string
	Cap         string
	Balances    []string
	Registry    string
	Materialize bool
	Subdenom    string
	External    bool
	StartAfter  string
	Limit       uint
}

func init() {
	cmdMain.AddCommand(cmdToken)
	cmdToken.AddCommand(
		cmdTokenInstantiate,
		cmdTokenTransfer,
		cmdTokenToExternal,
		cmdTokenToLedger,
		cmdTokenMint,
		cmdTokenBurn,
		cmdTokenMaterialize,
		cmdTokenRegister,
		cmdTokenBalance,
		cmdTokenInfo,
		cmdTokenMinter,
		cmdTokenDenom,
		cmdTokenSupply,
		cmdTokenAccounts,
	)

	for _, cmd := range []*cobra.Command{
		cmdTokenInstantiate,
		cmdTokenTransfer,
		cmdTokenToExternal,
		cmdTokenToLedger,
		cmdTokenMint,
		cmdTokenBurn,
		cmdTokenMaterialize,
		cmdTokenRegister,
	} {
		cmd.Flags().StringVar(&flagToken.From, "from", "", "Address of the sender")
		requireFrom(cmd)
	}

	f := cmdTokenInstantiate.Flags()
	f.StringVar(&flagToken.Name, "name", "", "Token name")
	f.StringVar(&flagToken.Symbol, "symbol", "", "Token symbol")
	f.Uint8Var(&flagToken.Decimals, "decimals", 6, "Number of decimal places")
	f.StringVar(&flagToken.Minter, "minter", "", "Mint authority")
	f.StringVar(&flagToken.Cap, "cap", "", "Cap on the combined supply")
	f.StringArrayVar(&flagToken.Balances, "balance", nil, "Initial balance as address=amount (repeatable)")
	f.StringVar(&flagToken.Registry, "registry", "", "Registry to notify when the external representation is created")
	f.BoolVar(&flagToken.Materialize, "materialize", false, "Create the external representation immediately")
	_ = cmdTokenInstantiate.MarkFlagRequired("name")
	_ = cmdTokenInstantiate.MarkFlagRequired("symbol")

	for _, cmd := range []*cobra.Command{cmdTokenInstantiate, cmdTokenMaterialize} {
		cmd.Flags().StringVar(&flagToken.Subdenom, "subdenom", "", "Subdenomination of the external representation (defaults to the lower-cased symbol)")
	}
	cmdTokenMint.Flags().BoolVar(&flagToken.External, "external", false, "Mint external units")
	cmdTokenBurn.Flags().BoolVar(&flagToken.External, "external", false, "Burn external units held by the sender")
	cmdTokenAccounts.Flags().StringVar(&flagToken.StartAfter, "start-after", "", "List owners after this one")
	cmdTokenAccounts.Flags().UintVar(&flagToken.Limit, "limit", 0, "Maximum number of owners (0 for all)")
}

// externalFunds returns the given amount of the token's external units.
func externalFunds(n *node, tok, amt string) (protocol.Coins, error) {
	v, err := n.Executor.Query(tok, &protocol.QueryExternalDenom{})
	if err != nil {
		return nil, err
	}
	denom := v.(*protocol.ExternalDenomResponse).Denom
	return protocol.Coins{protocol.NewCoin(denom, parseAmount(amt))}, nil
}
