// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/registry"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

var cmdRegistry = &cobra.Command{
	Use:   "registry",
	Short: "Create and query denomination registries",
}

var cmdRegistryInstantiate = &cobra.Command{
	Use:   "instantiate",
	Short: "Create a registry",
	Args:  cobra.NoArgs,
	Run: runNode(func(n *node, _ []string) (any, error) {
		return n.Executor.Instantiate(flagRegistry.From, registry.Code, &protocol.InstantiateRegistry{}, nil)
	}),
}

var cmdRegistryRegister = &cobra.Command{
	Use:   "register [denom]",
	Short: "Register a denomination issued by the sender",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Execute(flagRegistry.From, registryAddress(n), &protocol.RegisterDenom{Denom: args[0]}, nil)
	}),
}

var cmdRegistryLookup = &cobra.Command{
	Use:   "lookup [denom]",
	Short: "Look up the contract behind a denomination",
	Args:  cobra.ExactArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		return n.Executor.Query(registryAddress(n), &protocol.QueryLookupDenom{Denom: args[0]})
	}),
}

var cmdRegistryList = &cobra.Command{
	Use:   "list",
	Short: "List registered denominations",
	Args:  cobra.NoArgs,
	Run: runNode(func(n *node, _ []string) (any, error) {
		return n.Executor.Query(registryAddress(n), &protocol.QueryListDenoms{Pagination: pagination()})
	}),
}

var cmdRegistryDetails = &cobra.Command{
	Use:   "details [denom]",
	Short: "Show the metadata and supply of one or all registered tokens",
	Args:  cobra.MaximumNArgs(1),
	Run: runNode(func(n *node, args []string) (any, error) {
		if len(args) > 0 {
			return n.Executor.Query(registryAddress(n), &protocol.QueryTokenDetails{Denom: args[0]})
		}
		return n.Executor.Query(registryAddress(n), &protocol.QueryTokensDetails{Pagination: pagination()})
	}),
}

var flagRegistry struct {
	From       string
	Registry   string
	StartAfter string
	Limit      uint
	Order      string
}

func init() {
	cmdMain.AddCommand(cmdRegistry)
	cmdRegistry.AddCommand(
		cmdRegistryInstantiate,
		cmdRegistryRegister,
		cmdRegistryLookup,
		cmdRegistryList,
		cmdRegistryDetails,
	)

	cmdRegistry.PersistentFlags().StringVar(&flagRegistry.Registry, "registry", "", "Registry address (defaults to the configured registry)")

	for _, cmd := range []*cobra.Command{cmdRegistryInstantiate, cmdRegistryRegister} {
		cmd.Flags().StringVar(&flagRegistry.From, "from", "", "Address of the sender")
		requireFrom(cmd)
	}

	for _, cmd := range []*cobra.Command{cmdRegistryList, cmdRegistryDetails} {
		cmd.Flags().StringVar(&flagRegistry.StartAfter, "start-after", "", "List denominations after this one")
		cmd.Flags().UintVar(&flagRegistry.Limit, "limit", 0, "Maximum number of entries (0 for all)")
		cmd.Flags().StringVar(&flagRegistry.Order, "order", "", "Sort order (asc, desc)")
	}
}

func registryAddress(n *node) string {
	if flagRegistry.Registry != "" {
		return flagRegistry.Registry
	}
	if n.Config.Registry.Address == "" {
		fatalf("no registry configured, use --registry")
	}
	return n.Config.Registry.Address
}

func pagination() protocol.Pagination {
	order, err := protocol.ParseOrder(flagRegistry.Order)
	check(err)
	return protocol.Pagination{
		StartAfter: flagRegistry.StartAfter,
		Limit:      flagRegistry.Limit,
		Order:      order,
	}
}
