// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"github.com/spf13/cobra"
)

var cmdContracts = &cobra.Command{
	Use:   "contracts",
	Short: "List instantiated contracts",
	Args:  cobra.NoArgs,
	Run: runNode(func(n *node, _ []string) (any, error) {
		return n.Executor.Contracts()
	}),
}

func init() {
	cmdMain.AddCommand(cmdContracts)
}
