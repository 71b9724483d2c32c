// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/config"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Initialize the work directory",
	Args:  cobra.NoArgs,
	Run:   initWorkDir,
}

var flagInit struct {
	Storage  string
	Backend  string
	Registry string
	Reset    bool
}

func init() {
	cmdMain.AddCommand(cmdInit)

	cmdInit.Flags().StringVar(&flagInit.Storage, "storage", string(config.BadgerStorage), "Storage backend (badger, bolt, sqlite, memory)")
	cmdInit.Flags().StringVar(&flagInit.Backend, "backend", "osmosis", "Issuance backend for new tokens")
	cmdInit.Flags().StringVar(&flagInit.Registry, "registry", "", "Default registry for new tokens")
	cmdInit.Flags().BoolVar(&flagInit.Reset, "reset", false, "Delete any existing configuration and data")
}

func initWorkDir(*cobra.Command, []string) {
	dir := flagMain.WorkDir
	if flagInit.Reset {
		for _, sub := range []string{"config", "data"} {
			checkf(os.RemoveAll(filepath.Join(dir, sub)), "reset")
		}
	}

	_, err := os.Stat(filepath.Join(dir, "config", "transmute.toml"))
	if err == nil {
		fatalf("%s is already initialized, use --reset to start over", dir)
	}

	cfg := config.Default(dir)
	cfg.Storage.Type = config.StorageType(flagInit.Storage)
	switch cfg.Storage.Type {
	case config.BoltStorage:
		cfg.Storage.Path = filepath.Join("data", "transmute.bolt")
	case config.SQLiteStorage:
		cfg.Storage.Path = filepath.Join("data", "transmute.sqlite")
	}
	cfg.Issuance.Backend = flagInit.Backend
	cfg.Registry.Address = flagInit.Registry
	checkf(cfg.Validate(), "invalid configuration")
	checkf(config.Store(cfg), "store configuration")

	fmt.Printf("Initialized %s (%s storage)\n", dir, cfg.Storage.Type)
}
