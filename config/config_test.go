// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	// Create
	cfg := Default(dir)
	cfg.Storage.Type = SQLiteStorage
	cfg.Registry.Address = "contract1"

	// Store
	require.NoError(t, Store(cfg))

	// Load
	lcfg, err := Load(dir)
	require.NoError(t, err)

	// Should be equal
	require.Equal(t, cfg, lcfg)
}

func TestEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Store(Default(dir)))

	t.Setenv("TRANSMUTE_STORAGE_TYPE", "memory")
	t.Setenv("TRANSMUTE_API_LISTEN_ADDRESS", "0.0.0.0:9000")
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, MemoryStorage, cfg.Storage.Type)
	require.Equal(t, "0.0.0.0:9000", cfg.API.ListenAddress)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default(t.TempDir()).Validate())

	cases := map[string]func(*Config){
		"StorageType": func(c *Config) { c.Storage.Type = "etcd" },
		"StoragePath": func(c *Config) { c.Storage.Path = "" },
		"LogLevel":    func(c *Config) { c.Logging.Level = "error;executor=loud" },
		"LogFormat":   func(c *Config) { c.Logging.Format = "xml" },
		"Backend":     func(c *Config) { c.Issuance.Backend = "" },
		"Schedule":    func(c *Config) { c.API.SupplySchedule = "every minute" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default(t.TempDir())
			mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestLogLevel(t *testing.T) {
	l := LogLevel{}.Parse("error;executor=info;bank=debug")
	require.Equal(t, "error", l.Default)
	require.Equal(t, [][2]string{{"executor", "info"}, {"bank", "debug"}}, l.Modules)
	require.Equal(t, "error;executor=info;bank=debug", l.String())
	require.Equal(t, "error;executor=info;storage=info", DefaultLogLevels)
}
