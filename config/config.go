// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gitlab.com/accumulatenetwork/transmute/internal/logging"
)

const (
	configDir  = "config"
	configFile = "transmute.toml"
	envPrefix  = "TRANSMUTE"
)

type StorageType string

const (
	MemoryStorage StorageType = "memory"
	BadgerStorage StorageType = "badger"
	BoltStorage   StorageType = "bolt"
	SQLiteStorage StorageType = "sqlite"
)

// LogLevel defines the default and per-module log level.
type LogLevel struct {
	Default string
	Modules [][2]string
}

// Parse parses a string such as "error;executor=info" into a LogLevel.
func (l LogLevel) Parse(s string) LogLevel {
	for _, s := range strings.Split(s, ";") {
		s := strings.SplitN(s, "=", 2)
		if len(s) == 1 {
			l.Default = s[0]
		} else {
			l.Modules = append(l.Modules, *(*[2]string)(s))
		}
	}
	return l
}

// SetDefault sets the default log level.
func (l LogLevel) SetDefault(level string) LogLevel {
	l.Default = level
	return l
}

// SetModule sets the log level for a module.
func (l LogLevel) SetModule(module, level string) LogLevel {
	l.Modules = append(l.Modules, [2]string{module, level})
	return l
}

// String converts the log level into a string, for example
// "error;executor=debug".
func (l LogLevel) String() string {
	s := new(strings.Builder)
	s.WriteString(l.Default)
	for _, m := range l.Modules {
		fmt.Fprintf(s, ";%s=%s", m[0], m[1])
	}
	return s.String()
}

var DefaultLogLevels = LogLevel{}.
	SetDefault("error").
	SetModule("executor", "info").
	// SetModule("bank", "debug").
	// SetModule("token", "debug").
	// SetModule("registry", "debug").
	SetModule("storage", "info").
	String()

type Config struct {
	RootDir string `toml:"-" mapstructure:"-"`

	Storage  Storage  `toml:"storage" mapstructure:"storage"`
	Logging  Logging  `toml:"logging" mapstructure:"logging"`
	Issuance Issuance `toml:"issuance" mapstructure:"issuance"`
	Registry Registry `toml:"registry" mapstructure:"registry"`
	API      API      `toml:"api" mapstructure:"api"`
}

type Storage struct {
	Type StorageType `toml:"type" mapstructure:"type"`
	Path string      `toml:"path" mapstructure:"path"`
}

type Logging struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

type Issuance struct {
	// Backend is the name of the issuance backend used by new tokens.
	Backend string `toml:"backend" mapstructure:"backend"`
}

type Registry struct {
	// Address is the registry notified by tokens created without an explicit
	// registry.
	Address string `toml:"address" mapstructure:"address"`
}

type API struct {
	ListenAddress string `toml:"listen-address" mapstructure:"listen-address"`

	// SupplySchedule is a cron schedule for refreshing the supply gauges of
	// registered tokens. Empty disables the refresh.
	SupplySchedule string `toml:"supply-schedule" mapstructure:"supply-schedule"`
}

// Default returns the default configuration rooted at dir.
func Default(dir string) *Config {
	c := new(Config)
	c.RootDir = dir
	c.Storage.Type = BadgerStorage
	c.Storage.Path = filepath.Join("data", "transmute.db")
	c.Logging.Level = DefaultLogLevels
	c.Logging.Format = logging.LogFormatPlain
	c.Issuance.Backend = "osmosis"
	c.API.ListenAddress = "127.0.0.1:26680"
	c.API.SupplySchedule = "@every 1m"
	return c
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case MemoryStorage:
	case BadgerStorage, BoltStorage, SQLiteStorage:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage: %s requires a path", c.Storage.Type)
		}
	default:
		return fmt.Errorf("storage: unknown type %q", c.Storage.Type)
	}

	_, err := logging.ParseModuleLevels(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging: invalid level %q: %w", c.Logging.Level, err)
	}

	switch strings.ToLower(c.Logging.Format) {
	case logging.LogFormatPlain, logging.LogFormatText, logging.LogFormatJSON:
	default:
		return fmt.Errorf("logging: unsupported format %q", c.Logging.Format)
	}

	if c.Issuance.Backend == "" {
		return fmt.Errorf("issuance: missing backend")
	}

	if c.API.SupplySchedule != "" {
		_, err = cron.ParseStandard(c.API.SupplySchedule)
		if err != nil {
			return fmt.Errorf("api: invalid supply schedule %q: %w", c.API.SupplySchedule, err)
		}
	}
	return nil
}

// StoragePath returns the absolute storage path.
func (c *Config) StoragePath() string {
	return MakeAbsolute(c.RootDir, c.Storage.Path)
}

func MakeAbsolute(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Load loads the configuration stored in dir. Values may be overridden with
// environment variables such as TRANSMUTE_STORAGE_TYPE.
func Load(dir string) (*Config, error) {
	c := new(Config)
	err := load(dir, filepath.Join(dir, configDir, configFile), c)
	if err != nil {
		return nil, err
	}
	c.RootDir = dir
	return c, nil
}

// Store writes the configuration to its root directory.
func Store(config *Config) error {
	err := os.MkdirAll(filepath.Join(config.RootDir, configDir), 0755)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(config.RootDir, configDir, configFile))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(config)
}

func load(dir, file string, c interface{}) error {
	v := viper.New()
	v.SetConfigFile(file)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read: %v", err)
	}

	err = v.Unmarshal(c)
	if err != nil {
		return fmt.Errorf("unmarshal: %v", err)
	}

	return nil
}
