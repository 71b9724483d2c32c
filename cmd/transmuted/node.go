// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/config"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/registry"
	"gitlab.com/accumulatenetwork/transmute/internal/contract/token"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/internal/logging"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/badger"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/bolt"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/transmute/pkg/database/keyvalue/sqlite"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"

	_ "gitlab.com/accumulatenetwork/transmute/internal/issuance/osmosis"
)

// node is an opened work directory.
type node struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Executor *execute.Executor
	closer   io.Closer
}

// openNode loads the configuration in the work directory and opens its
// database.
func openNode(dir string) (*node, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("load config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, errors.BadRequest.WithFormat("invalid config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("create logger: %w", err)
	}

	db, closer, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	n := new(node)
	n.Config = cfg
	n.Logger = logger
	n.closer = closer
	n.Executor = execute.New(execute.Options{
		Database: db,
		Logger:   logger,
		Contracts: map[string]execute.Contract{
			token.Code:    token.New(cfg.Issuance.Backend),
			registry.Code: registry.Contract{},
		},
	})
	return n, nil
}

func (n *node) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer.Close()
}

func openDatabase(cfg *config.Config, logger zerolog.Logger) (keyvalue.Beginner, io.Closer, error) {
	logger = logger.With().Str("module", "storage").Logger()
	path := cfg.StoragePath()
	if cfg.Storage.Type != config.MemoryStorage {
		err := os.MkdirAll(filepath.Dir(path), 0700)
		if err != nil {
			return nil, nil, errors.UnknownError.WithFormat("create storage directory: %w", err)
		}
	}

	logger.Debug().Str("type", string(cfg.Storage.Type)).Str("path", path).Msg("Opening database")
	switch cfg.Storage.Type {
	case config.MemoryStorage:
		logger.Warn().Msg("Using in-memory storage, nothing will be persisted")
		return memory.New(nil), nil, nil

	case config.BadgerStorage:
		db, err := badger.New(path, badger.WithLogger(logger))
		return db, db, err

	case config.BoltStorage:
		db, err := bolt.Open(path)
		return db, db, err

	case config.SQLiteStorage:
		db, err := sqlite.Open(path)
		return db, db, err
	}
	return nil, nil, errors.BadRequest.WithFormat("unknown storage type %q", cfg.Storage.Type)
}

// withNode opens the work directory, calls fn, and closes it.
func withNode(fn func(*node) error) error {
	n, err := openNode(flagMain.WorkDir)
	if err != nil {
		return err
	}
	defer func() { _ = n.Close() }()
	return fn(n)
}
