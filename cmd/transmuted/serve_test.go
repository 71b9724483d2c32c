// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/transmute/config"
)

func TestServeMonitorFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Storage.Type = config.MemoryStorage
	cfg.Logging.Level = "error"
	cfg.Registry.Address = "contract1"
	require.NoError(t, config.Store(cfg))

	n, err := openNode(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })

	// A conflicting collector makes the supply monitor fail to register
	conflict := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "transmute", Name: "token_supply"})
	require.NoError(t, prometheus.DefaultRegisterer.Register(conflict))
	t.Cleanup(func() { prometheus.DefaultRegisterer.Unregister(conflict) })

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	flagServe.Listen = addr
	t.Cleanup(func() { flagServe.Listen = "" })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Error(t, runServer(ctx, n))

	// Nothing was left listening
	l, err = net.Listen("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
