// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package api

import (
	"context"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/transmute/internal/execute"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"gitlab.com/accumulatenetwork/transmute/protocol"
)

// SupplyMonitor periodically records the supply of every token in a
// registry.
type SupplyMonitor struct {
	x        *execute.Executor
	logger   zerolog.Logger
	registry string
	gauge    *prometheus.GaugeVec
}

type MonitorOptions struct {
	Executor   *execute.Executor
	Logger     zerolog.Logger
	Registry   string
	Registerer prometheus.Registerer
}

func NewSupplyMonitor(opts MonitorOptions) (*SupplyMonitor, error) {
	m := new(SupplyMonitor)
	m.x = opts.Executor
	m.logger = opts.Logger.With().Str("module", "monitor").Logger()
	m.registry = opts.Registry
	m.gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "transmute",
		Name:      "token_supply",
		Help:      "Supply of registered tokens by representation",
	}, []string{"contract", "denom", "kind"})

	if opts.Registerer != nil {
		err := opts.Registerer.Register(m.gauge)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("register supply gauge: %w", err)
		}
	}
	return m, nil
}

// Refresh queries the registry and updates the gauges.
func (m *SupplyMonitor) Refresh() error {
	v, err := execute.QueryAs[*protocol.TokensDetailsResponse](m.x, m.registry, &protocol.QueryTokensDetails{})
	if err != nil {
		return errors.UnknownError.WithFormat("query registry %s: %w", m.registry, err)
	}

	m.gauge.Reset()
	for _, t := range v.Tokens {
		m.set(t, "ledger", t.LedgerSupply)
		m.set(t, "external", t.ExternalSupply)
		m.set(t, "total", t.TotalSupply)
	}
	m.logger.Debug().Int("tokens", len(v.Tokens)).Msg("Refreshed supply")
	return nil
}

func (m *SupplyMonitor) set(t *protocol.TokenDetails, kind string, v *big.Int) {
	if v == nil {
		v = new(big.Int)
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	m.gauge.WithLabelValues(t.Contract, t.Denom, kind).Set(f)
}

// Run refreshes on the given cron schedule until the context is canceled.
func (m *SupplyMonitor) Run(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		err := m.Refresh()
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to refresh supply")
		}
	})
	if err != nil {
		return errors.BadRequest.WithFormat("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
