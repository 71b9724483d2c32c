// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/transmute/internal/api"
	"gitlab.com/accumulatenetwork/transmute/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API and metrics",
	Args:  cobra.NoArgs,
	Run:   serve,
}

var flagServe struct {
	Listen string
}

func init() {
	cmdMain.AddCommand(cmdServe)
	cmdServe.Flags().StringVarP(&flagServe.Listen, "listen", "l", "", "Listen address (defaults to the configured address)")
}

func serve(*cobra.Command, []string) {
	// Shutdown on SIGINT with a context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	go func() {
		<-sigs
		signal.Stop(sigs)
		cancel()
	}()

	check(withNode(func(n *node) error {
		return runServer(ctx, n)
	}))
}

func runServer(ctx context.Context, n *node) error {
	addr := flagServe.Listen
	if addr == "" {
		addr = n.Config.API.ListenAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", api.NewHandler(api.Options{Executor: n.Executor, Logger: n.Logger}))
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer, promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{},
		),
	))

	// The monitor is built first so a failure leaves nothing running
	var monitor *api.SupplyMonitor
	if n.Config.Registry.Address != "" && n.Config.API.SupplySchedule != "" {
		var err error
		monitor, err = api.NewSupplyMonitor(api.MonitorOptions{
			Executor:   n.Executor,
			Logger:     n.Logger,
			Registry:   n.Config.Registry.Address,
			Registerer: prometheus.DefaultRegisterer,
		})
		if err != nil {
			return err
		}
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.UnknownError.WithFormat("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		n.Logger.Info().Str("address", l.Addr().String()).Msg("Serving")
		err := srv.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	errg.Go(func() error {
		<-ctx.Done()
		n.Logger.Info().Msg("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if monitor != nil {
		errg.Go(func() error { return monitor.Run(ctx, n.Config.API.SupplySchedule) })
	}

	return errg.Wait()
}
