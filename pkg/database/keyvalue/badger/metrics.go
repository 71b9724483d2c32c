// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "open_databases",
		Help:      "Number of open databases",
	})
	mReaders = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "open_change_sets",
		Help:      "Number of change sets holding a read transaction",
	})
	mCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "commits_total",
		Help:      "Committed change sets by outcome",
	}, []string{"status"})
	mCommitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "commit_seconds",
		Help:      "Time spent flushing a change set",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})
	mCommitEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "commit_entries",
		Help:      "Number of entries written per commit",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
	mGC = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmute",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Value log garbage collection runs by result",
	}, []string{"result"})
)
