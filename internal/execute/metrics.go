// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package execute

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmute",
		Subsystem: "executor",
		Name:      "operations_total",
		Help:      "Number of operations executed, by kind and outcome",
	}, []string{"kind", "status"})
	mDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmute",
		Subsystem: "executor",
		Name:      "messages_dispatched_total",
		Help:      "Number of messages dispatched on behalf of contracts",
	}, []string{"type"})
)
