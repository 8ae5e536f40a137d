// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bitmark-inc/custodyd/fault"
)

var (
	appendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodyd_ledger_appends_total",
		Help: "Ledger append attempts by outcome",
	}, []string{"outcome"})

	appendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custodyd_ledger_append_duration_seconds",
		Help:    "Time spent inside the ledger writer section",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	tailIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custodyd_ledger_tail_index",
		Help: "Index of the most recently committed block, -1 when empty",
	})

	verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodyd_ledger_verifications_total",
		Help: "Chain verifications by result",
	}, []string{"result"})

	readBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodyd_ledger_blocks_read_total",
		Help: "Blocks returned by chain queries",
	})
)

// classify an append error for the outcome label
func outcome(err error) string {
	switch {
	case nil == err:
		return "committed"
	case fault.IsErrEmptyChangeSet(err):
		return "empty"
	case fault.IsErrSerialization(err):
		return "serialization"
	case fault.IsErrStorageIO(err):
		return "storage"
	case fault.IsErrInvalid(err):
		return "invalid"
	default:
		return "other"
	}
}

func verified(valid bool) string {
	if valid {
		return "valid"
	}
	return "broken"
}
