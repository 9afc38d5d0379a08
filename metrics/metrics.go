// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const reasonLabel = "reason"

var (
	_ Metrics = (*metricsImpl)(nil)

	reasonLabels = []string{reasonLabel}
)

type Metrics interface {
	// Mark that a tx was applied to the ledger.
	MarkAccepted(numVotes int)
	// Mark that a tx failed validation with the given reason code.
	MarkRejected(reason string)
	// Mark that a valid tx failed while being applied.
	MarkFailed(reason string)
	// Mark that a block was applied at the given height.
	MarkBlockApplied(height uint64)
}

func New(registerer prometheus.Registerer) (Metrics, error) {
	m := &metricsImpl{
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txs_accepted",
			Help: "number of vote txs applied to the ledger",
		}),
		votesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "votes_applied",
			Help: "number of candidate votes applied to the ledger",
		}),
		txsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txs_rejected",
				Help: "number of vote txs that failed validation",
			},
			reasonLabels,
		),
		txsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txs_failed",
				Help: "number of valid vote txs that failed to apply",
			},
			reasonLabels,
		),
		lastHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "last_applied_height",
			Help: "height of the last applied block",
		}),
	}

	err := errors.Join(
		registerer.Register(m.txsAccepted),
		registerer.Register(m.votesApplied),
		registerer.Register(m.txsRejected),
		registerer.Register(m.txsFailed),
		registerer.Register(m.lastHeight),
	)
	return m, err
}

type metricsImpl struct {
	txsAccepted  prometheus.Counter
	votesApplied prometheus.Counter
	txsRejected  *prometheus.CounterVec
	txsFailed    *prometheus.CounterVec
	lastHeight   prometheus.Gauge
}

func (m *metricsImpl) MarkAccepted(numVotes int) {
	m.txsAccepted.Inc()
	m.votesApplied.Add(float64(numVotes))
}

func (m *metricsImpl) MarkRejected(reason string) {
	m.txsRejected.With(prometheus.Labels{
		reasonLabel: reason,
	}).Inc()
}

func (m *metricsImpl) MarkFailed(reason string) {
	m.txsFailed.With(prometheus.Labels{
		reasonLabel: reason,
	}).Inc()
}

func (m *metricsImpl) MarkBlockApplied(height uint64) {
	m.lastHeight.Set(float64(height))
}
