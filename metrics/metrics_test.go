// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	require := require.New(t)

	registry := prometheus.NewRegistry()
	m, err := New(registry)
	require.NoError(err)

	m.MarkAccepted(3)
	m.MarkAccepted(1)
	m.MarkRejected("duplication-candidate")
	m.MarkRejected("duplication-candidate")
	m.MarkFailed("operate-vote-error")
	m.MarkBlockApplied(42)

	impl := m.(*metricsImpl)
	require.InDelta(2, testutil.ToFloat64(impl.txsAccepted), 0)
	require.InDelta(4, testutil.ToFloat64(impl.votesApplied), 0)
	require.InDelta(2, testutil.ToFloat64(impl.txsRejected.WithLabelValues("duplication-candidate")), 0)
	require.InDelta(1, testutil.ToFloat64(impl.txsFailed.WithLabelValues("operate-vote-error")), 0)
	require.InDelta(42, testutil.ToFloat64(impl.lastHeight), 0)

	families, err := registry.Gather()
	require.NoError(err)
	require.Len(families, 5)
}

func TestMetricsDoubleRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)

	_, err = New(registry)
	require.Error(t, err)
}
