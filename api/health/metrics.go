// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import "github.com/prometheus/client_golang/prometheus"

type healthMetrics struct {
	// failingChecks is 1 while the last health check failed
	failingChecks prometheus.Gauge
	checks        prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) (*healthMetrics, error) {
	m := &healthMetrics{
		failingChecks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "health_checks_failing",
			Help: "number of currently failing health checks",
		}),
		checks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "health_checks_total",
			Help: "number of health checks run",
		}),
	}
	if err := registerer.Register(m.failingChecks); err != nil {
		return nil, err
	}
	return m, registerer.Register(m.checks)
}
