// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Checker reports the health of a component. A non-nil error means the
// component is unhealthy; the details are reported either way.
type Checker interface {
	HealthCheck(context.Context) (interface{}, error)
}

// APIReply is the body written by the health handler.
type APIReply struct {
	Healthy bool        `json:"healthy"`
	Details interface{} `json:"details,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type handler struct {
	checker Checker
	metrics *healthMetrics
}

// NewHandler returns a handler that runs [checker] on every request. It
// responds 200 when healthy and 503 otherwise.
func NewHandler(checker Checker, registerer prometheus.Registerer) (http.Handler, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &handler{
		checker: checker,
		metrics: m,
	}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.metrics.checks.Inc()

	details, err := h.checker.HealthCheck(r.Context())
	reply := APIReply{
		Healthy: err == nil,
		Details: details,
	}
	code := http.StatusOK
	if err != nil {
		reply.Error = err.Error()
		code = http.StatusServiceUnavailable
		h.metrics.failingChecks.Set(1)
	} else {
		h.metrics.failingChecks.Set(0)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(reply)
}
