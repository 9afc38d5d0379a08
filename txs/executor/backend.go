// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/config"
	"github.com/luxfi/delegatevm/fx"
	"github.com/luxfi/delegatevm/metrics"
	"github.com/luxfi/delegatevm/txs/fee"
)

type Backend struct {
	Config        *config.Config
	Fx            fx.Verifier
	FeeCalculator fee.Calculator
	Metrics       metrics.Metrics
	Log           log.Logger
}

// NewBackend wires the default collaborators for [cfg].
func NewBackend(cfg *config.Config, m metrics.Metrics, log log.Logger) *Backend {
	return &Backend{
		Config:        cfg,
		Fx:            &fx.Secp256k1Fx{},
		FeeCalculator: fee.NewStaticCalculator(cfg.Fee),
		Metrics:       m,
		Log:           log,
	}
}
