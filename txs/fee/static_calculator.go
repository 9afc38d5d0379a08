// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fee

import (
	"fmt"

	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/math"
	"github.com/luxfi/delegatevm/utils/units"
)

var _ Calculator = (*staticCalculator)(nil)

func NewStaticCalculator(config StaticConfig) Calculator {
	return &staticCalculator{
		config: config,
	}
}

type staticCalculator struct {
	config StaticConfig
}

func (c *staticCalculator) CalculateFee(tx *txs.Tx) (uint64, error) {
	if tx == nil {
		return 0, txs.ErrNilTx
	}
	size := tx.Size()
	if size == 0 {
		return 0, errUninitializedTx
	}

	kib := math.DivCeil(uint64(size), units.KiB)
	sizeFee, err := math.Mul(kib, c.config.TxFeePerKiB)
	if err != nil {
		return 0, fmt.Errorf("size fee: %w", err)
	}
	return math.Add(c.config.TxFee, sizeFee)
}
