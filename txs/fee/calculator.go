// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fee

import (
	"errors"

	"github.com/luxfi/delegatevm/txs"
)

var errUninitializedTx = errors.New("tx must be initialized before its fee can be calculated")

// Calculator calculates the minimum fee, in base coin units, that a signed
// transaction must pay for valid inclusion into a block.
type Calculator interface {
	CalculateFee(tx *txs.Tx) (uint64, error)
}
