// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fee

type StaticConfig struct {
	// Fee that every delegate vote tx must pay, regardless of its size
	TxFee uint64 `json:"txFee"`

	// Additional fee per started KiB of the signed tx
	TxFeePerKiB uint64 `json:"txFeePerKiB"`
}
