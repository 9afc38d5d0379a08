// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package units

// Denominations of the base coin. The smallest unit is a MicroLux; every
// amount stored in the ledger is expressed in MicroLux.
const (
	MicroLux uint64 = 1
	MilliLux uint64 = 1000 * MicroLux
	Lux      uint64 = 1000 * MilliLux
	KiloLux  uint64 = 1000 * Lux
	MegaLux  uint64 = 1000 * KiloLux
)

// Byte sizes used by cache and fee configuration.
const (
	KiB = 1024
	MiB = 1024 * KiB
)
