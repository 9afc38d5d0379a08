// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

// State is the lifecycle state of a VM instance.
type State uint8

const (
	// Unknown is the state of a VM that was never initialized.
	Unknown State = iota

	// NormalOp indicates the ledger is loaded and blocks can be applied.
	NormalOp

	// Stopped indicates the VM was shut down and its database closed.
	Stopped
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case NormalOp:
		return "NormalOp"
	case Stopped:
		return "Stopped"
	default:
		return "Invalid"
	}
}
