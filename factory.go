// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

import (
	"github.com/luxfi/log"
)

// Factory creates new VM instances.
type Factory struct{}

// New returns an uninitialized VM that logs to [log].
func (*Factory) New(log log.Logger) (*VM, error) {
	return &VM{log: log}, nil
}
