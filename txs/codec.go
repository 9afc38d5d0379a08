// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"

	"github.com/luxfi/delegatevm/utils/units"
)

const (
	CodecVersion uint16 = 0

	// MaxTxSize bounds the serialized size of a single tx.
	MaxTxSize = 64 * units.KiB
)

var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewManager(MaxTxSize)

	err := errors.Join(
		c.RegisterType(&DelegateVoteTx{}),
		Codec.RegisterCodec(CodecVersion, c),
	)
	if err != nil {
		panic(err)
	}
}
