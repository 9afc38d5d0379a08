// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
)

// ApplyTx verifies and executes [tx] in a diff on top of [parent]. The writes
// of the tx reach [parent] only if every step succeeds.
func ApplyTx(
	backend *Backend,
	parent state.Chain,
	height uint64,
	index int,
	tx *txs.Tx,
) ([]state.Receipt, error) {
	if tx == nil {
		return nil, reject(CodeBadUIDType, txs.ErrNilTx)
	}

	diff, err := state.NewDiffOn(parent)
	if err != nil {
		return nil, fail(CodeCommitFailed, err)
	}

	if err := VerifyDelegateVoteTx(backend, diff, height, tx); err != nil {
		diff.Abort()
		markDropped(backend, tx, err)
		return nil, err
	}

	receipts, err := ExecuteDelegateVoteTx(backend, diff, height, index, tx)
	if err != nil {
		diff.Abort()
		markDropped(backend, tx, err)
		return nil, err
	}

	if err := diff.Commit(); err != nil {
		err = fail(CodeCommitFailed, err)
		markDropped(backend, tx, err)
		return nil, err
	}

	backend.Metrics.MarkAccepted(len(tx.Unsigned.Votes))
	return receipts, nil
}

func markDropped(backend *Backend, tx *txs.Tx, err error) {
	code, _ := ReasonCode(err)
	switch err.(type) {
	case *Rejection:
		backend.Metrics.MarkRejected(code)
	default:
		backend.Metrics.MarkFailed(code)
	}
	backend.Log.Debug("dropped delegate vote tx",
		log.Stringer("txID", tx.ID()),
		log.String("reason", code),
		log.Err(err),
	)
}
