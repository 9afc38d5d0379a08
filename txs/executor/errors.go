// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"
)

// Rejection reason codes.
const (
	CodeBadValidHeight     = "bad-valid-height"
	CodeBadFee             = "bad-tx-fee"
	CodeBadUIDType         = "bad-tx-uid-type"
	CodeBadPublicKey       = "bad-publickey"
	CodeVotesOutOfRange    = "candidate-votes-out-of-range"
	CodeBadReadAccount     = "bad-read-accountdb"
	CodeBadSignature       = "bad-tx-signature"
	CodeBadVoteType        = "bad-vote-type"
	CodeBadVoteAmount      = "bad-vote-amount"
	CodeUnregistered       = "candidate-unregistered"
	CodeDuplicateCandidate = "duplication-candidate"
)

// Execution failure reason codes. [CodeBadReadAccount] is shared with
// rejections.
const (
	CodeRegIDAssignFailed   = "regid-assign-failed"
	CodeOperateAccount      = "operate-account-failed"
	CodeBadReadDelegate     = "bad-read-delegatedb"
	CodeOperateDelegate     = "operate-delegate-failed"
	CodeWriteCandidateVotes = "write-candidate-votes-failed"
	CodeBadSaveAccount      = "bad-save-accountdb"
	CodeOperateVote         = "operate-vote-error"
	CodeBadSaveDelegate     = "bad-save-delegatedb"
	CodeBadSaveReceipt      = "bad-save-receiptdb"
	CodeCommitFailed        = "commit-failed"
)

var (
	ErrTxExpired            = errors.New("tx valid height is too old")
	ErrTxFromFuture         = errors.New("tx valid height is in the future")
	ErrInsufficientFee      = errors.New("insufficient fee")
	ErrFeeOutOfRange        = errors.New("fee exceeds max base coin supply")
	ErrVotesOutOfRange      = errors.New("number of candidate votes out of range")
	ErrMissingPublicKey     = errors.New("no public key to verify the signature against")
	ErrVoteAmountOutOfRange = errors.New("vote amount out of range")
	ErrUnregistered         = errors.New("candidate has not registered a public key")
	ErrDuplicateCandidate   = errors.New("candidate voted more than once")
	ErrRegIDOutOfRange      = errors.New("block position cannot be expressed as a regID")
	ErrVoteUnderflow        = errors.New("redeemed more votes than staked")
	ErrVoteOverflow         = errors.New("staked votes overflow")
)

// Rejection is returned when a tx is invalid against the ledger it was
// checked on. The tx is dropped and nothing is written.
type Rejection struct {
	Code string
	Err  error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected (%s): %v", r.Code, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// ExecutionError is returned when a tx that passed validation could not be
// applied. Every write the tx staged is discarded.
type ExecutionError struct {
	Code string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed (%s): %v", e.Code, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func reject(code string, err error) error {
	return &Rejection{
		Code: code,
		Err:  err,
	}
}

func fail(code string, err error) error {
	return &ExecutionError{
		Code: code,
		Err:  err,
	}
}

// ReasonCode returns the code carried by [err] and whether it carried one.
func ReasonCode(err error) (string, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Code, true
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Code, true
	}
	return "", false
}
