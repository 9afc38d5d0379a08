// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/math"
)

// ExecuteDelegateVoteTx applies [tx], included at position [index] of the
// block at [height], to [chain]. The tx must have passed
// [VerifyDelegateVoteTx]. On failure [chain] may hold partial writes and must
// be discarded by the caller.
func ExecuteDelegateVoteTx(
	backend *Backend,
	chain state.Chain,
	height uint64,
	index int,
	tx *txs.Tx,
) ([]state.Receipt, error) {
	utx := &tx.Unsigned
	symbol := backend.Config.BaseCoinSymbol

	// 1. load the voter
	voter, err := getAccount(backend, chain, utx.Voter)
	if err != nil {
		return nil, fail(CodeBadReadAccount, fmt.Errorf("voter %s: %w", utx.Voter, err))
	}

	// 2. first tx of the voter
	if !voter.HasRegID() {
		if err := assignRegID(chain, voter, utx.Voter, height, index); err != nil {
			return nil, fail(CodeRegIDAssignFailed, err)
		}
	}

	// 3. fee
	if err := voter.OperateBalance(symbol, utx.Fee, false); err != nil {
		return nil, fail(CodeOperateAccount, err)
	}
	receipts := make([]state.Receipt, 0, len(utx.Votes)+1)
	receipts = append(receipts, state.NewFeeReceipt(voter.KeyID, symbol, utx.Fee))

	// 4. current votes of the voter
	votes, err := chain.GetDelegateVotes(voter.KeyID)
	if err != nil {
		return nil, fail(CodeBadReadDelegate, err)
	}

	// 5. merge the new votes
	candidates := make([]ids.ShortID, len(utx.Votes))
	for i, vote := range utx.Votes {
		keyID, err := resolveKeyID(backend, chain, vote.Candidate)
		if err != nil {
			return nil, fail(CodeBadReadAccount, fmt.Errorf("vote %d candidate %s: %w", i, vote.Candidate, err))
		}
		candidates[i] = keyID

		staked, err := shiftVotes(votes.Get(keyID), vote)
		if err != nil {
			return nil, fail(CodeOperateDelegate, fmt.Errorf("voter %s on %s: %w", voter.KeyID, keyID, err))
		}
		votes.Set(keyID, staked)
		receipts = append(receipts, state.NewVoteReceipt(voter.KeyID, keyID, symbol, vote.Amount, vote.VoteType == txs.Pledge))
	}
	voter.StakedVotes, err = votes.Total()
	if err != nil {
		return nil, fail(CodeOperateDelegate, fmt.Errorf("%w: voter %s", ErrVoteOverflow, voter.KeyID))
	}
	if err := chain.SetDelegateVotes(voter.KeyID, votes); err != nil {
		return nil, fail(CodeWriteCandidateVotes, err)
	}

	// 6. persist the voter
	if err := chain.PutAccount(voter); err != nil {
		return nil, fail(CodeBadSaveAccount, err)
	}

	// 7. move the candidates' stake and tally
	for i, vote := range utx.Votes {
		keyID := candidates[i]
		candidate, err := chain.GetAccount(keyID)
		if err != nil {
			return nil, fail(CodeBadReadAccount, fmt.Errorf("candidate %s: %w", keyID, err))
		}

		oldVotes := candidate.ReceivedVotes
		candidate.ReceivedVotes, err = shiftVotes(oldVotes, vote)
		if err != nil {
			return nil, fail(CodeOperateVote, fmt.Errorf("candidate %s: %w", keyID, err))
		}

		if err := chain.SetTally(keyID, candidate.ReceivedVotes); err != nil {
			return nil, fail(CodeBadSaveDelegate, err)
		}
		if err := chain.RemoveTally(keyID, oldVotes); err != nil {
			return nil, fail(CodeBadSaveDelegate, err)
		}
		if err := chain.PutAccount(candidate); err != nil {
			return nil, fail(CodeBadSaveAccount, err)
		}
	}

	// 8. receipts
	if err := chain.SetTxReceipts(tx.ID(), receipts); err != nil {
		return nil, fail(CodeBadSaveReceipt, err)
	}

	backend.Log.Debug("executed delegate vote tx",
		log.Stringer("txID", tx.ID()),
		log.Stringer("voter", voter.KeyID),
		log.Int("numVotes", len(utx.Votes)),
		log.Uint64("height", height),
	)
	return receipts, nil
}

// assignRegID binds the regID naming this block position to [account]. A
// voter identified by public key also registers that key.
func assignRegID(chain state.Chain, account *state.Account, uid txs.UserID, height uint64, index int) error {
	if height > uint64(math.MaxUint[uint32]()) || index < 0 || index > int(math.MaxUint[uint16]()) {
		return fmt.Errorf("%w: height %d index %d", ErrRegIDOutOfRange, height, index)
	}
	regID := txs.RegID{
		Height: uint32(height),
		Index:  uint16(index),
	}
	if regID.IsEmpty() {
		return fmt.Errorf("%w: height %d index %d", ErrRegIDOutOfRange, height, index)
	}

	owner, err := chain.GetKeyID(regID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s is owned by %s", state.ErrRegIDTaken, regID, owner)
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	account.RegID = regID
	if uid.IsPubKey() && !account.IsRegistered() {
		account.OwnerPubKey = slices.Clone(uid.PubKey)
	}
	return nil
}

func shiftVotes(current uint64, vote txs.CandidateVote) (uint64, error) {
	updated, err := math.Shift(current, vote.Amount, vote.VoteType == txs.Pledge)
	switch {
	case errors.Is(err, math.ErrUnderflow):
		return 0, fmt.Errorf("%w: %d staked, %d redeemed", ErrVoteUnderflow, current, vote.Amount)
	case err != nil:
		return 0, fmt.Errorf("%w: %d staked, %d pledged", ErrVoteOverflow, current, vote.Amount)
	default:
		return updated, nil
	}
}
