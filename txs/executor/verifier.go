// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
)

// VerifyDelegateVoteTx checks [tx] against [chain] as if it were included at
// [height]. It never writes to [chain].
func VerifyDelegateVoteTx(backend *Backend, chain state.Chain, height uint64, tx *txs.Tx) error {
	if tx == nil {
		return reject(CodeBadUIDType, txs.ErrNilTx)
	}
	cfg := backend.Config
	utx := &tx.Unsigned

	if err := verifyValidHeight(backend, height, utx.ValidHeight); err != nil {
		return reject(CodeBadValidHeight, err)
	}

	// 1. fee
	requiredFee, err := backend.FeeCalculator.CalculateFee(tx)
	if err != nil {
		return reject(CodeBadFee, err)
	}
	if utx.Fee < requiredFee {
		return reject(CodeBadFee, fmt.Errorf("%w: paid %d but requires %d",
			ErrInsufficientFee,
			utx.Fee,
			requiredFee,
		))
	}
	if utx.Fee > cfg.MaxBaseCoinSupply {
		return reject(CodeBadFee, fmt.Errorf("%w: %d", ErrFeeOutOfRange, utx.Fee))
	}

	// 2. voter identity
	if err := utx.Voter.Verify(); err != nil {
		return reject(CodeBadUIDType, err)
	}
	if utx.Voter.IsPubKey() {
		if _, err := backend.Fx.ParsePublicKey(utx.Voter.PubKey); err != nil {
			return reject(CodeBadPublicKey, fmt.Errorf("voter: %w", err))
		}
	}

	// 3. vote list size
	if len(utx.Votes) == 0 || len(utx.Votes) > cfg.MaxVoteCandidates {
		return reject(CodeVotesOutOfRange, fmt.Errorf("%w: %d not in [1, %d]",
			ErrVotesOutOfRange,
			len(utx.Votes),
			cfg.MaxVoteCandidates,
		))
	}

	// 4. voter account
	voter, err := getAccount(backend, chain, utx.Voter)
	if err != nil {
		return reject(CodeBadReadAccount, fmt.Errorf("voter %s: %w", utx.Voter, err))
	}

	// 5. signature
	if cfg.Upgrades.RequiresSignature(height) {
		pubKey := voter.OwnerPubKey
		if utx.Voter.IsPubKey() {
			pubKey = utx.Voter.PubKey
		}
		if len(pubKey) == 0 {
			return reject(CodeBadSignature, fmt.Errorf("%w: voter %s", ErrMissingPublicKey, utx.Voter))
		}
		txID := tx.ID()
		if err := backend.Fx.VerifyHash(pubKey, txID[:], tx.Signature); err != nil {
			return reject(CodeBadSignature, err)
		}
	}

	// 6. candidates
	requireRegistered := cfg.Upgrades.RequiresRegisteredCandidate(height)
	candidates := set.NewSet[ids.ShortID](len(utx.Votes))
	for i := range utx.Votes {
		vote := &utx.Votes[i]
		if err := vote.Candidate.Verify(); err != nil {
			return reject(CodeBadUIDType, fmt.Errorf("vote %d: %w", i, err))
		}

		keyID, err := resolveKeyID(backend, chain, vote.Candidate)
		if err != nil {
			code := CodeBadReadAccount
			if vote.Candidate.IsPubKey() {
				code = CodeBadPublicKey
			}
			return reject(code, fmt.Errorf("vote %d candidate %s: %w", i, vote.Candidate, err))
		}
		candidate, err := chain.GetAccount(keyID)
		if err != nil {
			return reject(CodeBadReadAccount, fmt.Errorf("vote %d candidate %s: %w", i, vote.Candidate, err))
		}
		if err := vote.VoteType.Verify(); err != nil {
			return reject(CodeBadVoteType, fmt.Errorf("vote %d: %w", i, err))
		}
		if vote.Amount == 0 || vote.Amount > cfg.MaxBaseCoinSupply {
			return reject(CodeBadVoteAmount, fmt.Errorf("%w: vote %d has %d not in (0, %d]",
				ErrVoteAmountOutOfRange,
				i,
				vote.Amount,
				cfg.MaxBaseCoinSupply,
			))
		}
		if requireRegistered && !candidate.IsRegistered() {
			return reject(CodeUnregistered, fmt.Errorf("%w: %s", ErrUnregistered, vote.Candidate))
		}
		candidates.Add(keyID)
	}

	// 7. duplicates
	if candidates.Len() != len(utx.Votes) {
		return reject(CodeDuplicateCandidate, fmt.Errorf("%w: %d votes for %d candidates",
			ErrDuplicateCandidate,
			len(utx.Votes),
			candidates.Len(),
		))
	}
	return nil
}

func verifyValidHeight(backend *Backend, height, validHeight uint64) error {
	window := backend.Config.TxValidHeightWindow
	if window == 0 {
		return nil
	}
	if validHeight > height {
		return fmt.Errorf("%w: %d > %d", ErrTxFromFuture, validHeight, height)
	}
	if height-validHeight > window {
		return fmt.Errorf("%w: %d is more than %d blocks before %d",
			ErrTxExpired,
			validHeight,
			window,
			height,
		)
	}
	return nil
}

// resolveKeyID returns the key [uid] references. Public keys are parsed by
// the fx so that off-curve keys are caught.
func resolveKeyID(backend *Backend, chain state.Chain, uid txs.UserID) (ids.ShortID, error) {
	if uid.IsPubKey() {
		return backend.Fx.ParsePublicKey(uid.PubKey)
	}
	return state.GetKeyID(chain, uid)
}

func getAccount(backend *Backend, chain state.Chain, uid txs.UserID) (*state.Account, error) {
	keyID, err := resolveKeyID(backend, chain, uid)
	if err != nil {
		return nil, err
	}
	return chain.GetAccount(keyID)
}
