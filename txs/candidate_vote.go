// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"encoding/json"
	"errors"
	"fmt"

	apijson "github.com/luxfi/utils/json"
)

var (
	ErrUnknownVoteType = errors.New("unknown vote type")
	ErrZeroVote        = errors.New("vote amount must be positive")
)

// VoteType is the direction of a single candidate vote.
type VoteType byte

const (
	NullVote VoteType = iota
	// Pledge stakes additional votes on the candidate.
	Pledge
	// Redeem withdraws previously staked votes from the candidate.
	Redeem
)

func (t VoteType) String() string {
	switch t {
	case Pledge:
		return "pledge"
	case Redeem:
		return "redeem"
	default:
		return "null"
	}
}

func (t VoteType) Verify() error {
	if t != Pledge && t != Redeem {
		return fmt.Errorf("%w: %d", ErrUnknownVoteType, t)
	}
	return nil
}

func (t VoteType) MarshalText() ([]byte, error) {
	if err := t.Verify(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

func (t *VoteType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pledge":
		*t = Pledge
	case "redeem":
		*t = Redeem
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVoteType, text)
	}
	return nil
}

// CandidateVote stakes or withdraws [Amount] base coins of votes on
// [Candidate].
type CandidateVote struct {
	VoteType  VoteType `serialize:"true"`
	Candidate UserID   `serialize:"true"`
	Amount    uint64   `serialize:"true"`
}

// Verify checks the vote in isolation. Amount bounds that depend on chain
// configuration are checked by the executor.
func (v *CandidateVote) Verify() error {
	if err := v.VoteType.Verify(); err != nil {
		return err
	}
	if err := v.Candidate.Verify(); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}
	if v.Amount == 0 {
		return ErrZeroVote
	}
	return nil
}

func (v *CandidateVote) String() string {
	return fmt.Sprintf("voteType=%s, candidateUid=%s, votedBcoins=%d", v.VoteType, v.Candidate, v.Amount)
}

type candidateVoteJSON struct {
	VoteType  VoteType       `json:"voteType"`
	Candidate UserID         `json:"candidateUid"`
	Amount    apijson.Uint64 `json:"votedBcoins"`
}

func (v CandidateVote) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateVoteJSON{
		VoteType:  v.VoteType,
		Candidate: v.Candidate,
		Amount:    apijson.Uint64(v.Amount),
	})
}

func (v *CandidateVote) UnmarshalJSON(b []byte) error {
	var vj candidateVoteJSON
	if err := json.Unmarshal(b, &vj); err != nil {
		return err
	}
	*v = CandidateVote{
		VoteType:  vj.VoteType,
		Candidate: vj.Candidate,
		Amount:    uint64(vj.Amount),
	}
	return nil
}
