// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "strings"

const (
	// TxType names the delegate vote tx in human and machine readable views.
	TxType = "DELEGATE_VOTE_TX"

	// CurrentVersion is the format version of newly built txs.
	CurrentVersion uint32 = 1
)

// DelegateVoteTx lets [Voter] stake or withdraw votes on up to a configured
// number of delegate candidates while paying [Fee].
type DelegateVoteTx struct {
	// Tx format version
	Version uint32 `serialize:"true"`
	// Height the tx was built against. The tx expires once the chain moves
	// too far past it.
	ValidHeight uint64 `serialize:"true"`
	// Account paying the fee and casting the votes
	Voter UserID `serialize:"true"`
	// Fee, in base coin units, debited from the voter's primary balance
	Fee uint64 `serialize:"true"`
	// Votes to apply, in order
	Votes []CandidateVote `serialize:"true"`
}

// normalize restores the in-memory form of identities decoded by the codec,
// which yields an empty rather than nil public key for regID identities.
func (tx *DelegateVoteTx) normalize() {
	tx.Voter.normalize()
	for i := range tx.Votes {
		tx.Votes[i].Candidate.normalize()
	}
}

func (tx *DelegateVoteTx) describeVotes() string {
	var sb strings.Builder
	sb.WriteString("vote: ")
	for _, vote := range tx.Votes {
		sb.WriteString(vote.String())
		sb.WriteString("; ")
	}
	return strings.TrimSuffix(sb.String(), "; ")
}
