// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"bytes"
	"slices"

	"github.com/luxfi/ids"

	"github.com/luxfi/delegatevm/utils/math"
)

// CandidateReceivedVote is the amount one voter currently stakes on one
// candidate.
type CandidateReceivedVote struct {
	Candidate ids.ShortID `serialize:"true" json:"candidate"`
	Votes     uint64      `serialize:"true" json:"votes"`
}

// VoteSet is the set of candidates a voter currently stakes on. Entries are
// sorted by candidate and a candidate with zero votes has no entry.
type VoteSet struct {
	Votes []CandidateReceivedVote `serialize:"true" json:"votes"`
}

func (v *VoteSet) Get(candidate ids.ShortID) uint64 {
	i, found := v.find(candidate)
	if !found {
		return 0
	}
	return v.Votes[i].Votes
}

// Set records [votes] on [candidate]. Setting zero removes the entry.
func (v *VoteSet) Set(candidate ids.ShortID, votes uint64) {
	i, found := v.find(candidate)
	switch {
	case found && votes == 0:
		v.Votes = slices.Delete(v.Votes, i, i+1)
	case found:
		v.Votes[i].Votes = votes
	case votes != 0:
		v.Votes = slices.Insert(v.Votes, i, CandidateReceivedVote{
			Candidate: candidate,
			Votes:     votes,
		})
	}
}

// Total returns the sum of all staked votes.
func (v *VoteSet) Total() (uint64, error) {
	var total uint64
	for _, vote := range v.Votes {
		var err error
		total, err = math.Add(total, vote.Votes)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (v *VoteSet) Len() int {
	return len(v.Votes)
}

func (v *VoteSet) Clone() VoteSet {
	return VoteSet{
		Votes: slices.Clone(v.Votes),
	}
}

// prune drops zero entries and restores the sort order. Sets read back from
// the database are always normalized.
func (v *VoteSet) prune() {
	v.Votes = slices.DeleteFunc(v.Votes, func(vote CandidateReceivedVote) bool {
		return vote.Votes == 0
	})
	slices.SortFunc(v.Votes, func(a, b CandidateReceivedVote) int {
		return bytes.Compare(a.Candidate[:], b.Candidate[:])
	})
}

func (v *VoteSet) find(candidate ids.ShortID) (int, bool) {
	return slices.BinarySearchFunc(v.Votes, candidate, func(vote CandidateReceivedVote, candidate ids.ShortID) int {
		return bytes.Compare(vote.Candidate[:], candidate[:])
	})
}
