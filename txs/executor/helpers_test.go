// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/config"
	"github.com/luxfi/delegatevm/metrics"
	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/state/statetest"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/fee"
	"github.com/luxfi/delegatevm/upgrade"
)

const (
	testFee           = 10
	testSymbol        = "LUX"
	testForkHeight    = 10
	testHeight        = 20
	testPreForkHeight = 5
	testValidHeight   = testPreForkHeight
	testMaxSupply     = 1_000_000
	testMaxVotes      = 3
)

type environment struct {
	backend *Backend
	state   state.State

	voter      statetest.Key
	candidateA statetest.Key
	candidateB statetest.Key
}

func newEnvironment(t *testing.T) *environment {
	cfg := config.Default
	cfg.MaxVoteCandidates = testMaxVotes
	cfg.MaxBaseCoinSupply = testMaxSupply
	cfg.BaseCoinSymbol = testSymbol
	cfg.TxValidHeightWindow = 100
	cfg.Fee = fee.StaticConfig{
		TxFee: testFee,
	}
	cfg.Upgrades = upgrade.Config{
		RegisteredHeight: testForkHeight,
	}

	env := &environment{
		backend:    NewBackend(&cfg, metrics.Noop, log.NewNoOpLogger()),
		state:      statetest.New(t, statetest.Config{}),
		voter:      statetest.NewKey(t),
		candidateA: statetest.NewKey(t),
		candidateB: statetest.NewKey(t),
	}

	statetest.Fund(t, env.state, env.voter, testSymbol, 1000, true)
	statetest.Fund(t, env.state, env.candidateA, testSymbol, 0, true)
	statetest.Fund(t, env.state, env.candidateB, testSymbol, 0, true)
	require.NoError(t, env.state.Commit())
	return env
}

func pledge(candidate txs.UserID, amount uint64) txs.CandidateVote {
	return txs.CandidateVote{
		VoteType:  txs.Pledge,
		Candidate: candidate,
		Amount:    amount,
	}
}

func redeem(candidate txs.UserID, amount uint64) txs.CandidateVote {
	return txs.CandidateVote{
		VoteType:  txs.Redeem,
		Candidate: candidate,
		Amount:    amount,
	}
}

func newTx(t *testing.T, signer *secp256k1.PrivateKey, voter txs.UserID, fee uint64, votes ...txs.CandidateVote) *txs.Tx {
	tx, err := txs.NewSigned(txs.Codec, txs.DelegateVoteTx{
		Version:     1,
		ValidHeight: testValidHeight,
		Voter:       voter,
		Fee:         fee,
		Votes:       votes,
	}, signer)
	require.NoError(t, err)
	return tx
}

func (env *environment) voteTx(t *testing.T, votes ...txs.CandidateVote) *txs.Tx {
	return newTx(t, env.voter.PrivateKey, env.voter.UserID(), testFee, votes...)
}

func (env *environment) account(t *testing.T, key statetest.Key) *state.Account {
	account, err := env.state.GetAccount(key.KeyID)
	require.NoError(t, err)
	return account
}

func requireCode(t *testing.T, err error, expected string) {
	t.Helper()

	code, ok := ReasonCode(err)
	require.True(t, ok, "unexpected error: %v", err)
	require.Equal(t, expected, code)
}
