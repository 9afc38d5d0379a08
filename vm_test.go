// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/genesis"
	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/state/statetest"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/executor"
)

const (
	testFee     = 10
	testSymbol  = "LUX"
	testBalance = 1000
)

var testConfigBytes = []byte(`{"fee":{"txFee":10,"txFeePerKiB":0}}`)

type testKeys struct {
	voter      statetest.Key
	candidateA statetest.Key
	candidateB statetest.Key
}

func newTestKeys(t *testing.T) testKeys {
	return testKeys{
		voter:      statetest.NewKey(t),
		candidateA: statetest.NewKey(t),
		candidateB: statetest.NewKey(t),
	}
}

// newGenesisBytes funds the voter and registers both candidates, which
// receive the regIDs "0-1" and "0-2".
func newGenesisBytes(t *testing.T, keys testKeys) []byte {
	g := &genesis.Genesis{
		Allocations: []genesis.Allocation{
			{PubKey: hex.EncodeToString(keys.voter.PubKey()), Balance: testBalance},
			{PubKey: hex.EncodeToString(keys.candidateA.PubKey()), Registered: true},
			{PubKey: hex.EncodeToString(keys.candidateB.PubKey()), Registered: true},
		},
	}
	genesisBytes, err := g.Bytes()
	require.NoError(t, err)
	return genesisBytes
}

func newTestVM(t *testing.T, db database.Database, keys testKeys, registerer prometheus.Registerer) *VM {
	require := require.New(t)

	factory := &Factory{}
	vm, err := factory.New(log.NewNoOpLogger())
	require.NoError(err)
	require.NoError(vm.Initialize(
		context.Background(),
		db,
		newGenesisBytes(t, keys),
		testConfigBytes,
		registerer,
	))
	t.Cleanup(func() {
		require.NoError(vm.Shutdown(context.Background()))
	})
	return vm
}

func newVoteTx(t *testing.T, signer statetest.Key, validHeight uint64, votes ...txs.CandidateVote) *txs.Tx {
	tx, err := txs.NewSigned(txs.Codec, txs.DelegateVoteTx{
		Version:     1,
		ValidHeight: validHeight,
		Voter:       signer.UserID(),
		Fee:         testFee,
		Votes:       votes,
	}, signer.PrivateKey)
	require.NoError(t, err)
	return tx
}

func vote(voteType txs.VoteType, candidate txs.UserID, amount uint64) txs.CandidateVote {
	return txs.CandidateVote{
		VoteType:  voteType,
		Candidate: candidate,
		Amount:    amount,
	}
}

func regIDUserID(height uint32, index uint16) txs.UserID {
	return txs.NewRegIDUserID(txs.RegID{Height: height, Index: index})
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)
	require.Equal(NormalOp, vm.Status())

	height, err := vm.Height()
	require.NoError(err)
	require.Zero(height)

	voter, err := vm.GetAccount(keys.voter.UserID())
	require.NoError(err)
	require.Equal(uint64(testBalance), voter.GetBalance(testSymbol))
	require.False(voter.IsRegistered())

	candidate, err := vm.GetAccount(regIDUserID(0, 2))
	require.NoError(err)
	require.Equal(keys.candidateB.KeyID, candidate.KeyID)

	err = vm.Initialize(context.Background(), memdb.New(), newGenesisBytes(t, keys), nil, nil)
	require.ErrorIs(err, errAlreadyInitialized)
}

func TestInitializeErrors(t *testing.T) {
	keys := newTestKeys(t)
	tests := []struct {
		name         string
		genesisBytes []byte
		configBytes  []byte
	}{
		{
			name:         "malformed config",
			genesisBytes: newGenesisBytes(t, keys),
			configBytes:  []byte(`{"maxVoteCandidates":`),
		},
		{
			name:         "invalid config",
			genesisBytes: newGenesisBytes(t, keys),
			configBytes:  []byte(`{"baseCoinSymbol":""}`),
		},
		{
			name:         "malformed genesis",
			genesisBytes: []byte(`{"allocations":`),
		},
		{
			name:         "genesis exceeds supply",
			genesisBytes: newGenesisBytes(t, keys),
			configBytes:  []byte(`{"maxBaseCoinSupply":999}`),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			db := memdb.New()
			vm := &VM{}
			err := vm.Initialize(context.Background(), db, test.genesisBytes, test.configBytes, nil)
			require.Error(err)
			require.Equal(Unknown, vm.Status())

			_, err = vm.Height()
			require.ErrorIs(err, errNotRunning)
		})
	}
}

func TestApplyBlock(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)

	candidateA := regIDUserID(0, 1)
	candidateB := keys.candidateB.UserID()
	pledgeTx := newVoteTx(t, keys.voter, 1,
		vote(txs.Pledge, candidateA, 100),
		vote(txs.Pledge, candidateB, 50),
	)
	overdrawTx := newVoteTx(t, keys.voter, 1,
		vote(txs.Redeem, candidateA, 500),
	)
	brokeVoterTx := newVoteTx(t, keys.candidateA, 1,
		vote(txs.Pledge, candidateB, 1),
	)

	results, err := vm.ApplyBlock(context.Background(), 1, []*txs.Tx{pledgeTx, overdrawTx, brokeVoterTx, nil})
	require.NoError(err)
	require.Len(results, 4)

	require.True(results[0].Accepted)
	require.Equal(pledgeTx.ID(), results[0].TxID)
	require.Len(results[0].Receipts, 3)

	require.False(results[1].Accepted)
	require.Equal(executor.CodeOperateDelegate, results[1].Reason)
	require.NotEmpty(results[1].Error)

	// The candidate has no balance to pay the fee with
	require.False(results[2].Accepted)
	require.Equal(executor.CodeOperateAccount, results[2].Reason)

	require.False(results[3].Accepted)
	require.Equal(executor.CodeBadUIDType, results[3].Reason)

	height, err := vm.Height()
	require.NoError(err)
	require.Equal(uint64(1), height)

	voter, err := vm.GetAccount(keys.voter.UserID())
	require.NoError(err)
	require.Equal(uint64(testBalance-testFee), voter.GetBalance(testSymbol))
	require.Equal(txs.RegID{Height: 1, Index: 0}, voter.RegID)
	require.Equal(uint64(150), voter.StakedVotes)

	votes, err := vm.GetCandidateVotes(regIDUserID(1, 0))
	require.NoError(err)
	require.Equal(uint64(100), votes.Get(keys.candidateA.KeyID))
	require.Equal(uint64(50), votes.Get(keys.candidateB.KeyID))

	delegates, err := vm.GetDelegates(10)
	require.NoError(err)
	require.Equal([]state.Delegate{
		{KeyID: keys.candidateA.KeyID, Votes: 100},
		{KeyID: keys.candidateB.KeyID, Votes: 50},
	}, delegates)

	receipts, err := vm.GetTxReceipts(pledgeTx.ID())
	require.NoError(err)
	require.Equal(results[0].Receipts, receipts)

	_, err = vm.GetTxReceipts(overdrawTx.ID())
	require.ErrorIs(err, database.ErrNotFound)
}

func TestApplyBlockHeight(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)

	_, err := vm.ApplyBlock(context.Background(), 0, nil)
	require.ErrorIs(err, errStaleHeight)

	_, err = vm.ApplyBlock(context.Background(), 5, nil)
	require.NoError(err)

	_, err = vm.ApplyBlock(context.Background(), 5, nil)
	require.ErrorIs(err, errStaleHeight)

	_, err = vm.ApplyBlock(context.Background(), 6, nil)
	require.NoError(err)
}

func TestApplyBlockCanceled(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tx := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 100))
	_, err := vm.ApplyBlock(ctx, 1, []*txs.Tx{tx})
	require.ErrorIs(err, context.Canceled)

	height, err := vm.Height()
	require.NoError(err)
	require.Zero(height)

	voter, err := vm.GetAccount(keys.voter.UserID())
	require.NoError(err)
	require.Equal(uint64(testBalance), voter.GetBalance(testSymbol))
}

func TestReplayAcrossBlocks(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)

	tx := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 100))
	results, err := vm.ApplyBlock(context.Background(), 1, []*txs.Tx{tx})
	require.NoError(err)
	require.True(results[0].Accepted)

	results, err = vm.ApplyBlock(context.Background(), 2, []*txs.Tx{tx})
	require.NoError(err)
	require.False(results[0].Accepted)
	require.Equal(executor.CodeBadSaveReceipt, results[0].Reason)

	voter, err := vm.GetAccount(keys.voter.UserID())
	require.NoError(err)
	require.Equal(uint64(testBalance-testFee), voter.GetBalance(testSymbol))
}

func TestReopen(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	keys := newTestKeys(t)

	vm := &VM{}
	require.NoError(vm.Initialize(context.Background(), db, newGenesisBytes(t, keys), testConfigBytes, nil))
	tx := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 100))
	_, err := vm.ApplyBlock(context.Background(), 1, []*txs.Tx{tx})
	require.NoError(err)
	require.NoError(vm.Shutdown(context.Background()))
	require.Equal(Stopped, vm.Status())

	_, err = vm.ApplyBlock(context.Background(), 2, nil)
	require.ErrorIs(err, errNotRunning)

	// The stored ledger wins over a different genesis
	reopened := newTestVM(t, db, newTestKeys(t), nil)
	height, err := reopened.Height()
	require.NoError(err)
	require.Equal(uint64(1), height)

	delegates, err := reopened.GetDelegates(1)
	require.NoError(err)
	require.Equal([]state.Delegate{{KeyID: keys.candidateA.KeyID, Votes: 100}}, delegates)
}

func TestVerifyTx(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)

	valid := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 100))
	require.NoError(vm.VerifyTx(valid))

	duplicate := newVoteTx(t, keys.voter, 1,
		vote(txs.Pledge, regIDUserID(0, 1), 100),
		vote(txs.Pledge, keys.candidateA.UserID(), 100),
	)
	err := vm.VerifyTx(duplicate)
	var rejection *executor.Rejection
	require.ErrorAs(err, &rejection)
	require.Equal(executor.CodeDuplicateCandidate, rejection.Code)

	// Verification never writes
	voter, err := vm.GetAccount(keys.voter.UserID())
	require.NoError(err)
	require.False(voter.HasRegID())
	require.Equal(uint64(testBalance), voter.GetBalance(testSymbol))
}

func TestVMMetrics(t *testing.T) {
	require := require.New(t)

	keys := newTestKeys(t)
	registry := prometheus.NewRegistry()
	vm := newTestVM(t, memdb.New(), keys, registry)

	pledgeTx := newVoteTx(t, keys.voter, 1,
		vote(txs.Pledge, regIDUserID(0, 1), 100),
		vote(txs.Pledge, regIDUserID(0, 2), 100),
	)
	emptyTx := newVoteTx(t, keys.voter, 1)
	_, err := vm.ApplyBlock(context.Background(), 3, []*txs.Tx{pledgeTx, emptyTx})
	require.NoError(err)

	count, err := testutil.GatherAndCount(registry, "txs_accepted", "votes_applied", "txs_rejected", "last_applied_height")
	require.NoError(err)
	require.Equal(4, count)

	families, err := registry.Gather()
	require.NoError(err)
	values := make(map[string]float64, len(families))
	for _, family := range families {
		metric := family.GetMetric()[0]
		switch {
		case metric.GetCounter() != nil:
			values[family.GetName()] = metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			values[family.GetName()] = metric.GetGauge().GetValue()
		}
	}
	require.Equal(float64(1), values["txs_accepted"])
	require.Equal(float64(2), values["votes_applied"])
	require.Equal(float64(1), values["txs_rejected"])
	require.Equal(float64(3), values["last_applied_height"])
}

func TestHealthCheck(t *testing.T) {
	require := require.New(t)

	vm := newTestVM(t, memdb.New(), newTestKeys(t), nil)
	health, err := vm.HealthCheck(context.Background())
	require.NoError(err)
	require.Equal(map[string]interface{}{
		"status": "NormalOp",
		"height": uint64(0),
	}, health)

	version, err := vm.Version(context.Background())
	require.NoError(err)
	require.Equal(Version, version)
}
