// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

import (
	"context"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/executor"
	"github.com/luxfi/delegatevm/utils/formatting"

	apijson "github.com/luxfi/utils/json"
)

func newTestClient(t *testing.T, vm *VM) Client {
	require := require.New(t)

	handlers, err := vm.CreateHandlers(context.Background())
	require.NoError(err)

	server := httptest.NewServer(handlers[""])
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	require.NoError(err)
	return client
}

func TestServiceQueries(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)
	client := newTestClient(t, vm)

	tx := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 100))
	_, err := vm.ApplyBlock(ctx, 1, []*txs.Tx{tx})
	require.NoError(err)

	height, err := client.GetHeight(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)

	account, err := client.GetAccount(ctx, keys.voter.UserID())
	require.NoError(err)
	require.Equal(&GetAccountReply{
		KeyID:       keys.voter.KeyID,
		RegID:       "1-0",
		OwnerPubKey: hex.EncodeToString(keys.voter.PubKey()),
		Balances: []APIBalance{
			{Symbol: testSymbol, Amount: testBalance - testFee},
		},
		StakedVotes: 100,
	}, account)

	candidate, err := client.GetAccount(ctx, regIDUserID(0, 1))
	require.NoError(err)
	require.Equal(keys.candidateA.KeyID, candidate.KeyID)
	require.Equal(apijson.Uint64(100), candidate.ReceivedVotes)
	require.Empty(candidate.Balances)

	_, err = client.GetAccount(ctx, regIDUserID(7, 7))
	require.ErrorContains(err, "couldn't get account 7-7")

	votes, err := client.GetCandidateVotes(ctx, regIDUserID(1, 0))
	require.NoError(err)
	require.Equal(&GetCandidateVotesReply{
		Votes: []APICandidateVote{
			{Candidate: keys.candidateA.KeyID, Votes: 100},
		},
		Total: 100,
	}, votes)

	delegates, err := client.GetDelegates(ctx, 0)
	require.NoError(err)
	require.Equal([]APIDelegate{
		{KeyID: keys.candidateA.KeyID, Votes: 100},
	}, delegates)

	_, err = client.GetDelegates(ctx, maxDelegatesLimit+1)
	require.ErrorContains(err, errLimitTooLarge.Error())

	receipts, err := client.GetTxReceipts(ctx, tx.ID())
	require.NoError(err)
	candidateKeyID := keys.candidateA.KeyID
	require.Equal([]APIReceipt{
		{
			Type:   state.TxFee,
			From:   keys.voter.KeyID,
			Symbol: testSymbol,
			Amount: testFee,
		},
		{
			Type:   state.DelegateAddVotes,
			From:   keys.voter.KeyID,
			To:     &candidateKeyID,
			Symbol: testSymbol,
			Amount: 100,
		},
	}, receipts)

	_, err = client.GetTxReceipts(ctx, ids.GenerateTestID())
	require.ErrorContains(err, "couldn't get receipts")
}

func TestServiceVerifyTx(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)
	client := newTestClient(t, vm)

	valid := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 2), 5))
	reply, err := client.VerifyTx(ctx, valid)
	require.NoError(err)
	require.True(reply.Valid)
	require.Empty(reply.Reason)
	require.Equal(valid.ID(), reply.TxID)
	require.Equal(valid.ID(), reply.Tx.ID())
	require.Equal(valid.Unsigned, reply.Tx.Unsigned)

	unregistered := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, keys.voter.UserID(), 5))
	reply, err = client.VerifyTx(ctx, unregistered)
	require.NoError(err)
	require.False(reply.Valid)
	require.Equal(executor.CodeUnregistered, reply.Reason)
	require.NotEmpty(reply.Error)
}

func TestServiceVerifyTxDecodeErrors(t *testing.T) {
	keys := newTestKeys(t)
	vm := newTestVM(t, memdb.New(), keys, nil)
	service := &Service{vm: vm}

	tx := newVoteTx(t, keys.voter, 1, vote(txs.Pledge, regIDUserID(0, 1), 5))
	noChecksum, err := formatting.Encode(formatting.HexNC, tx.Bytes())
	require.NoError(t, err)

	tests := []struct {
		name string
		args *FormattedTx
	}{
		{
			name: "checksum missing",
			args: &FormattedTx{
				Tx:       noChecksum,
				Encoding: formatting.Hex,
			},
		},
		{
			name: "not a tx",
			args: &FormattedTx{
				Tx:       "0x00",
				Encoding: formatting.HexNC,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reply := &VerifyTxReply{}
			err := service.VerifyTx(nil, test.args, reply)
			require.Error(t, err)
			require.False(t, reply.Valid)
		})
	}

	reply := &VerifyTxReply{}
	require.NoError(t, service.VerifyTx(nil, &FormattedTx{
		Tx:       noChecksum,
		Encoding: formatting.HexNC,
	}, reply))
	require.True(t, reply.Valid)
}
