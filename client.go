// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

import (
	"context"
	"net/url"

	"github.com/luxfi/ids"

	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/formatting"
	"github.com/luxfi/delegatevm/utils/rpc"

	apijson "github.com/luxfi/utils/json"
)

var _ Client = (*client)(nil)

// Client for interacting with the delegatevm API.
type Client interface {
	GetHeight(ctx context.Context) (uint64, error)
	GetAccount(ctx context.Context, uid txs.UserID) (*GetAccountReply, error)
	GetCandidateVotes(ctx context.Context, uid txs.UserID) (*GetCandidateVotesReply, error)
	GetDelegates(ctx context.Context, limit uint32) ([]APIDelegate, error)
	GetTxReceipts(ctx context.Context, txID ids.ID) ([]APIReceipt, error)
	VerifyTx(ctx context.Context, tx *txs.Tx) (*VerifyTxReply, error)
}

type client struct {
	uri *url.URL
}

// NewClient returns a client that calls the API served at [uri].
func NewClient(uri string) (Client, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	return &client{uri: parsed}, nil
}

func (c *client) GetHeight(ctx context.Context) (uint64, error) {
	res := &GetHeightReply{}
	err := rpc.SendJSONRequest(ctx, c.uri, Name+".getHeight", &EmptyArgs{}, res)
	return uint64(res.Height), err
}

func (c *client) GetAccount(ctx context.Context, uid txs.UserID) (*GetAccountReply, error) {
	res := &GetAccountReply{}
	err := rpc.SendJSONRequest(ctx, c.uri, Name+".getAccount", &UserIDArgs{UserID: uid}, res)
	return res, err
}

func (c *client) GetCandidateVotes(ctx context.Context, uid txs.UserID) (*GetCandidateVotesReply, error) {
	res := &GetCandidateVotesReply{}
	err := rpc.SendJSONRequest(ctx, c.uri, Name+".getCandidateVotes", &UserIDArgs{UserID: uid}, res)
	return res, err
}

func (c *client) GetDelegates(ctx context.Context, limit uint32) ([]APIDelegate, error) {
	res := &GetDelegatesReply{}
	err := rpc.SendJSONRequest(ctx, c.uri, Name+".getDelegates", &GetDelegatesArgs{
		Limit: apijson.Uint32(limit),
	}, res)
	return res.Delegates, err
}

func (c *client) GetTxReceipts(ctx context.Context, txID ids.ID) ([]APIReceipt, error) {
	res := &GetTxReceiptsReply{}
	err := rpc.SendJSONRequest(ctx, c.uri, Name+".getTxReceipts", &GetTxReceiptsArgs{TxID: txID}, res)
	return res.Receipts, err
}

func (c *client) VerifyTx(ctx context.Context, tx *txs.Tx) (*VerifyTxReply, error) {
	txStr, err := formatting.Encode(formatting.Hex, tx.Bytes())
	if err != nil {
		return nil, err
	}
	res := &VerifyTxReply{}
	err = rpc.SendJSONRequest(ctx, c.uri, Name+".verifyTx", &FormattedTx{
		Tx:       txStr,
		Encoding: formatting.Hex,
	}, res)
	return res, err
}
