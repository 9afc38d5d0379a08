// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegatevm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/executor"
	"github.com/luxfi/delegatevm/utils/formatting"

	apijson "github.com/luxfi/utils/json"
)

const maxDelegatesLimit = 1024

var errLimitTooLarge = errors.New("limit too large")

// Service is the JSON-RPC API of the VM. It is registered under the name
// "delegatevm".
type Service struct {
	vm *VM
}

type EmptyArgs struct{}

type GetHeightReply struct {
	Height apijson.Uint64 `json:"height"`
}

// GetHeight returns the height of the last applied block.
//
// Example JSON-RPC call:
//
//	curl -X POST --data '{
//	    "jsonrpc":"2.0",
//	    "id"     :1,
//	    "method" :"delegatevm.getHeight",
//	    "params" :{}
//	}' -H 'content-type:application/json;' http://127.0.0.1:9650/ext/bc/delegatevm
func (s *Service) GetHeight(_ *http.Request, _ *EmptyArgs, reply *GetHeightReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "getHeight"),
	)

	height, err := s.vm.Height()
	reply.Height = apijson.Uint64(height)
	return err
}

// UserIDArgs names an account by public key or by regID.
type UserIDArgs struct {
	UserID txs.UserID `json:"uid"`
}

type APIBalance struct {
	Symbol string         `json:"symbol"`
	Amount apijson.Uint64 `json:"amount"`
}

type GetAccountReply struct {
	KeyID         ids.ShortID    `json:"keyID"`
	RegID         string         `json:"regID,omitempty"`
	OwnerPubKey   string         `json:"ownerPubKey,omitempty"`
	Balances      []APIBalance   `json:"balances"`
	ReceivedVotes apijson.Uint64 `json:"receivedVotes"`
	StakedVotes   apijson.Uint64 `json:"stakedVotes"`
}

// GetAccount returns the ledger record of an account.
func (s *Service) GetAccount(_ *http.Request, args *UserIDArgs, reply *GetAccountReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "getAccount"),
		log.Stringer("uid", args.UserID),
	)

	account, err := s.vm.GetAccount(args.UserID)
	if err != nil {
		return fmt.Errorf("couldn't get account %s: %w", args.UserID, err)
	}

	reply.KeyID = account.KeyID
	if account.HasRegID() {
		reply.RegID = account.RegID.String()
	}
	if account.IsRegistered() {
		reply.OwnerPubKey = hex.EncodeToString(account.OwnerPubKey)
	}
	reply.Balances = make([]APIBalance, len(account.Balances))
	for i, balance := range account.Balances {
		reply.Balances[i] = APIBalance{
			Symbol: balance.Symbol,
			Amount: apijson.Uint64(balance.Amount),
		}
	}
	reply.ReceivedVotes = apijson.Uint64(account.ReceivedVotes)
	reply.StakedVotes = apijson.Uint64(account.StakedVotes)
	return nil
}

type APICandidateVote struct {
	Candidate ids.ShortID    `json:"candidate"`
	Votes     apijson.Uint64 `json:"votes"`
}

type GetCandidateVotesReply struct {
	Votes []APICandidateVote `json:"votes"`
	Total apijson.Uint64     `json:"total"`
}

// GetCandidateVotes returns the votes an account currently stakes, per
// candidate.
func (s *Service) GetCandidateVotes(_ *http.Request, args *UserIDArgs, reply *GetCandidateVotesReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "getCandidateVotes"),
		log.Stringer("uid", args.UserID),
	)

	votes, err := s.vm.GetCandidateVotes(args.UserID)
	if err != nil {
		return fmt.Errorf("couldn't get votes of %s: %w", args.UserID, err)
	}
	total, err := votes.Total()
	if err != nil {
		return err
	}

	reply.Votes = make([]APICandidateVote, len(votes.Votes))
	for i, vote := range votes.Votes {
		reply.Votes[i] = APICandidateVote{
			Candidate: vote.Candidate,
			Votes:     apijson.Uint64(vote.Votes),
		}
	}
	reply.Total = apijson.Uint64(total)
	return nil
}

type GetDelegatesArgs struct {
	// Zero means the configured max vote candidates
	Limit apijson.Uint32 `json:"limit"`
}

type APIDelegate struct {
	KeyID ids.ShortID    `json:"keyID"`
	Votes apijson.Uint64 `json:"votes"`
}

type GetDelegatesReply struct {
	Delegates []APIDelegate `json:"delegates"`
}

// GetDelegates returns candidates ranked by the votes they received.
func (s *Service) GetDelegates(_ *http.Request, args *GetDelegatesArgs, reply *GetDelegatesReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "getDelegates"),
	)

	limit := int(args.Limit)
	switch {
	case limit == 0:
		limit = s.vm.Config().MaxVoteCandidates
	case limit > maxDelegatesLimit:
		return fmt.Errorf("%w: %d > %d", errLimitTooLarge, limit, maxDelegatesLimit)
	}

	delegates, err := s.vm.GetDelegates(limit)
	if err != nil {
		return err
	}
	reply.Delegates = make([]APIDelegate, len(delegates))
	for i, delegate := range delegates {
		reply.Delegates[i] = APIDelegate{
			KeyID: delegate.KeyID,
			Votes: apijson.Uint64(delegate.Votes),
		}
	}
	return nil
}

type GetTxReceiptsArgs struct {
	TxID ids.ID `json:"txID"`
}

type APIReceipt struct {
	Type   state.ReceiptType `json:"type"`
	From   ids.ShortID       `json:"from"`
	To     *ids.ShortID      `json:"to,omitempty"`
	Symbol string            `json:"symbol"`
	Amount apijson.Uint64    `json:"amount"`
}

type GetTxReceiptsReply struct {
	Receipts []APIReceipt `json:"receipts"`
}

// GetTxReceipts returns the receipts recorded for an applied tx.
func (s *Service) GetTxReceipts(_ *http.Request, args *GetTxReceiptsArgs, reply *GetTxReceiptsReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "getTxReceipts"),
		log.Stringer("txID", args.TxID),
	)

	receipts, err := s.vm.GetTxReceipts(args.TxID)
	if err != nil {
		return fmt.Errorf("couldn't get receipts of tx %s: %w", args.TxID, err)
	}
	reply.Receipts = make([]APIReceipt, len(receipts))
	for i, receipt := range receipts {
		apiReceipt := APIReceipt{
			Type:   receipt.Type,
			From:   receipt.From,
			Symbol: receipt.Symbol,
			Amount: apijson.Uint64(receipt.Amount),
		}
		if receipt.To != ids.ShortEmpty {
			to := receipt.To
			apiReceipt.To = &to
		}
		reply.Receipts[i] = apiReceipt
	}
	return nil
}

// FormattedTx is a signed tx in one of the supported encodings.
type FormattedTx struct {
	Tx       string              `json:"tx"`
	Encoding formatting.Encoding `json:"encoding"`
}

type VerifyTxReply struct {
	TxID   ids.ID  `json:"txID"`
	Tx     *txs.Tx `json:"tx"`
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// VerifyTx decodes a signed tx and checks whether it would be accepted in
// the next block. A rejected tx is not an API error: the reply carries the
// rejection reason.
func (s *Service) VerifyTx(_ *http.Request, args *FormattedTx, reply *VerifyTxReply) error {
	s.vm.log.Debug("API called",
		log.String("service", Name),
		log.String("method", "verifyTx"),
	)

	txBytes, err := formatting.Decode(args.Encoding, args.Tx)
	if err != nil {
		return fmt.Errorf("problem decoding transaction: %w", err)
	}
	tx, err := txs.Parse(txs.Codec, txBytes)
	if err != nil {
		return err
	}

	reply.TxID = tx.ID()
	reply.Tx = tx
	if err := s.vm.VerifyTx(tx); err != nil {
		var rejection *executor.Rejection
		if !errors.As(err, &rejection) {
			return err
		}
		reply.Reason = rejection.Code
		reply.Error = err.Error()
		return nil
	}
	reply.Valid = true
	return nil
}
