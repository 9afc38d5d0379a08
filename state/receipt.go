// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

var ErrUnknownReceiptType = errors.New("unknown receipt type")

// ReceiptType names the economic effect a receipt records.
type ReceiptType uint8

const (
	// TxFee is the fee debited from the tx originator.
	TxFee ReceiptType = iota + 1
	// DelegateAddVotes is a stake increase from a voter onto a candidate.
	DelegateAddVotes
	// DelegateSubVotes is a stake decrease from a voter off a candidate.
	DelegateSubVotes
)

func (t ReceiptType) String() string {
	switch t {
	case TxFee:
		return "TRANSFER_FEE"
	case DelegateAddVotes:
		return "DELEGATE_ADD_VOTES"
	case DelegateSubVotes:
		return "DELEGATE_SUB_VOTES"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

func (t ReceiptType) MarshalText() ([]byte, error) {
	switch t {
	case TxFee, DelegateAddVotes, DelegateSubVotes:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownReceiptType, t)
	}
}

func (t *ReceiptType) UnmarshalText(text []byte) error {
	for _, candidate := range []ReceiptType{TxFee, DelegateAddVotes, DelegateSubVotes} {
		if candidate.String() == string(text) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownReceiptType, text)
}

// Receipt records one balance or stake effect of a tx. A fee receipt has an
// empty [To].
type Receipt struct {
	Type   ReceiptType `serialize:"true" json:"type"`
	From   ids.ShortID `serialize:"true" json:"from"`
	To     ids.ShortID `serialize:"true" json:"to"`
	Symbol string      `serialize:"true" json:"symbol"`
	Amount uint64      `serialize:"true" json:"amount"`
}

func NewFeeReceipt(from ids.ShortID, symbol string, amount uint64) Receipt {
	return Receipt{
		Type:   TxFee,
		From:   from,
		Symbol: symbol,
		Amount: amount,
	}
}

// NewVoteReceipt records a stake change of [amount] votes from [voter] onto
// [candidate].
func NewVoteReceipt(voter, candidate ids.ShortID, symbol string, amount uint64, increase bool) Receipt {
	receiptType := DelegateSubVotes
	if increase {
		receiptType = DelegateAddVotes
	}
	return Receipt{
		Type:   receiptType,
		From:   voter,
		To:     candidate,
		Symbol: symbol,
		Amount: amount,
	}
}

type receiptsRecord struct {
	Receipts []Receipt `serialize:"true"`
}
