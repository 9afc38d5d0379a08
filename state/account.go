// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/luxfi/ids"

	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/math"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// AssetBalance is the free balance an account holds of one asset.
type AssetBalance struct {
	Symbol string `serialize:"true" json:"symbol"`
	Amount uint64 `serialize:"true" json:"amount"`
}

// Account is the ledger record of a single key.
type Account struct {
	KeyID ids.ShortID `serialize:"true" json:"keyID"`
	// Assigned the first time the account originates a tx
	RegID txs.RegID `serialize:"true" json:"regID"`
	// Empty until the account is registered
	OwnerPubKey []byte `serialize:"true" json:"ownerPubKey"`
	// Sorted by symbol
	Balances []AssetBalance `serialize:"true" json:"balances"`
	// Votes other accounts currently stake on this account
	ReceivedVotes uint64 `serialize:"true" json:"receivedVotes"`
	// Votes this account currently stakes on candidates
	StakedVotes uint64 `serialize:"true" json:"stakedVotes"`
}

// IsRegistered reports whether the account has published its public key.
func (a *Account) IsRegistered() bool {
	return len(a.OwnerPubKey) != 0
}

func (a *Account) HasRegID() bool {
	return !a.RegID.IsEmpty()
}

func (a *Account) GetBalance(symbol string) uint64 {
	i, found := a.findBalance(symbol)
	if !found {
		return 0
	}
	return a.Balances[i].Amount
}

// OperateBalance credits [amount] of [symbol] when [increase] is set and
// debits it otherwise. A failed operation leaves the account unchanged.
func (a *Account) OperateBalance(symbol string, amount uint64, increase bool) error {
	i, found := a.findBalance(symbol)
	var current uint64
	if found {
		current = a.Balances[i].Amount
	}

	updated, err := math.Shift(current, amount, increase)
	switch {
	case errors.Is(err, math.ErrUnderflow):
		return fmt.Errorf("%w: %s has %d %s but needs %d",
			ErrInsufficientBalance,
			a.KeyID,
			current,
			symbol,
			amount,
		)
	case err != nil:
		return fmt.Errorf("%w: %s %s", ErrBalanceOverflow, a.KeyID, symbol)
	}

	if found {
		a.Balances[i].Amount = updated
		return nil
	}
	a.Balances = slices.Insert(a.Balances, i, AssetBalance{
		Symbol: symbol,
		Amount: updated,
	})
	return nil
}

func (a *Account) findBalance(symbol string) (int, bool) {
	return slices.BinarySearchFunc(a.Balances, symbol, func(b AssetBalance, symbol string) int {
		return strings.Compare(b.Symbol, symbol)
	})
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	clone := *a
	clone.OwnerPubKey = slices.Clone(a.OwnerPubKey)
	clone.Balances = slices.Clone(a.Balances)
	return &clone
}
