// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis describes the accounts a delegate vote chain starts with.
package genesis

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/math"

	apijson "github.com/luxfi/utils/json"
)

var (
	ErrDuplicateAllocation = errors.New("duplicate allocation")
	ErrTooManyAllocations  = errors.New("too many registered allocations")
	ErrSupplyExceeded      = errors.New("genesis supply exceeds max base coin supply")
)

// Allocation funds one key at genesis. Registered allocations also publish
// their public key and receive the regID "0-<position>".
type Allocation struct {
	PubKey     string         `json:"pubKey"`
	Balance    apijson.Uint64 `json:"balance"`
	Registered bool           `json:"registered"`
}

type Genesis struct {
	Allocations []Allocation `json:"allocations"`
}

// Parse decodes a JSON genesis.
func Parse(genesisBytes []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	return g, nil
}

func (g *Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}

// Apply writes the genesis accounts to [chain] and returns them in
// allocation order.
func (g *Genesis) Apply(chain state.Chain, symbol string, maxSupply uint64) ([]*state.Account, error) {
	keyIDs := set.NewSet[ids.ShortID](len(g.Allocations))
	accounts := make([]*state.Account, 0, len(g.Allocations))
	var supply uint64
	nextRegIdx := uint64(1)
	for i, allocation := range g.Allocations {
		pubKey, err := hex.DecodeString(allocation.PubKey)
		if err != nil {
			return nil, fmt.Errorf("allocation %d: %w", i, err)
		}
		pk, err := secp256k1.ToPublicKey(pubKey)
		if err != nil {
			return nil, fmt.Errorf("allocation %d: %w", i, err)
		}
		keyID := pk.Address()
		if keyIDs.Contains(keyID) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAllocation, keyID)
		}
		keyIDs.Add(keyID)

		supply, err = math.Add(supply, uint64(allocation.Balance))
		if err != nil || supply > maxSupply {
			return nil, fmt.Errorf("%w: %d", ErrSupplyExceeded, maxSupply)
		}

		account := &state.Account{
			KeyID: keyID,
		}
		if allocation.Registered {
			if nextRegIdx > uint64(math.MaxUint[uint16]()) {
				return nil, ErrTooManyAllocations
			}
			account.OwnerPubKey = pubKey
			account.RegID = txs.RegID{
				Height: 0,
				Index:  uint16(nextRegIdx),
			}
			nextRegIdx++
		}
		if allocation.Balance != 0 {
			if err := account.OperateBalance(symbol, uint64(allocation.Balance), true); err != nil {
				return nil, err
			}
		}
		if err := chain.PutAccount(account); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
