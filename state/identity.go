// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/delegatevm/txs"
)

// GetKeyID resolves [uid] to the key of the account it references. A regID
// that was never assigned reports [database.ErrNotFound].
func GetKeyID(chain Chain, uid txs.UserID) (ids.ShortID, error) {
	switch uid.Kind {
	case txs.PubKeyKind:
		return uid.PubKeyID()
	case txs.RegIDKind:
		return chain.GetKeyID(uid.RegID)
	default:
		return ids.ShortEmpty, fmt.Errorf("%w: kind %s", txs.ErrUnknownIdentity, uid.Kind)
	}
}

// GetAccountByUserID returns the account [uid] references.
func GetAccountByUserID(chain Chain, uid txs.UserID) (*Account, error) {
	keyID, err := GetKeyID(chain, uid)
	if err != nil {
		return nil, err
	}
	return chain.GetAccount(keyID)
}
