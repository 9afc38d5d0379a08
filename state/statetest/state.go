// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
)

const DefaultAccountCacheSize = 128

type Config struct {
	DB               database.Database
	AccountCacheSize int
	Log              log.Logger
}

func New(t testing.TB, c Config) state.State {
	if c.DB == nil {
		c.DB = memdb.New()
	}
	if c.AccountCacheSize == 0 {
		c.AccountCacheSize = DefaultAccountCacheSize
	}
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}

	s := state.New(c.DB, c.AccountCacheSize, c.Log)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// Key is a freshly generated secp256k1 key together with its derived ids.
type Key struct {
	PrivateKey *secp256k1.PrivateKey
	KeyID      ids.ShortID
}

func NewKey(t testing.TB) Key {
	key, err := secp256k1.NewPrivateKey()
	require.NoError(t, err)
	return Key{
		PrivateKey: key,
		KeyID:      key.PublicKey().Address(),
	}
}

func (k Key) PubKey() []byte {
	return k.PrivateKey.PublicKey().Bytes()
}

func (k Key) UserID() txs.UserID {
	return txs.NewPubKeyUserID(k.PubKey())
}

// Fund stores an account for [key] holding [balance] of [symbol]. When
// [registered] is set the account publishes its public key.
func Fund(t testing.TB, chain state.Chain, key Key, symbol string, balance uint64, registered bool) *state.Account {
	require := require.New(t)

	account := &state.Account{
		KeyID: key.KeyID,
	}
	if registered {
		account.OwnerPubKey = key.PubKey()
	}
	if balance != 0 {
		require.NoError(account.OperateBalance(symbol, balance, true))
	}
	require.NoError(chain.PutAccount(account))
	return account
}
