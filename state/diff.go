// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"

	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

const diffAccountCacheSize = 64

var (
	_ Diff = (*diff)(nil)

	ErrMissingParentState = errors.New("missing parent state")
)

// Diff stages writes on top of a parent ledger. The writes become visible to
// the parent on [Diff.Commit] and are dropped on [Diff.Abort].
type Diff interface {
	Chain

	Commit() error
	Abort()
}

// stager is a ledger a [Diff] can be opened on.
type stager interface {
	Chain

	stagingDB() database.Database
	evictAccounts(keyIDs set.Set[ids.ShortID])
}

type diff struct {
	*ledger

	parent stager
	db     *versiondb.Database

	// keys whose account was written in this diff
	modifiedAccounts set.Set[ids.ShortID]
}

// NewDiffOn opens a diff on [parent], which must be a [State] or a [Diff]
// created by this package.
func NewDiffOn(parent Chain) (Diff, error) {
	p, ok := parent.(stager)
	if !ok {
		return nil, ErrMissingParentState
	}

	db := versiondb.New(p.stagingDB())
	return &diff{
		ledger:           newLedger(db, lru.NewCache[ids.ShortID, *Account](diffAccountCacheSize)),
		parent:           p,
		db:               db,
		modifiedAccounts: set.NewSet[ids.ShortID](0),
	}, nil
}

func (d *diff) PutAccount(account *Account) error {
	if err := d.ledger.PutAccount(account); err != nil {
		return err
	}
	d.modifiedAccounts.Add(account.KeyID)
	return nil
}

// Commit writes the staged changes into the parent.
func (d *diff) Commit() error {
	if err := d.db.Commit(); err != nil {
		return err
	}
	d.parent.evictAccounts(d.modifiedAccounts)
	d.reset()
	return nil
}

func (d *diff) Abort() {
	d.db.Abort()
	d.reset()
}

func (d *diff) reset() {
	d.accountCache.Flush()
	d.modifiedAccounts.Clear()
}

func (d *diff) stagingDB() database.Database {
	return d.db
}

func (d *diff) evictAccounts(keyIDs set.Set[ids.ShortID]) {
	for keyID := range keyIDs {
		d.accountCache.Evict(keyID)
		d.modifiedAccounts.Add(keyID)
	}
}
