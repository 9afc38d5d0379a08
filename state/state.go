// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/math"
)

const (
	regIDKeyLen = 6
	tallyKeyLen = 8 + ids.ShortIDLen
)

var (
	_ State = (*state)(nil)

	ErrRegIDTaken        = errors.New("regID is assigned to another account")
	ErrRegIDReassigned   = errors.New("account regID cannot change")
	ErrReceiptsExist     = errors.New("receipts already recorded for tx")
	ErrMalformedTallyKey = errors.New("malformed tally key")

	AccountPrefix   = []byte("account")
	RegIDPrefix     = []byte("regID")
	VotePrefix      = []byte("vote")
	TallyPrefix     = []byte("tally")
	ReceiptPrefix   = []byte("receipt")
	SingletonPrefix = []byte("singleton")

	InitializedKey = []byte("initialized")
	HeightKey      = []byte("height")
)

// Chain is a read/write view of the ledger. Absent records are reported with
// [database.ErrNotFound].
type Chain interface {
	GetAccount(keyID ids.ShortID) (*Account, error)
	// GetKeyID resolves a regID to the key that owns it.
	GetKeyID(regID txs.RegID) (ids.ShortID, error)
	PutAccount(account *Account) error

	// GetDelegateVotes returns the votes [voter] currently stakes. A voter
	// that never voted has an empty set.
	GetDelegateVotes(voter ids.ShortID) (VoteSet, error)
	// SetDelegateVotes replaces the vote set of [voter].
	SetDelegateVotes(voter ids.ShortID, votes VoteSet) error

	// SetTally records that [candidate] has received [total] votes.
	SetTally(candidate ids.ShortID, total uint64) error
	// RemoveTally removes the record that [candidate] has received [total]
	// votes.
	RemoveTally(candidate ids.ShortID, total uint64) error
	// GetTopDelegates returns up to [limit] candidates ordered by descending
	// received votes.
	GetTopDelegates(limit int) ([]Delegate, error)

	GetTxReceipts(txID ids.ID) ([]Receipt, error)
	SetTxReceipts(txID ids.ID, receipts []Receipt) error
}

// State is the persisted ledger. Writes are buffered until [State.Commit].
type State interface {
	Chain

	IsInitialized() (bool, error)
	SetInitialized() error

	// GetHeight returns the height of the last applied block.
	GetHeight() (uint64, error)
	SetHeight(height uint64) error

	Commit() error
	Abort()
	Close() error
}

// Delegate is a candidate together with its total received votes.
type Delegate struct {
	KeyID ids.ShortID `json:"keyID"`
	Votes uint64      `json:"votes"`
}

type state struct {
	*ledger

	log         log.Logger
	baseDB      *versiondb.Database
	singletonDB database.Database
}

// New returns the ledger stored in [db].
func New(db database.Database, accountCacheSize int, log log.Logger) State {
	baseDB := versiondb.New(db)
	return &state{
		ledger:      newLedger(baseDB, lru.NewCache[ids.ShortID, *Account](accountCacheSize)),
		log:         log,
		baseDB:      baseDB,
		singletonDB: prefixdb.New(SingletonPrefix, baseDB),
	}
}

func (s *state) IsInitialized() (bool, error) {
	return s.singletonDB.Has(InitializedKey)
}

func (s *state) SetInitialized() error {
	return s.singletonDB.Put(InitializedKey, []byte{})
}

func (s *state) GetHeight() (uint64, error) {
	heightBytes, err := s.singletonDB.Get(HeightKey)
	if err == database.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(heightBytes) != 8 {
		return 0, fmt.Errorf("malformed height of length %d", len(heightBytes))
	}
	return binary.BigEndian.Uint64(heightBytes), nil
}

func (s *state) SetHeight(height uint64) error {
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height)
	return s.singletonDB.Put(HeightKey, heightBytes)
}

func (s *state) Commit() error {
	if err := s.baseDB.Commit(); err != nil {
		s.log.Error("failed to commit ledger",
			log.Err(err),
		)
		return err
	}
	return nil
}

// Abort discards every uncommitted write.
func (s *state) Abort() {
	s.baseDB.Abort()
	s.accountCache.Flush()
}

func (s *state) stagingDB() database.Database {
	return s.baseDB
}

func (s *state) evictAccounts(keyIDs set.Set[ids.ShortID]) {
	for keyID := range keyIDs {
		s.accountCache.Evict(keyID)
	}
}

func (s *state) Close() error {
	return s.baseDB.Close()
}

// ledger implements [Chain] on top of a single database.
type ledger struct {
	accountDB database.Database
	regIDDB   database.Database
	voteDB    database.Database
	tallyDB   database.Database
	receiptDB database.Database

	// keyID -> account; a nil entry marks an absent account
	accountCache cache.Cacher[ids.ShortID, *Account]
}

func newLedger(db database.Database, accountCache cache.Cacher[ids.ShortID, *Account]) *ledger {
	return &ledger{
		accountDB:    prefixdb.New(AccountPrefix, db),
		regIDDB:      prefixdb.New(RegIDPrefix, db),
		voteDB:       prefixdb.New(VotePrefix, db),
		tallyDB:      prefixdb.New(TallyPrefix, db),
		receiptDB:    prefixdb.New(ReceiptPrefix, db),
		accountCache: accountCache,
	}
}

func (l *ledger) GetAccount(keyID ids.ShortID) (*Account, error) {
	if account, cached := l.accountCache.Get(keyID); cached {
		if account == nil {
			return nil, database.ErrNotFound
		}
		return account.Clone(), nil
	}

	accountBytes, err := l.accountDB.Get(keyID[:])
	if err == database.ErrNotFound {
		l.accountCache.Put(keyID, nil)
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	account := &Account{}
	if _, err := Codec.Unmarshal(accountBytes, account); err != nil {
		return nil, fmt.Errorf("failed to parse account %s: %w", keyID, err)
	}
	l.accountCache.Put(keyID, account)
	return account.Clone(), nil
}

func (l *ledger) GetKeyID(regID txs.RegID) (ids.ShortID, error) {
	keyIDBytes, err := l.regIDDB.Get(regIDKey(regID))
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(keyIDBytes)
}

func (l *ledger) PutAccount(account *Account) error {
	keyID := account.KeyID
	if account.HasRegID() {
		if err := l.putRegID(account); err != nil {
			return err
		}
	}

	accountBytes, err := Codec.Marshal(CodecVersion, account)
	if err != nil {
		return fmt.Errorf("failed to serialize account %s: %w", keyID, err)
	}
	if err := l.accountDB.Put(keyID[:], accountBytes); err != nil {
		return err
	}
	l.accountCache.Put(keyID, account.Clone())
	return nil
}

// putRegID indexes the regID of [account]. A regID is bound to one key
// forever.
func (l *ledger) putRegID(account *Account) error {
	owner, err := l.GetKeyID(account.RegID)
	switch {
	case err == database.ErrNotFound:
	case err != nil:
		return err
	case owner != account.KeyID:
		return fmt.Errorf("%w: %s is owned by %s", ErrRegIDTaken, account.RegID, owner)
	default:
		return nil
	}

	previous, err := l.GetAccount(account.KeyID)
	switch {
	case err == database.ErrNotFound:
	case err != nil:
		return err
	case previous.HasRegID() && previous.RegID != account.RegID:
		return fmt.Errorf("%w: %s has %s", ErrRegIDReassigned, account.KeyID, previous.RegID)
	}
	return l.regIDDB.Put(regIDKey(account.RegID), account.KeyID[:])
}

func (l *ledger) GetDelegateVotes(voter ids.ShortID) (VoteSet, error) {
	voteBytes, err := l.voteDB.Get(voter[:])
	if err == database.ErrNotFound {
		return VoteSet{}, nil
	}
	if err != nil {
		return VoteSet{}, err
	}

	votes := VoteSet{}
	if _, err := Codec.Unmarshal(voteBytes, &votes); err != nil {
		return VoteSet{}, fmt.Errorf("failed to parse votes of %s: %w", voter, err)
	}
	return votes, nil
}

func (l *ledger) SetDelegateVotes(voter ids.ShortID, votes VoteSet) error {
	votes = votes.Clone()
	votes.prune()
	if votes.Len() == 0 {
		return l.voteDB.Delete(voter[:])
	}

	voteBytes, err := Codec.Marshal(CodecVersion, &votes)
	if err != nil {
		return fmt.Errorf("failed to serialize votes of %s: %w", voter, err)
	}
	return l.voteDB.Put(voter[:], voteBytes)
}

func (l *ledger) SetTally(candidate ids.ShortID, total uint64) error {
	if total == 0 {
		return nil
	}
	return l.tallyDB.Put(tallyKey(candidate, total), []byte{})
}

func (l *ledger) RemoveTally(candidate ids.ShortID, total uint64) error {
	if total == 0 {
		return nil
	}
	return l.tallyDB.Delete(tallyKey(candidate, total))
}

func (l *ledger) GetTopDelegates(limit int) ([]Delegate, error) {
	it := l.tallyDB.NewIterator()
	defer it.Release()

	var delegates []Delegate
	for len(delegates) < limit && it.Next() {
		delegate, err := parseTallyKey(it.Key())
		if err != nil {
			return nil, err
		}
		delegates = append(delegates, delegate)
	}
	return delegates, it.Error()
}

func (l *ledger) GetTxReceipts(txID ids.ID) ([]Receipt, error) {
	receiptBytes, err := l.receiptDB.Get(txID[:])
	if err != nil {
		return nil, err
	}

	record := receiptsRecord{}
	if _, err := Codec.Unmarshal(receiptBytes, &record); err != nil {
		return nil, fmt.Errorf("failed to parse receipts of %s: %w", txID, err)
	}
	return record.Receipts, nil
}

// SetTxReceipts records the receipts of [txID]. Receipts are immutable so a
// second write for the same tx fails.
func (l *ledger) SetTxReceipts(txID ids.ID, receipts []Receipt) error {
	has, err := l.receiptDB.Has(txID[:])
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrReceiptsExist, txID)
	}

	receiptBytes, err := Codec.Marshal(CodecVersion, &receiptsRecord{
		Receipts: receipts,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize receipts of %s: %w", txID, err)
	}
	return l.receiptDB.Put(txID[:], receiptBytes)
}

func regIDKey(regID txs.RegID) []byte {
	key := make([]byte, regIDKeyLen)
	binary.BigEndian.PutUint32(key, regID.Height)
	binary.BigEndian.PutUint16(key[4:], regID.Index)
	return key
}

// tallyKey orders candidates by descending [total], then by key.
func tallyKey(candidate ids.ShortID, total uint64) []byte {
	key := make([]byte, tallyKeyLen)
	binary.BigEndian.PutUint64(key, math.MaxUint[uint64]()-total)
	copy(key[8:], candidate[:])
	return key
}

func parseTallyKey(key []byte) (Delegate, error) {
	if len(key) != tallyKeyLen {
		return Delegate{}, fmt.Errorf("%w: length %d", ErrMalformedTallyKey, len(key))
	}
	keyID, err := ids.ToShortID(key[8:])
	if err != nil {
		return Delegate{}, err
	}
	return Delegate{
		KeyID: keyID,
		Votes: math.MaxUint[uint64]() - binary.BigEndian.Uint64(key),
	}, nil
}
