// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/codec"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"

	apijson "github.com/luxfi/utils/json"
)

var (
	ErrNilTx          = errors.New("tx is nil")
	ErrTxIDMismatch   = errors.New("tx ID does not match tx contents")
	ErrWrongTxType    = errors.New("wrong tx type")
	errNotInitialized = errors.New("tx is not initialized")
)

// Tx is a signed delegate vote tx.
type Tx struct {
	Unsigned  DelegateVoteTx `serialize:"true"`
	Signature []byte         `serialize:"true"`

	id            ids.ID
	unsignedBytes []byte
	bytes         []byte
}

// Initialize computes the serialized forms and the ID of the tx.
func (tx *Tx) Initialize(c codec.Manager) error {
	unsignedBytes, err := c.Marshal(CodecVersion, &tx.Unsigned)
	if err != nil {
		return fmt.Errorf("couldn't marshal unsigned tx: %w", err)
	}
	signedBytes, err := c.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal signed tx: %w", err)
	}
	tx.SetBytes(unsignedBytes, signedBytes)
	return nil
}

func (tx *Tx) SetBytes(unsignedBytes, signedBytes []byte) {
	tx.unsignedBytes = unsignedBytes
	tx.bytes = signedBytes
	tx.id = ids.ID(hash.ComputeHash256Array(unsignedBytes))
}

// ID is the hash of the unsigned tx. It is also the message the voter signs.
func (tx *Tx) ID() ids.ID {
	return tx.id
}

func (tx *Tx) Bytes() []byte {
	return tx.bytes
}

func (tx *Tx) UnsignedBytes() []byte {
	return tx.unsignedBytes
}

// Size is the length of the signed serialization, used for fee pricing.
func (tx *Tx) Size() int {
	return len(tx.bytes)
}

// Sign signs the tx with [key] and re-initializes it.
func (tx *Tx) Sign(c codec.Manager, key *secp256k1.PrivateKey) error {
	unsignedBytes, err := c.Marshal(CodecVersion, &tx.Unsigned)
	if err != nil {
		return fmt.Errorf("couldn't marshal unsigned tx: %w", err)
	}
	txHash := hash.ComputeHash256(unsignedBytes)
	sig, err := key.SignHash(txHash)
	if err != nil {
		return fmt.Errorf("problem signing tx: %w", err)
	}
	tx.Signature = sig
	return tx.Initialize(c)
}

// NewSigned builds a signed tx from [unsigned].
func NewSigned(c codec.Manager, unsigned DelegateVoteTx, key *secp256k1.PrivateKey) (*Tx, error) {
	tx := &Tx{Unsigned: unsigned}
	return tx, tx.Sign(c, key)
}

// Parse deserializes a signed tx.
func Parse(c codec.Manager, signedBytes []byte) (*Tx, error) {
	tx := &Tx{}
	if _, err := c.Unmarshal(signedBytes, tx); err != nil {
		return nil, fmt.Errorf("couldn't parse tx: %w", err)
	}
	tx.Unsigned.normalize()
	unsignedBytes, err := c.Marshal(CodecVersion, &tx.Unsigned)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal unsigned tx: %w", err)
	}
	tx.SetBytes(unsignedBytes, signedBytes)
	return tx, nil
}

// String returns a single line human readable description of the tx.
func (tx *Tx) String() string {
	if tx == nil {
		return "<nil>"
	}
	u := &tx.Unsigned
	return fmt.Sprintf("txType=%s, hash=%s, ver=%d, txUid=%s, llFees=%d, valid_height=%d, %s",
		TxType,
		tx.id,
		u.Version,
		u.Voter,
		u.Fee,
		u.ValidHeight,
		u.describeVotes(),
	)
}

type txJSON struct {
	TxID        string          `json:"txid,omitempty"`
	TxType      string          `json:"tx_type"`
	Version     uint32          `json:"ver"`
	Voter       UserID          `json:"tx_uid"`
	Fee         apijson.Uint64  `json:"fees"`
	ValidHeight apijson.Uint64  `json:"valid_height"`
	Votes       []CandidateVote `json:"candidate_votes"`
	Signature   string          `json:"signature"`
}

// MarshalJSON returns the structured view of the tx. The view carries every
// serialized field, so [Tx.UnmarshalJSON] reconstructs an identical tx.
func (tx *Tx) MarshalJSON() ([]byte, error) {
	if tx == nil {
		return nil, ErrNilTx
	}
	if tx.bytes == nil {
		return nil, errNotInitialized
	}
	u := &tx.Unsigned
	votes := u.Votes
	if votes == nil {
		votes = []CandidateVote{}
	}
	return json.Marshal(txJSON{
		TxID:        tx.id.String(),
		TxType:      TxType,
		Version:     u.Version,
		Voter:       u.Voter,
		Fee:         apijson.Uint64(u.Fee),
		ValidHeight: apijson.Uint64(u.ValidHeight),
		Votes:       votes,
		Signature:   hex.EncodeToString(tx.Signature),
	})
}

func (tx *Tx) UnmarshalJSON(b []byte) error {
	var v txJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.TxType != "" && v.TxType != TxType {
		return fmt.Errorf("%w: %q", ErrWrongTxType, v.TxType)
	}
	sig, err := hex.DecodeString(v.Signature)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", err)
	}

	tx.Unsigned = DelegateVoteTx{
		Version:     v.Version,
		ValidHeight: uint64(v.ValidHeight),
		Voter:       v.Voter,
		Fee:         uint64(v.Fee),
		Votes:       v.Votes,
	}
	tx.Signature = sig
	if err := tx.Initialize(Codec); err != nil {
		return err
	}
	if v.TxID != "" && v.TxID != tx.id.String() {
		return fmt.Errorf("%w: expected %s but got %s", ErrTxIDMismatch, tx.id, v.TxID)
	}
	return nil
}
