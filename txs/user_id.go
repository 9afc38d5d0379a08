// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
)

// PubKeyLen is the length of a compressed secp256k1 public key.
const PubKeyLen = 33

var (
	ErrUnknownIdentity   = errors.New("identity must be a public key or a regID")
	ErrMalformedIdentity = errors.New("malformed identity")
	ErrMalformedRegID    = errors.New("malformed regID")
	ErrNotPubKey         = errors.New("identity is not a public key")
)

// RegID is the compact identifier the chain assigns to an account the first
// time the account originates a tx. It names the block height and the tx
// index within that block.
type RegID struct {
	Height uint32 `serialize:"true"`
	Index  uint16 `serialize:"true"`
}

// IsEmpty returns true if no regID has been assigned.
func (r RegID) IsEmpty() bool {
	return r.Height == 0 && r.Index == 0
}

func (r RegID) String() string {
	return fmt.Sprintf("%d-%d", r.Height, r.Index)
}

func (r RegID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RegID) UnmarshalText(text []byte) error {
	parsed, err := ParseRegID(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRegID parses the "<height>-<index>" form of a regID.
func ParseRegID(s string) (RegID, error) {
	heightStr, indexStr, ok := strings.Cut(s, "-")
	if !ok {
		return RegID{}, fmt.Errorf("%w: %q", ErrMalformedRegID, s)
	}
	height, err := strconv.ParseUint(heightStr, 10, 32)
	if err != nil {
		return RegID{}, fmt.Errorf("%w: %q: %w", ErrMalformedRegID, s, err)
	}
	index, err := strconv.ParseUint(indexStr, 10, 16)
	if err != nil {
		return RegID{}, fmt.Errorf("%w: %q: %w", ErrMalformedRegID, s, err)
	}
	return RegID{
		Height: uint32(height),
		Index:  uint16(index),
	}, nil
}

// IdentityKind tags which form of a [UserID] is active.
type IdentityKind byte

const (
	UnknownKind IdentityKind = iota
	PubKeyKind
	RegIDKind
)

func (k IdentityKind) String() string {
	switch k {
	case PubKeyKind:
		return "pubKey"
	case RegIDKind:
		return "regID"
	default:
		return "unknown"
	}
}

// UserID references an account either by its public key or by its regID.
// Exactly one of the two forms is populated, as named by Kind.
type UserID struct {
	Kind   IdentityKind `serialize:"true"`
	PubKey []byte       `serialize:"true"`
	RegID  RegID        `serialize:"true"`
}

func NewPubKeyUserID(pubKey []byte) UserID {
	return UserID{
		Kind:   PubKeyKind,
		PubKey: pubKey,
	}
}

func NewRegIDUserID(regID RegID) UserID {
	return UserID{
		Kind:  RegIDKind,
		RegID: regID,
	}
}

func (u *UserID) normalize() {
	if len(u.PubKey) == 0 {
		u.PubKey = nil
	}
}

func (u UserID) IsPubKey() bool {
	return u.Kind == PubKeyKind
}

func (u UserID) IsRegID() bool {
	return u.Kind == RegIDKind
}

// Verify returns nil iff exactly the form named by Kind is populated. It does
// not check that a public key lies on the curve.
func (u UserID) Verify() error {
	switch u.Kind {
	case PubKeyKind:
		if len(u.PubKey) != PubKeyLen || !u.RegID.IsEmpty() {
			return fmt.Errorf("%w: pubKey identity with %d key bytes and regID %s",
				ErrMalformedIdentity,
				len(u.PubKey),
				u.RegID,
			)
		}
		return nil
	case RegIDKind:
		if len(u.PubKey) != 0 || u.RegID.IsEmpty() {
			return fmt.Errorf("%w: regID identity with %d key bytes and regID %s",
				ErrMalformedIdentity,
				len(u.PubKey),
				u.RegID,
			)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownIdentity, u.Kind)
	}
}

// PubKeyID returns the account key-id derived from the public key form.
func (u UserID) PubKeyID() (ids.ShortID, error) {
	if u.Kind != PubKeyKind {
		return ids.ShortEmpty, ErrNotPubKey
	}
	pk, err := secp256k1.ToPublicKey(u.PubKey)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return pk.Address(), nil
}

func (u UserID) String() string {
	switch u.Kind {
	case PubKeyKind:
		return hex.EncodeToString(u.PubKey)
	case RegIDKind:
		return u.RegID.String()
	default:
		return "unknown"
	}
}

type userIDJSON struct {
	PubKey string `json:"pubKey,omitempty"`
	RegID  string `json:"regID,omitempty"`
}

func (u UserID) MarshalJSON() ([]byte, error) {
	switch u.Kind {
	case PubKeyKind:
		return json.Marshal(userIDJSON{PubKey: hex.EncodeToString(u.PubKey)})
	case RegIDKind:
		return json.Marshal(userIDJSON{RegID: u.RegID.String()})
	default:
		return nil, ErrUnknownIdentity
	}
}

func (u *UserID) UnmarshalJSON(b []byte) error {
	var v userIDJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.PubKey != "" && v.RegID != "":
		return fmt.Errorf("%w: both forms present", ErrMalformedIdentity)
	case v.PubKey != "":
		pubKey, err := hex.DecodeString(v.PubKey)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedIdentity, err)
		}
		*u = NewPubKeyUserID(pubKey)
	case v.RegID != "":
		regID, err := ParseRegID(v.RegID)
		if err != nil {
			return err
		}
		*u = NewRegIDUserID(regID)
	default:
		return ErrUnknownIdentity
	}
	return nil
}
