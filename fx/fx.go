// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fx verifies the cryptographic material attached to vote txs.
package fx

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
)

var (
	_ Verifier = (*Secp256k1Fx)(nil)

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Verifier checks public keys and signatures. Implementations must be safe for
// concurrent use because txs may be verified in parallel.
type Verifier interface {
	// ParsePublicKey returns the key-id of [pubKey], or an error if the bytes
	// do not encode a point on the curve.
	ParsePublicKey(pubKey []byte) (ids.ShortID, error)

	// VerifyHash returns nil iff [sig] was produced over [hash] by the owner
	// of [pubKey].
	VerifyHash(pubKey []byte, hash []byte, sig []byte) error
}

// Secp256k1Fx is the production [Verifier].
type Secp256k1Fx struct{}

func (*Secp256k1Fx) ParsePublicKey(pubKey []byte) (ids.ShortID, error) {
	pk, err := secp256k1.ToPublicKey(pubKey)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return pk.Address(), nil
}

func (*Secp256k1Fx) VerifyHash(pubKey []byte, hash []byte, sig []byte) error {
	pk, err := secp256k1.ToPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	if !pk.VerifyHash(hash, sig) {
		return ErrInvalidSignature
	}
	return nil
}
