// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package upgrade maps chain heights onto the set of consensus rules that are
// active at that height.
package upgrade

import "fmt"

// Version identifies a consensus rule set.
type Version uint8

const (
	// Genesis rules: vote txs are accepted without a signature check and
	// candidates may be unregistered identities.
	Genesis Version = iota + 1
	// Registered rules: vote txs must be signed by the voter and every
	// candidate must have a registered public key.
	Registered
)

func (v Version) String() string {
	switch v {
	case Genesis:
		return "genesis"
	case Registered:
		return "registered"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// Default activates the registered rules from the first block.
var Default = Config{
	RegisteredHeight: 0,
}

// Config holds the activation height of every rule change.
type Config struct {
	// First height at which [Registered] rules apply.
	RegisteredHeight uint64 `json:"registeredHeight"`
}

// VersionAt returns the rule set active at [height].
func (c Config) VersionAt(height uint64) Version {
	if height >= c.RegisteredHeight {
		return Registered
	}
	return Genesis
}

// RequiresSignature reports whether txs included at [height] must carry a
// valid voter signature.
func (c Config) RequiresSignature(height uint64) bool {
	return c.VersionAt(height) >= Registered
}

// RequiresRegisteredCandidate reports whether votes included at [height] may
// only target candidates that have published their public key.
func (c Config) RequiresRegisteredCandidate(height uint64) bool {
	return c.VersionAt(height) >= Registered
}
