// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sign

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/luxfi/crypto/secp256k1"

	"github.com/luxfi/delegatevm/txs"
)

const (
	PrivateKeyKey  = "private-key"
	VoterRegIDKey  = "voter-regid"
	FeeKey         = "fee"
	ValidHeightKey = "valid-height"
	VoteKey        = "vote"
	ConfigKey      = "config"
)

var errMalformedVote = errors.New("vote must be formatted as <pledge|redeem>:<regID|pubKey>:<amount>")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(PrivateKeyKey, "", "Private key of the voter (required)")
	flags.String(VoterRegIDKey, "", "Name the voter by this regID instead of its public key")
	flags.Uint64(FeeKey, 0, "Fee to pay. Zero pays the minimum fee of the chain config")
	flags.Uint64(ValidHeightKey, 0, "Height the tx is built for")
	flags.StringArray(VoteKey, nil, "Candidate vote as <pledge|redeem>:<regID|pubKey>:<amount>. Repeatable")
	flags.String(ConfigKey, "", "Chain config file used to compute the minimum fee")
}

type Config struct {
	PrivateKey  *secp256k1.PrivateKey
	Voter       txs.UserID
	Fee         uint64
	ValidHeight uint64
	Votes       []txs.CandidateVote
	ConfigPath  string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	skStr, err := flags.GetString(PrivateKeyKey)
	if err != nil {
		return nil, err
	}
	var sk secp256k1.PrivateKey
	if err := sk.UnmarshalText([]byte(skStr)); err != nil {
		return nil, err
	}

	voter := txs.NewPubKeyUserID(sk.PublicKey().Bytes())
	regIDStr, err := flags.GetString(VoterRegIDKey)
	if err != nil {
		return nil, err
	}
	if regIDStr != "" {
		regID, err := txs.ParseRegID(regIDStr)
		if err != nil {
			return nil, err
		}
		voter = txs.NewRegIDUserID(regID)
	}

	fee, err := flags.GetUint64(FeeKey)
	if err != nil {
		return nil, err
	}

	validHeight, err := flags.GetUint64(ValidHeightKey)
	if err != nil {
		return nil, err
	}

	voteStrs, err := flags.GetStringArray(VoteKey)
	if err != nil {
		return nil, err
	}
	votes := make([]txs.CandidateVote, len(voteStrs))
	for i, voteStr := range voteStrs {
		votes[i], err = ParseVote(voteStr)
		if err != nil {
			return nil, err
		}
	}

	configPath, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		PrivateKey:  &sk,
		Voter:       voter,
		Fee:         fee,
		ValidHeight: validHeight,
		Votes:       votes,
		ConfigPath:  configPath,
	}, nil
}

// ParseVote parses "<pledge|redeem>:<regID|pubKey>:<amount>". A candidate
// containing a dash is a regID, otherwise a hex public key.
func ParseVote(s string) (txs.CandidateVote, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return txs.CandidateVote{}, fmt.Errorf("%w: %q", errMalformedVote, s)
	}

	var voteType txs.VoteType
	if err := voteType.UnmarshalText([]byte(parts[0])); err != nil {
		return txs.CandidateVote{}, err
	}

	var candidate txs.UserID
	if strings.Contains(parts[1], "-") {
		regID, err := txs.ParseRegID(parts[1])
		if err != nil {
			return txs.CandidateVote{}, err
		}
		candidate = txs.NewRegIDUserID(regID)
	} else {
		pubKey, err := hex.DecodeString(parts[1])
		if err != nil {
			return txs.CandidateVote{}, fmt.Errorf("%w: %w", errMalformedVote, err)
		}
		candidate = txs.NewPubKeyUserID(pubKey)
	}

	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return txs.CandidateVote{}, fmt.Errorf("%w: %w", errMalformedVote, err)
	}
	return txs.CandidateVote{
		VoteType:  voteType,
		Candidate: candidate,
		Amount:    amount,
	}, nil
}
