// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"

	"github.com/luxfi/delegatevm/txs/fee"
	"github.com/luxfi/delegatevm/upgrade"
	"github.com/luxfi/delegatevm/utils/units"
)

var (
	errNoVoteCandidates = errors.New("max vote candidates must be positive")
	errNoBaseCoinSupply = errors.New("max base coin supply must be positive")
	errNoBaseCoinSymbol = errors.New("base coin symbol must be set")
	errNoAccountCache   = errors.New("account cache size must be positive")
)

var Default = Config{
	MaxVoteCandidates:   22,
	MaxBaseCoinSupply:   210 * units.MegaLux,
	BaseCoinSymbol:      "LUX",
	TxValidHeightWindow: 250,
	AccountCacheSize:    4096,
	Fee: fee.StaticConfig{
		TxFee:       units.MilliLux,
		TxFeePerKiB: 100 * units.MicroLux,
	},
	Upgrades: upgrade.Default,
}

// Config holds the parameters of the delegate vote chain.
type Config struct {
	// Maximum number of candidate votes a single tx may carry
	MaxVoteCandidates int `json:"maxVoteCandidates"`

	// Upper bound of any single coin amount, including fees and vote amounts
	MaxBaseCoinSupply uint64 `json:"maxBaseCoinSupply"`

	// Symbol of the primary asset fees are paid in
	BaseCoinSymbol string `json:"baseCoinSymbol"`

	// How many blocks a tx stays includable after its valid height. Zero
	// disables the check.
	TxValidHeightWindow uint64 `json:"txValidHeightWindow"`

	// Number of decoded accounts kept in memory
	AccountCacheSize int `json:"accountCacheSize"`

	Fee      fee.StaticConfig `json:"fee"`
	Upgrades upgrade.Config   `json:"upgrades"`
}

func (c *Config) Verify() error {
	switch {
	case c.MaxVoteCandidates <= 0:
		return errNoVoteCandidates
	case c.MaxBaseCoinSupply == 0:
		return errNoBaseCoinSupply
	case c.BaseCoinSymbol == "":
		return errNoBaseCoinSymbol
	case c.AccountCacheSize <= 0:
		return errNoAccountCache
	default:
		return nil
	}
}

// GetConfig returns a Config
// input is unmarshalled into a Config previously
// initialized with default values
func GetConfig(b []byte) (*Config, error) {
	c := Default

	// if bytes are empty keep default values
	if len(b) == 0 {
		return &c, nil
	}

	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, c.Verify()
}
