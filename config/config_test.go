// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/delegatevm/txs/fee"
	"github.com/luxfi/delegatevm/upgrade"
)

func TestConfigUnmarshal(t *testing.T) {
	t.Run("default values from empty json", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig([]byte(`{}`))
		require.NoError(err)
		require.Equal(&Default, c)
	})

	t.Run("default values from empty bytes", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig(nil)
		require.NoError(err)
		require.Equal(&Default, c)
	})

	t.Run("mix default and extracted values from json", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig([]byte(`{"maxVoteCandidates":11,"upgrades":{"registeredHeight":100}}`))
		require.NoError(err)
		expected := Default
		expected.MaxVoteCandidates = 11
		expected.Upgrades.RegisteredHeight = 100
		require.Equal(&expected, c)
	})

	t.Run("all values extracted from json", func(t *testing.T) {
		require := require.New(t)

		expected := &Config{
			MaxVoteCandidates:   1,
			MaxBaseCoinSupply:   2,
			BaseCoinSymbol:      "TST",
			TxValidHeightWindow: 3,
			AccountCacheSize:    4,
			Fee: fee.StaticConfig{
				TxFee:       5,
				TxFeePerKiB: 6,
			},
			Upgrades: upgrade.Config{
				RegisteredHeight: 7,
			},
		}
		b, err := json.Marshal(expected)
		require.NoError(err)

		actual, err := GetConfig(b)
		require.NoError(err)
		require.Equal(expected, actual)
	})

	t.Run("invalid values", func(t *testing.T) {
		require := require.New(t)
		_, err := GetConfig([]byte(`{"maxVoteCandidates":0}`))
		require.ErrorIs(err, errNoVoteCandidates)

		_, err = GetConfig([]byte(`{"baseCoinSymbol":""}`))
		require.ErrorIs(err, errNoBaseCoinSymbol)
	})
}
