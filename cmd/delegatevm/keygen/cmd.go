// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keygen

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/ids"
)

const OutputKey = "output"

type Key struct {
	PrivateKey string      `json:"privateKey"`
	PubKey     string      `json:"pubKey"`
	KeyID      ids.ShortID `json:"keyID"`
}

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "keygen",
		Short: "Generates a secp256k1 key usable as a voter or candidate",
		Args:  cobra.NoArgs,
		RunE:  keygenFunc,
	}
	c.Flags().String(OutputKey, "", "File the key is written to instead of stdout")
	return c
}

func keygenFunc(c *cobra.Command, _ []string) error {
	output, err := c.Flags().GetString(OutputKey)
	if err != nil {
		return err
	}

	sk, err := secp256k1.NewPrivateKey()
	if err != nil {
		return err
	}
	pk := sk.PublicKey()
	out, err := json.MarshalIndent(Key{
		PrivateKey: sk.String(),
		PubKey:     hex.EncodeToString(pk.Bytes()),
		KeyID:      pk.Address(),
	}, "", "  ")
	if err != nil {
		return err
	}

	if output != "" {
		// The key file is either fully written or left untouched.
		return renameio.WriteFile(output, append(out, '\n'), 0o600)
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), string(out))
	return err
}
