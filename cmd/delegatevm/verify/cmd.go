// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/delegatevm"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/utils/formatting"
)

const (
	URIKey = "uri"
	TxKey  = "tx"
)

var errMissingTx = errors.New("tx is required")

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "verify",
		Short: "Asks a node whether a signed tx would be accepted in its next block",
		RunE:  verifyFunc,
	}
	flags := c.Flags()
	flags.String(URIKey, "http://127.0.0.1:9650/ext/bc/"+delegatevm.Name, "API URI of the node")
	flags.String(TxKey, "", "Signed tx in hex with checksum, as printed by sign (required)")
	return c
}

func verifyFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	uri, err := flags.GetString(URIKey)
	if err != nil {
		return err
	}
	txStr, err := flags.GetString(TxKey)
	if err != nil {
		return err
	}
	if txStr == "" {
		return errMissingTx
	}

	txBytes, err := formatting.Decode(formatting.Hex, txStr)
	if err != nil {
		return err
	}
	tx, err := txs.Parse(txs.Codec, txBytes)
	if err != nil {
		return err
	}

	client, err := delegatevm.NewClient(uri)
	if err != nil {
		return err
	}
	reply, err := client.VerifyTx(c.Context(), tx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), string(out))
	return err
}
