// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sign

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/crypto/secp256k1"

	"github.com/luxfi/delegatevm/config"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/fee"
	"github.com/luxfi/delegatevm/utils"
	"github.com/luxfi/delegatevm/utils/formatting"
)

// Output is a signed tx in its encoded, structured and described forms.
type Output struct {
	Tx          string  `json:"tx"`
	Structured  *txs.Tx `json:"structured"`
	Description string  `json:"description"`
}

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "sign",
		Short: "Builds and signs a delegate vote tx",
		RunE:  signFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func signFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	cfg, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	configBytes, err := utils.ReadOptionalFile(cfg.ConfigPath)
	if err != nil {
		return err
	}
	chainConfig, err := config.GetConfig(configBytes)
	if err != nil {
		return err
	}

	tx, err := Build(cfg, fee.NewStaticCalculator(chainConfig.Fee))
	if err != nil {
		return err
	}

	txStr, err := formatting.Encode(formatting.Hex, tx.Bytes())
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(Output{
		Tx:          txStr,
		Structured:  tx,
		Description: tx.String(),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), string(out))
	return err
}

// Build signs the tx described by [cfg]. A zero fee is replaced by the
// minimum fee [calculator] charges for the tx.
func Build(cfg *Config, calculator fee.Calculator) (*txs.Tx, error) {
	utx := txs.DelegateVoteTx{
		Version:     txs.CurrentVersion,
		ValidHeight: cfg.ValidHeight,
		Voter:       cfg.Voter,
		Fee:         cfg.Fee,
		Votes:       cfg.Votes,
	}
	tx, err := txs.NewSigned(txs.Codec, utx, cfg.PrivateKey)
	if err != nil || cfg.Fee != 0 {
		return tx, err
	}

	// The fee is fixed width so the size does not depend on its value.
	utx.Fee, err = calculator.CalculateFee(tx)
	if err != nil {
		return nil, err
	}
	return txs.NewSigned(txs.Codec, utx, cfg.PrivateKey)
}

// NewKeyConfig returns the config of a tx signed by [sk] under its public
// key.
func NewKeyConfig(sk *secp256k1.PrivateKey, validHeight uint64, votes ...txs.CandidateVote) *Config {
	return &Config{
		PrivateKey:  sk,
		Voter:       txs.NewPubKeyUserID(sk.PublicKey().Bytes()),
		ValidHeight: validHeight,
		Votes:       votes,
	}
}
