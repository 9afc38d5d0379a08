// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulate

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm"
	"github.com/luxfi/delegatevm/cmd/delegatevm/sign"
	"github.com/luxfi/delegatevm/genesis"
	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/fee"
	"github.com/luxfi/delegatevm/utils"

	apijson "github.com/luxfi/utils/json"
)

type BlockReport struct {
	Height  uint64                `json:"height"`
	Txs     []*txs.Tx             `json:"txs,omitempty"`
	Results []delegatevm.TxResult `json:"results"`
}

type Report struct {
	Blocks    []BlockReport    `json:"blocks"`
	Accepted  int              `json:"accepted"`
	Dropped   int              `json:"dropped"`
	Delegates []state.Delegate `json:"delegates"`
}

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "simulate",
		Short: "Applies blocks of generated vote txs to an in-memory ledger",
		RunE:  simulateFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func simulateFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	cfg, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	configBytes, err := utils.ReadOptionalFile(cfg.ConfigPath)
	if err != nil {
		return err
	}

	report, err := Run(c.Context(), cfg, configBytes, log.NewLogger(delegatevm.Name))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), string(out))
	return err
}

// Run funds [cfg.Voters] voters and registers [cfg.Candidates] candidates at
// genesis. In every block each voter pledges on the next candidate and
// redeems half of its previous pledge.
func Run(ctx context.Context, cfg *Config, configBytes []byte, logger log.Logger) (*Report, error) {
	voters, err := newKeys(cfg.Voters)
	if err != nil {
		return nil, err
	}
	candidates, err := newKeys(cfg.Candidates)
	if err != nil {
		return nil, err
	}

	g := &genesis.Genesis{
		Allocations: make([]genesis.Allocation, 0, len(voters)+len(candidates)),
	}
	for _, voter := range voters {
		g.Allocations = append(g.Allocations, genesis.Allocation{
			PubKey:  hex.EncodeToString(voter.PublicKey().Bytes()),
			Balance: apijson.Uint64(cfg.Balance),
		})
	}
	for _, candidate := range candidates {
		g.Allocations = append(g.Allocations, genesis.Allocation{
			PubKey:     hex.EncodeToString(candidate.PublicKey().Bytes()),
			Registered: true,
		})
	}
	genesisBytes, err := g.Bytes()
	if err != nil {
		return nil, err
	}

	factory := &delegatevm.Factory{}
	vm, err := factory.New(logger)
	if err != nil {
		return nil, err
	}
	if err := vm.Initialize(ctx, memdb.New(), genesisBytes, configBytes, prometheus.NewRegistry()); err != nil {
		return nil, err
	}
	defer func() {
		_ = vm.Shutdown(ctx)
	}()

	calculator := fee.NewStaticCalculator(vm.Config().Fee)
	report := &Report{
		Blocks: make([]BlockReport, 0, cfg.Blocks),
	}
	for b := 1; b <= cfg.Blocks; b++ {
		height := uint64(b)
		blockTxs := make([]*txs.Tx, len(voters))
		for i, voter := range voters {
			votes := []txs.CandidateVote{{
				VoteType:  txs.Pledge,
				Candidate: candidateID(candidates, i+b, b),
				Amount:    cfg.Pledge,
			}}
			if redeem := cfg.Pledge / 2; b > 1 && redeem > 0 {
				votes = append(votes, txs.CandidateVote{
					VoteType:  txs.Redeem,
					Candidate: candidateID(candidates, i+b-1, b),
					Amount:    redeem,
				})
			}

			voterCfg := sign.NewKeyConfig(voter, height, votes...)
			account, err := vm.GetAccount(voterCfg.Voter)
			if err != nil {
				return nil, err
			}
			if account.HasRegID() {
				voterCfg.Voter = txs.NewRegIDUserID(account.RegID)
			}
			blockTxs[i], err = sign.Build(voterCfg, calculator)
			if err != nil {
				return nil, err
			}
		}

		results, err := vm.ApplyBlock(ctx, height, blockTxs)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			if result.Accepted {
				report.Accepted++
			} else {
				report.Dropped++
			}
		}

		blockReport := BlockReport{
			Height:  height,
			Results: results,
		}
		if cfg.Verbose {
			blockReport.Txs = blockTxs
		}
		report.Blocks = append(report.Blocks, blockReport)
	}

	report.Delegates, err = vm.GetDelegates(vm.Config().MaxVoteCandidates)
	return report, err
}

// candidateID names candidate [i] by regID in even blocks and by public key
// in odd blocks. Registered genesis candidates hold the regIDs "0-1"
// onwards, in allocation order.
func candidateID(candidates []*secp256k1.PrivateKey, i, block int) txs.UserID {
	i %= len(candidates)
	if block%2 == 0 {
		return txs.NewRegIDUserID(txs.RegID{
			Height: 0,
			Index:  uint16(i + 1),
		})
	}
	return txs.NewPubKeyUserID(candidates[i].PublicKey().Bytes())
}

func newKeys(n int) ([]*secp256k1.PrivateKey, error) {
	keys := make([]*secp256k1.PrivateKey, n)
	for i := range keys {
		var err error
		keys[i], err = secp256k1.NewPrivateKey()
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}
