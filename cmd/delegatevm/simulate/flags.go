// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulate

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/pflag"

	"github.com/luxfi/delegatevm/utils/units"
)

const (
	VotersKey     = "voters"
	CandidatesKey = "candidates"
	BalanceKey    = "balance"
	PledgeKey     = "pledge"
	BlocksKey     = "blocks"
	ConfigKey     = "config"
	VerboseKey    = "verbose"
)

var (
	errNoVoters          = errors.New("at least one voter is required")
	errTooFewCandidates  = errors.New("at least two candidates are required")
	errTooManyCandidates = errors.New("too many candidates")
	errNoPledge          = errors.New("pledge must be positive")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.Int(VotersKey, 3, "Number of funded voters")
	flags.Int(CandidatesKey, 5, "Number of registered candidates")
	flags.Uint64(BalanceKey, 1000*units.Lux, "Genesis balance of every voter")
	flags.Uint64(PledgeKey, 10*units.Lux, "Votes a voter pledges per block")
	flags.Int(BlocksKey, 3, "Number of blocks to apply")
	flags.String(ConfigKey, "", "Chain config file")
	flags.Bool(VerboseKey, false, "Include every tx in the report")
}

type Config struct {
	Voters     int
	Candidates int
	Balance    uint64
	Pledge     uint64
	Blocks     int
	ConfigPath string
	Verbose    bool
}

func (c *Config) Verify() error {
	switch {
	case c.Voters <= 0:
		return errNoVoters
	case c.Candidates < 2:
		return fmt.Errorf("%w: %d", errTooFewCandidates, c.Candidates)
	case c.Candidates > math.MaxUint16:
		return fmt.Errorf("%w: %d", errTooManyCandidates, c.Candidates)
	case c.Pledge == 0:
		return errNoPledge
	default:
		return nil
	}
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	voters, err := flags.GetInt(VotersKey)
	if err != nil {
		return nil, err
	}

	candidates, err := flags.GetInt(CandidatesKey)
	if err != nil {
		return nil, err
	}

	balance, err := flags.GetUint64(BalanceKey)
	if err != nil {
		return nil, err
	}

	pledge, err := flags.GetUint64(PledgeKey)
	if err != nil {
		return nil, err
	}

	blocks, err := flags.GetInt(BlocksKey)
	if err != nil {
		return nil, err
	}

	configPath, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}

	verbose, err := flags.GetBool(VerboseKey)
	if err != nil {
		return nil, err
	}

	c := &Config{
		Voters:     voters,
		Candidates: candidates,
		Balance:    balance,
		Pledge:     pledge,
		Blocks:     blocks,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
	return c, c.Verify()
}
