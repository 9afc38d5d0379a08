// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/delegatevm/cmd/delegatevm/keygen"
	"github.com/luxfi/delegatevm/cmd/delegatevm/serve"
	"github.com/luxfi/delegatevm/cmd/delegatevm/sign"
	"github.com/luxfi/delegatevm/cmd/delegatevm/simulate"
	"github.com/luxfi/delegatevm/cmd/delegatevm/verify"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := &cobra.Command{
		Use:          "delegatevm",
		Short:        "Builds, verifies and simulates delegate vote txs",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		keygen.Command(),
		sign.Command(),
		verify.Command(),
		simulate.Command(),
		serve.Command(),
	)
	ctx := context.Background()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
