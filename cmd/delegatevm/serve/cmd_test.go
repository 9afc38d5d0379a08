// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm"
	"github.com/luxfi/delegatevm/api/health"
	"github.com/luxfi/delegatevm/api/server"
	"github.com/luxfi/delegatevm/genesis"
	"github.com/luxfi/delegatevm/txs"
)

func TestRegister(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	sk, err := secp256k1.NewPrivateKey()
	require.NoError(err)
	g := &genesis.Genesis{
		Allocations: []genesis.Allocation{
			{PubKey: hex.EncodeToString(sk.PublicKey().Bytes()), Balance: 50, Registered: true},
		},
	}
	genesisBytes, err := g.Bytes()
	require.NoError(err)

	vm, err := (&delegatevm.Factory{}).New(log.NewNoOpLogger())
	require.NoError(err)
	registry := prometheus.NewRegistry()
	require.NoError(vm.Initialize(ctx, memdb.New(), genesisBytes, nil, registry))
	defer func() {
		require.NoError(vm.Shutdown(ctx))
	}()

	_, err = vm.ApplyBlock(ctx, 1, nil)
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	apiServer, err := server.New(
		log.NewNoOpLogger(),
		listener,
		[]string{"*"},
		time.Second,
		registry,
		server.DefaultHTTPConfig,
	)
	require.NoError(err)
	require.NoError(Register(apiServer, vm, registry))

	served := make(chan error, 1)
	go func() {
		served <- apiServer.Dispatch()
	}()
	defer func() {
		require.NoError(apiServer.Shutdown())
		require.ErrorIs(<-served, http.ErrServerClosed)
	}()

	baseURL := "http://" + listener.Addr().String()
	client, err := delegatevm.NewClient(baseURL + APIPath)
	require.NoError(err)
	account, err := client.GetAccount(ctx, txs.NewRegIDUserID(txs.RegID{Height: 0, Index: 1}))
	require.NoError(err)
	require.Equal(sk.PublicKey().Address(), account.KeyID)

	resp, err := http.Get(baseURL + metricsPath)
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Contains(string(body), "last_applied_height 1")
	require.Contains(string(body), `api_requests_total{chain="delegatevm",method="POST"} 1`)

	resp, err = http.Get(baseURL + healthPath)
	require.NoError(err)
	var reply health.APIReply
	require.NoError(json.NewDecoder(resp.Body).Decode(&reply))
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.True(reply.Healthy)
}

func TestCommandDescribesGenesisLedger(t *testing.T) {
	c := Command()
	require.Contains(t, c.Short, "genesis")
	require.Contains(t, c.Long, "stays at genesis")
}

func TestParseFlags(t *testing.T) {
	require := require.New(t)

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	AddFlags(flags)
	_, err := ParseFlags(flags, nil)
	require.ErrorIs(err, errMissingGenesis)

	flags = pflag.NewFlagSet("serve", pflag.ContinueOnError)
	AddFlags(flags)
	cfg, err := ParseFlags(flags, []string{
		"--" + GenesisKey + "=genesis.json",
		"--" + HTTPPortKey + "=9700",
	})
	require.NoError(err)
	require.Equal(&Config{
		HTTPHost:       "127.0.0.1",
		HTTPPort:       9700,
		AllowedOrigins: []string{"*"},
		GenesisPath:    "genesis.json",
	}, cfg)
}
