// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/delegatevm"
	"github.com/luxfi/delegatevm/api/health"
	"github.com/luxfi/delegatevm/api/server"
	"github.com/luxfi/delegatevm/utils"
)

const (
	// APIPath is where the JSON-RPC service is served.
	APIPath     = "/ext/bc/" + delegatevm.Name
	metricsPath = "/ext/metrics"
	healthPath  = "/ext/health"

	shutdownTimeout = 5 * time.Second
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the query API over an in-memory genesis ledger",
		Long: "Serves the JSON-RPC query API, metrics and health over a ledger built from\n" +
			"the genesis file and held in memory. The served ledger stays at genesis:\n" +
			"blocks are applied through the VM by an embedding node or by simulate, and\n" +
			"verifyTx checks txs against the genesis state.",
		RunE: serveFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	cfg, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	genesisBytes, err := utils.ReadFile(cfg.GenesisPath)
	if err != nil {
		return err
	}
	configBytes, err := utils.ReadOptionalFile(cfg.ConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewLogger(delegatevm.Name)
	factory := &delegatevm.Factory{}
	vm, err := factory.New(logger)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	if err := vm.Initialize(ctx, memdb.New(), genesisBytes, configBytes, registry); err != nil {
		return err
	}
	defer func() {
		_ = vm.Shutdown(context.Background())
	}()

	address := net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(int(cfg.HTTPPort)))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	apiServer, err := server.New(
		logger,
		listener,
		cfg.AllowedOrigins,
		shutdownTimeout,
		registry,
		server.DefaultHTTPConfig,
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := Register(apiServer, vm, registry); err != nil {
		_ = listener.Close()
		return err
	}

	logger.Info("serving API",
		log.String("address", listener.Addr().String()),
		log.String("path", APIPath),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Shutdown()
	})
	return g.Wait()
}

// Register routes the VM API, a health check of the VM and the metrics of
// [registry] on [apiServer].
func Register(apiServer server.Server, vm *delegatevm.VM, registry *prometheus.Registry) error {
	if err := apiServer.RegisterChain(delegatevm.Name, vm); err != nil {
		return err
	}
	healthHandler, err := health.NewHandler(vm, registry)
	if err != nil {
		return err
	}
	if err := apiServer.AddRoute(healthHandler, "health", ""); err != nil {
		return err
	}
	return apiServer.AddRoute(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), "metrics", "")
}
