// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	baseURL              = "/ext"
	chainAliasPrefix     = "bc"
	maxConcurrentStreams = 64
)

var (
	_ Server = (*server)(nil)

	errAlreadyReserved = errors.New("route is either already aliased or already maps to a handle")
)

type PathAdder interface {
	// AddRoute registers a route to a handler.
	AddRoute(handler http.Handler, base, endpoint string) error
}

// ChainVM is a VM whose API is served under "/ext/bc/<chain name>".
type ChainVM interface {
	CreateHandlers(context.Context) (map[string]http.Handler, error)
}

// Server maintains the HTTP router
type Server interface {
	PathAdder
	// Dispatch starts the API server
	Dispatch() error
	// RegisterChain registers the API endpoints associated with this chain.
	// That is, add <route, handler> pairs to server so that API calls can be
	// made to the VM.
	RegisterChain(chainName string, vm ChainVM) error
	// Shutdown this server
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

var DefaultHTTPConfig = HTTPConfig{
	ReadTimeout:       30 * time.Second,
	ReadHeaderTimeout: 30 * time.Second,
	WriteTimeout:      30 * time.Second,
	IdleTimeout:       120 * time.Second,
}

type server struct {
	// log this server writes to
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	// Maps endpoints to handlers
	router *mux.Router
	lock   sync.Mutex
	routes map[string]struct{}

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	logger log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer prometheus.Registerer,
	httpConfig HTTPConfig,
) (Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			wrapHandler(router, allowedOrigins),
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	logger.Info("API created",
		log.String("allowedOrigins", strings.Join(allowedOrigins, ",")),
	)

	return &server{
		log:             logger,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          router,
		routes:          make(map[string]struct{}),
		srv:             httpServer,
		listener:        listener,
	}, nil
}

func (s *server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *server) RegisterChain(chainName string, vm ChainVM) error {
	handlers, err := vm.CreateHandlers(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to create handlers of chain %s: %w", chainName, err)
	}

	// all subroutes to a chain begin with "bc/<the chain's name>"
	defaultEndpoint := chainAliasPrefix + "/" + chainName
	for extension, handler := range handlers {
		// Validate that the route being added is valid
		// e.g. "/foo" and "" are ok but "\n" is not
		if _, err := url.ParseRequestURI(extension); extension != "" && err != nil {
			s.log.Error("could not add route to chain's API handler",
				log.String("reason", "route is malformed"),
				log.Err(err),
			)
			continue
		}
		handler = s.metrics.wrapHandler(chainName, handler)
		if err := s.AddRoute(handler, defaultEndpoint, extension); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := fmt.Sprintf("%s/%s", baseURL, base)
	s.log.Info("adding route",
		log.String("url", url),
		log.String("endpoint", endpoint),
	)

	s.lock.Lock()
	defer s.lock.Unlock()

	route := url + endpoint
	if _, exists := s.routes[route]; exists {
		return fmt.Errorf("%w: %s", errAlreadyReserved, route)
	}
	s.routes[route] = struct{}{}
	s.router.Handle(route, handler)
	return nil
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(handler http.Handler, allowedOrigins []string) http.Handler {
	h := gzhttp.GzipHandler(handler)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}
