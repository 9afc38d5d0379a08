// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var errCreateHandlers = errors.New("create handlers failed")

type testVM struct {
	handlers map[string]http.Handler
	err      error
}

func (vm *testVM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	return vm.handlers, vm.err
}

func newTestServer(t *testing.T, registerer prometheus.Registerer) (*server, string) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	s, err := New(
		log.NewNoOpLogger(),
		listener,
		[]string{"*"},
		time.Second,
		registerer,
		DefaultHTTPConfig,
	)
	require.NoError(err)
	return s.(*server), "http://" + listener.Addr().String()
}

func teapot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte(strings.Repeat("tea", 1024)))
}

func ok(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(strings.Repeat("ok", 1024)))
}

func TestRegisterChain(t *testing.T) {
	tests := []struct {
		name        string
		vm          *testVM
		wantErr     error
		wantRoutes  []string
		missingPath string
	}{
		{
			name: "default endpoint",
			vm: &testVM{handlers: map[string]http.Handler{
				"": http.HandlerFunc(teapot),
			}},
			wantRoutes: []string{"/ext/bc/chain"},
		},
		{
			name: "extension",
			vm: &testVM{handlers: map[string]http.Handler{
				"/rpc": http.HandlerFunc(teapot),
			}},
			wantRoutes: []string{"/ext/bc/chain/rpc"},
		},
		{
			name: "malformed extension skipped",
			vm: &testVM{handlers: map[string]http.Handler{
				"\n": http.HandlerFunc(teapot),
			}},
		},
		{
			name:    "create handlers error",
			vm:      &testVM{err: errCreateHandlers},
			wantErr: errCreateHandlers,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			s, _ := newTestServer(t, prometheus.NewRegistry())
			defer func() {
				_ = s.listener.Close()
			}()

			err := s.RegisterChain("chain", test.vm)
			require.ErrorIs(err, test.wantErr)

			routes := make([]string, 0, len(s.routes))
			for route := range s.routes {
				routes = append(routes, route)
			}
			require.ElementsMatch(test.wantRoutes, routes)
		})
	}
}

func TestAddRouteAlreadyReserved(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, prometheus.NewRegistry())
	defer func() {
		_ = s.listener.Close()
	}()

	require.NoError(s.AddRoute(http.HandlerFunc(teapot), "health", ""))
	err := s.AddRoute(http.HandlerFunc(teapot), "health", "")
	require.ErrorIs(err, errAlreadyReserved)
}

func TestDispatch(t *testing.T) {
	require := require.New(t)

	registry := prometheus.NewRegistry()
	s, baseURL := newTestServer(t, registry)
	require.NoError(s.RegisterChain("chain", &testVM{handlers: map[string]http.Handler{
		"": http.HandlerFunc(teapot),
	}}))

	served := make(chan error, 1)
	go func() {
		served <- s.Dispatch()
	}()

	resp, err := http.Get(baseURL + "/ext/bc/chain")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusTeapot, resp.StatusCode)
	require.Equal(strings.Repeat("tea", 1024), string(body))

	resp, err = http.Get(baseURL + "/ext/bc/unknown")
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusNotFound, resp.StatusCode)

	require.Equal(1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues(http.MethodGet, "chain")))
	require.Zero(testutil.ToFloat64(s.metrics.inflight))

	require.NoError(s.Shutdown())
	require.ErrorIs(<-served, http.ErrServerClosed)
}

func TestWrapHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		wantEncoding   string
		wantAllowedOrg string
	}{
		{
			name: "plain",
		},
		{
			name: "gzip",
			headers: map[string]string{
				"Accept-Encoding": "gzip",
			},
			wantEncoding: "gzip",
		},
		{
			name: "cross origin",
			headers: map[string]string{
				"Origin": "http://example.com",
			},
			wantAllowedOrg: "http://example.com",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			handler := wrapHandler(http.HandlerFunc(ok), []string{"http://example.com"})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range test.headers {
				req.Header.Set(key, value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(http.StatusOK, w.Code)
			require.Equal(test.wantEncoding, w.Header().Get("Content-Encoding"))
			require.Equal(test.wantAllowedOrg, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
