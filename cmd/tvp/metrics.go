// =============================================================================
// metrics.go - Prometheus Endpoint
// =============================================================================
//
// With --metrics-addr the CLI serves the command counters and latency
// histograms of its session on /metrics while the REPL or a subcommand runs.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 2 * time.Second

// withMetrics runs fn while serving reg on addr. The server stops when fn
// returns; a server failure cancels the context passed to fn.
func withMetrics(ctx context.Context, addr string, reg *prometheus.Registry, fn func(ctx context.Context) error) error {
	if addr == "" || reg == nil {
		return fn(ctx)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-done:
		case <-gctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer close(done)
		return fn(gctx)
	})
	return g.Wait()
}
