// =============================================================================
// server.go - TVPaint Endpoint Discovery and Session Setup
// =============================================================================
//
// Finds the George endpoint to talk to and builds the client around it. The
// CLI connects either to the George JSON-RPC WebSocket plugin (the default)
// or to a line bridge listening on a socket:
//
//   1. --socket <path>            unix socket bridge at path
//   2. --socket tcp://host:port   tcp bridge
//   3. socket transport, no path  most recent /tmp/tvpaint-george-<pid>.sock
//   4. otherwise                  WebSocket at --url / config / TVP_URL
//
// Every session wraps the transport with the logging middleware, and with the
// metrics and journal middlewares when they are enabled.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/internal/config"
	"github.com/johhnry/gotvpaint/internal/journal"
	"github.com/johhnry/gotvpaint/internal/logging"
)

// tcpScheme marks a --socket value as a tcp address.
const tcpScheme = "tcp://"

// session is one connection to TVPaint with its supporting stores.
type session struct {
	client   *george.Client
	logger   *slog.Logger
	endpoint string

	// registry is nil unless metrics are enabled.
	registry *prometheus.Registry
	// journal is nil unless --journal is set.
	journal *journal.Store
}

// socketAddress splits a --socket value into a network and an address. An
// empty value means "discover".
func socketAddress(value string) (network, address string) {
	if rest, ok := strings.CutPrefix(value, tcpScheme); ok {
		return "tcp", rest
	}
	return "unix", value
}

// dialTransport connects to the endpoint selected by cfg.
func dialTransport(ctx context.Context, cfg config.Config) (george.Transport, string, error) {
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	switch cfg.Transport {
	case config.TransportSocket:
		if cfg.Socket == "" {
			t, err := george.DiscoverAndDial(ctx)
			if errors.Is(err, george.ErrSocketNotFound) {
				return nil, "", fmt.Errorf("%w: is the George bridge running?", err)
			}
			if err != nil {
				return nil, "", err
			}
			return t, t.Address(), nil
		}
		network, address := socketAddress(cfg.Socket)
		t, err := george.DialSocket(ctx, network, address)
		if err != nil {
			return nil, "", err
		}
		return t, address, nil
	default:
		t, err := george.DialWebSocket(ctx, cfg.URL)
		if err != nil {
			return nil, "", err
		}
		return t, t.URL(), nil
	}
}

// openSession connects and assembles the client. Logs go to logOut.
func openSession(ctx context.Context, cfg config.Config, logOut io.Writer) (*session, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	s := &session{logger: logging.NewWriter(logOut, level)}

	middlewares := []george.Middleware{george.LoggingMiddleware(s.logger)}
	if cfg.MetricsAddr != "" {
		s.registry = prometheus.NewRegistry()
		middlewares = append(middlewares, george.MetricsMiddleware(george.NewMetrics(s.registry)))
	}
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, err
		}
		s.journal = store
		middlewares = append(middlewares, journal.Middleware(store, s.logger))
	}

	transport, endpoint, err := dialTransport(ctx, cfg)
	if err != nil {
		s.closeStores()
		return nil, err
	}
	if st, ok := transport.(*george.SocketTransport); ok {
		st.SetDisconnectHandler(func(err error) {
			s.logger.Error("disconnected from TVPaint", "endpoint", endpoint, "error", err)
		})
	}

	s.endpoint = endpoint
	s.client = george.NewClient(transport,
		george.WithLogger(s.logger),
		george.WithMiddleware(middlewares...),
	)
	s.logger.Debug("connected", "endpoint", endpoint, "transport", cfg.Transport)
	return s, nil
}

func (s *session) closeStores() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("closing journal", "error", err)
		}
	}
}

// Close disconnects and closes the journal.
func (s *session) Close() error {
	err := s.client.Close()
	s.closeStores()
	return err
}
