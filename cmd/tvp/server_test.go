// =============================================================================
// server_test.go - Tests for Session Setup and the Metrics Endpoint
// =============================================================================

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/johhnry/gotvpaint/george"
	"github.com/johhnry/gotvpaint/george/georgetest"
	"github.com/johhnry/gotvpaint/internal/config"
)

func TestSocketAddress(t *testing.T) {
	tests := []struct {
		value       string
		wantNetwork string
		wantAddress string
	}{
		{value: "/tmp/tvpaint-george-42.sock", wantNetwork: "unix", wantAddress: "/tmp/tvpaint-george-42.sock"},
		{value: "tcp://studio-07:7000", wantNetwork: "tcp", wantAddress: "studio-07:7000"},
		{value: "tcp://127.0.0.1:0", wantNetwork: "tcp", wantAddress: "127.0.0.1:0"},
	}
	for _, tc := range tests {
		network, address := socketAddress(tc.value)
		if network != tc.wantNetwork || address != tc.wantAddress {
			t.Errorf("socketAddress(%q) = %q, %q", tc.value, network, address)
		}
	}
}

func TestOpenSessionOverUnixSocket(t *testing.T) {
	_, bridge := startHost(t)
	cfg := config.Default()
	cfg.Transport, cfg.Socket = config.TransportSocket, bridge.Path()

	s, err := openSession(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	if s.endpoint != bridge.Path() {
		t.Errorf("endpoint = %q", s.endpoint)
	}
	if s.registry != nil || s.journal != nil {
		t.Error("metrics and journal should be off by default")
	}
	reply, err := s.client.SendRaw(context.Background(), "tv_GetHeight")
	if err != nil || reply != "1080" {
		t.Errorf("tv_GetHeight = %q, %v", reply, err)
	}
}

func TestOpenSessionOverTCP(t *testing.T) {
	host, _ := georgetest.NewHostWithProject(testProjectPath)
	addr := serveTCPBridge(t, host)

	cfg := config.Default()
	cfg.Transport, cfg.Socket = config.TransportSocket, tcpScheme+addr
	s, err := openSession(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	if reply, err := s.client.SendRaw(context.Background(), "tv_GetWidth"); err != nil || reply != "1920" {
		t.Errorf("tv_GetWidth = %q, %v", reply, err)
	}
}

// serveTCPBridge relays a tcp listener to a unix bridge for host.
func serveTCPBridge(t *testing.T, host *georgetest.Host) string {
	t.Helper()
	bridge := georgetest.StartBridge(t, host)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			upstream, err := net.Dial("unix", bridge.Path())
			if err != nil {
				conn.Close()
				return
			}
			go func() { io.Copy(upstream, conn); upstream.Close() }()
			go func() { io.Copy(conn, upstream); conn.Close() }()
		}
	}()
	return ln.Addr().String()
}

func TestOpenSessionWithJournalAndMetrics(t *testing.T) {
	_, bridge := startHost(t)
	cfg := config.Default()
	cfg.Transport, cfg.Socket = config.TransportSocket, bridge.Path()
	cfg.Journal = filepath.Join(t.TempDir(), "journal.db")
	cfg.MetricsAddr = "127.0.0.1:0"

	s, err := openSession(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	if _, err := s.client.SendRaw(context.Background(), "tv_GetWidth"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.journal.List(context.Background(), 0)
	if err != nil || len(entries) != 1 || entries[0].Command != "tv_GetWidth" {
		t.Errorf("journal = %+v, %v", entries, err)
	}
	families, err := s.registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tvpaint_george_commands_total" {
			found = true
		}
	}
	if !found {
		t.Error("command counter not registered")
	}
}

func TestOpenSessionDebugLogging(t *testing.T) {
	_, bridge := startHost(t)
	cfg := config.Default()
	cfg.Transport, cfg.Socket = config.TransportSocket, bridge.Path()
	cfg.LogLevel = "debug"

	var logs bytes.Buffer
	s, err := openSession(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	if _, err := s.client.SendRaw(context.Background(), "tv_GetWidth"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if !strings.Contains(logs.String(), "connected") || !strings.Contains(logs.String(), "tv_GetWidth") {
		t.Errorf("debug log missing entries:\n%s", logs.String())
	}
}

func TestOpenSessionDialFailureClosesJournal(t *testing.T) {
	cfg := config.Default()
	cfg.Transport, cfg.Socket = config.TransportSocket, filepath.Join(t.TempDir(), "gone.sock")
	cfg.Journal = filepath.Join(t.TempDir(), "journal.db")

	if _, err := openSession(context.Background(), cfg, io.Discard); err == nil {
		t.Fatal("expected a dial error")
	}
}

// =============================================================================
// Metrics Endpoint
// =============================================================================

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestWithMetricsServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := george.NewClient(
		georgetest.NewScript().On("tv_GetWidth", "1920"),
		george.WithMiddleware(george.MetricsMiddleware(george.NewMetrics(reg))),
	)
	addr := freeAddr(t)

	var body string
	err := withMetrics(context.Background(), addr, reg, func(ctx context.Context) error {
		if _, err := client.SendRaw(ctx, "tv_GetWidth"); err != nil {
			return err
		}
		var resp *http.Response
		var err error
		for range 50 {
			resp, err = http.Get("http://" + addr + "/metrics")
			if err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		body = string(data)
		return err
	})
	if err != nil {
		t.Fatalf("withMetrics: %v", err)
	}
	if !strings.Contains(body, `tvpaint_george_commands_total{command="tv_GetWidth",outcome="ok"} 1`) {
		t.Errorf("metrics body:\n%s", body)
	}

	// The server is gone once fn has returned.
	if _, err := http.Get("http://" + addr + "/metrics"); err == nil {
		t.Error("metrics server still running")
	}
}

func TestWithMetricsPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := withMetrics(context.Background(), freeAddr(t), prometheus.NewRegistry(), func(context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("withMetrics() = %v, want %v", err, boom)
	}
}

func TestWithMetricsDisabled(t *testing.T) {
	called := false
	err := withMetrics(context.Background(), "", nil, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("withMetrics without address: called=%v err=%v", called, err)
	}
}

func TestWithMetricsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	called := false
	err = withMetrics(context.Background(), ln.Addr().String(), prometheus.NewRegistry(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("expected a listen error before running fn: called=%v err=%v", called, err)
	}
}
