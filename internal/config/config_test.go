package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvSocket, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvSocket, "")
	t.Setenv(EnvLogLevel, "")

	path := writeConfig(t, `
transport: socket
socket: /tmp/tvp.sock
dial_timeout: 2s
log_level: debug
journal: /tmp/journal.db
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, TransportSocket, cfg.Transport)
	assert.Equal(t, "/tmp/tvp.sock", cfg.Socket)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/journal.db", cfg.Journal)
	assert.Equal(t, "ws://localhost:3000", cfg.URL, "unset keys keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "transport: socket\nsocket: /tmp/a.sock\n")
	t.Setenv(EnvURL, "ws://studio-07:3000")
	t.Setenv(EnvSocket, "")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.Equal(t, "ws://studio-07:3000", cfg.URL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"defaults":          {mutate: func(*Config) {}},
		"unknown transport": {mutate: func(c *Config) { c.Transport = "pipe" }, wantErr: "unknown transport"},
		"websocket no url":  {mutate: func(c *Config) { c.URL = "" }, wantErr: "needs a url"},
		"socket no path":    {mutate: func(c *Config) { c.Transport = TransportSocket }},
		"negative timeout":  {mutate: func(c *Config) { c.DialTimeout = -time.Second }, wantErr: "negative"},
		"bad log level":     {mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "unknown log level"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestBadYAML(t *testing.T) {
	path := writeConfig(t, "transport: [socket\n")
	_, err := Load(path, true)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvSocket, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "tvp", "config.yaml")
	want := Default()
	want.MetricsAddr = ":9090"
	require.NoError(t, want.Save(path))

	got, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
