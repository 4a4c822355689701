package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johhnry/gotvpaint/internal/logging"
)

// Transport names.
const (
	TransportWebSocket = "websocket"
	TransportSocket    = "socket"
)

// Environment variables overriding the file.
const (
	EnvURL      = "TVP_URL"
	EnvSocket   = "TVP_SOCKET"
	EnvLogLevel = "TVP_LOG_LEVEL"
)

// Config is the tvp client configuration.
type Config struct {
	// Transport is "websocket" (the TVPaint George server plugin) or
	// "socket" (a line bridge on a unix socket or tcp address).
	Transport   string        `yaml:"transport"`
	URL         string        `yaml:"url"`
	Socket      string        `yaml:"socket"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	LogLevel    string        `yaml:"log_level"`
	// Journal is the sqlite file recording every command. Empty disables it.
	Journal     string `yaml:"journal"`
	MetricsAddr string `yaml:"metrics_addr"`
	History     string `yaml:"history"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Transport:   TransportWebSocket,
		URL:         "ws://localhost:3000",
		DialTimeout: 5 * time.Second,
		LogLevel:    "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tvp/config.yaml, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tvp", "config.yaml")
}

// Load reads the configuration file at path over the defaults, then applies
// the environment. A missing file is an error only when explicit is set.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		c.URL = v
		c.Transport = TransportWebSocket
	}
	if v, ok := lookup(EnvSocket); ok && v != "" {
		c.Socket = v
		c.Transport = TransportSocket
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportWebSocket:
		if c.URL == "" {
			return errors.New("websocket transport needs a url")
		}
	case TransportSocket:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("negative dial_timeout %s", c.DialTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
