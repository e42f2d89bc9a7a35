package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"market-monitor/src/helpers"
	"market-monitor/src/models"
)

const sampleYAML = `
name: market-monitor
host: 127.0.0.1
port: 8090
log_level: DEBUG
source:
  transport: websocket
  endpoint: ws://localhost:3000/ws
  reconnect_delay_ms: 500
  max_reconnect_delay_ms: 8000
subscription:
  available_symbols: [BBRI, BBCA, TLKM, ANTM]
  initial_symbols: [bbca, " BBRI "]
storage:
  enabled: true
  db_type: sqlite
  db_path: test.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfig_Loads(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Source.ReconnectDelayMs != 500 {
		t.Errorf("expected reconnect delay 500, got %d", cfg.Source.ReconnectDelayMs)
	}
	// default kept when absent from YAML
	if cfg.Source.HandshakeTimeoutSeconds != 10 {
		t.Errorf("expected default handshake timeout, got %d", cfg.Source.HandshakeTimeoutSeconds)
	}

	got := cfg.InitialSymbols()
	want := []models.Symbol{"BBCA", "BBRI"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("initial symbols = %v, want %v", got, want)
	}
}

func TestNewConfig_EnvOverride(t *testing.T) {
	t.Setenv("MONITOR_SOURCE_ENDPOINT", "ws://feed:4000/ws")
	t.Setenv("MONITOR_SYMBOLS", "TLKM, ANTM")

	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source.Endpoint != "ws://feed:4000/ws" {
		t.Errorf("endpoint override not applied: %s", cfg.Source.Endpoint)
	}
	if len(cfg.InitialSymbols()) != 2 || cfg.InitialSymbols()[0] != "TLKM" {
		t.Errorf("symbols override not applied: %v", cfg.InitialSymbols())
	}
}

func TestNewConfig_BadPortEnv(t *testing.T) {
	t.Setenv("MONITOR_PORT", "http")

	_, err := NewConfig(writeConfig(t, sampleYAML))
	var cfgErr *helpers.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{MConfig: defaults()}
		cfg.Source.Endpoint = "ws://localhost:3000/ws"
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"low port", func(c *Config) { c.Port = 80 }},
		{"unknown transport", func(c *Config) { c.Source.Transport = "socketio" }},
		{"no endpoint", func(c *Config) { c.Source.Endpoint = "" }},
		{"max below base", func(c *Config) { c.Source.MaxReconnectDelayMs = 10 }},
		{"bad proxy", func(c *Config) { c.Source.Proxy = "ftp://x:1" }},
		{"unavailable initial", func(c *Config) {
			c.Subscription.AvailableSymbols = []string{"BBRI"}
			c.Subscription.InitialSymbols = []string{"TLKM"}
		}},
		{"postgres without dsn", func(c *Config) {
			c.Storage.Enabled = true
			c.Storage.DBType = "postgres"
		}},
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	cfg := &Config{MConfig: defaults()}
	if !cfg.IsAvailable("ANY") {
		t.Error("empty available list should allow any symbol")
	}
	cfg.Subscription.AvailableSymbols = []string{"bbri"}
	if !cfg.IsAvailable("BBRI") || cfg.IsAvailable("BBCA") {
		t.Error("available list not honoured")
	}
}
