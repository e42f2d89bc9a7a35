package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"market-monitor/src/helpers"
	"market-monitor/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, a .env file (if present)
// and MONITOR_* environment variables, in that order of precedence.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 2. Unmarshal data over the defaults
	modelConfig := defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	// 3. Environment overrides (.env is optional)
	_ = godotenv.Load()
	if err := applyEnvOverrides(modelConfig); err != nil {
		return nil, err
	}

	config := &Config{MConfig: modelConfig}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "market-monitor",
		Host:     "127.0.0.1",
		Port:     8090,
		LogLevel: "INFO",
		GrpcPort: 50061,
		Source: models.MSourceConfig{
			Transport:               "websocket",
			SubjectPrefix:           "market",
			HandshakeTimeoutSeconds: 10,
			ReconnectDelayMs:        1000,
			MaxReconnectDelayMs:     30000,
			PingPeriodSeconds:       30,
		},
		Storage: models.MStorageConfig{
			DBType:     "sqlite",
			DBPath:     "monitor.db",
			BufferSize: 256,
		},
		Market: models.MMarketConfig{
			DefaultMIC: "xidx",
		},
	}
}

// -----------------------------------------------------------------------------

func applyEnvOverrides(cfg *models.MConfig) error {
	if v := os.Getenv("MONITOR_SOURCE_ENDPOINT"); v != "" {
		cfg.Source.Endpoint = v
	}
	if v := os.Getenv("MONITOR_SOURCE_TRANSPORT"); v != "" {
		cfg.Source.Transport = v
	}
	if v := os.Getenv("MONITOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MONITOR_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return helpers.NewConfigurationError(fmt.Sprintf("invalid MONITOR_PORT: %q", v), err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("MONITOR_SYMBOLS"); v != "" {
		var symbols []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
		cfg.Subscription.InitialSymbols = symbols
	}
	if v := os.Getenv("MONITOR_DB_CONNECTION_STRING"); v != "" {
		cfg.Storage.DBConnectionString = v
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Source
	switch c.Source.Transport {
	case "websocket", "nats":
	default:
		return fmt.Errorf("unsupported source transport: %q", c.Source.Transport)
	}
	if c.Source.Endpoint == "" {
		return fmt.Errorf("source endpoint cannot be empty")
	}
	if c.Source.ReconnectDelayMs <= 0 {
		return fmt.Errorf("reconnect delay must be greater than 0")
	}
	if c.Source.MaxReconnectDelayMs < c.Source.ReconnectDelayMs {
		return fmt.Errorf("max reconnect delay must be >= reconnect delay")
	}
	if c.Source.Proxy != "" && !helpers.ValidateProxy(c.Source.Proxy) {
		return fmt.Errorf("invalid source proxy: %q", c.Source.Proxy)
	}

	// Subscription
	if len(c.Subscription.AvailableSymbols) > 0 {
		for _, s := range c.Subscription.InitialSymbols {
			if !c.IsAvailable(models.NormalizeSymbol(s)) {
				return fmt.Errorf("initial symbol %q is not in available_symbols", s)
			}
		}
	}

	// Storage
	if c.Storage.Enabled {
		switch c.Storage.DBType {
		case "sqlite":
			if c.Storage.DBPath == "" {
				return fmt.Errorf("database path cannot be empty for sqlite")
			}
		case "postgres":
			if c.Storage.DBConnectionString == "" {
				return fmt.Errorf("database connection string cannot be empty for postgres")
			}
		default:
			return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// IsAvailable reports whether a symbol may be subscribed. An empty
// available_symbols list allows any symbol.
func (c *Config) IsAvailable(symbol models.Symbol) bool {
	if len(c.Subscription.AvailableSymbols) == 0 {
		return true
	}
	for _, s := range c.Subscription.AvailableSymbols {
		if models.NormalizeSymbol(s) == symbol {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// InitialSymbols returns the normalized initial subscription set.
func (c *Config) InitialSymbols() []models.Symbol {
	out := make([]models.Symbol, 0, len(c.Subscription.InitialSymbols))
	for _, s := range c.Subscription.InitialSymbols {
		out = append(out, models.NormalizeSymbol(s))
	}
	return out
}

// -----------------------------------------------------------------------------

// ReconnectDelay returns the base reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Source.ReconnectDelayMs) * time.Millisecond
}

// MaxReconnectDelay returns the backoff cap.
func (c *Config) MaxReconnectDelay() time.Duration {
	return time.Duration(c.Source.MaxReconnectDelayMs) * time.Millisecond
}
