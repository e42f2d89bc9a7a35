package models

// MConfig Structure
type MConfig struct {
	Name         string              `yaml:"name"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	LogLevel     string              `yaml:"log_level"`
	GrpcHost     string              `yaml:"grpc_host"`
	GrpcPort     int                 `yaml:"grpc_port"`
	Source       MSourceConfig       `yaml:"source"`
	Subscription MSubscriptionConfig `yaml:"subscription"`
	Storage      MStorageConfig      `yaml:"storage"`
	Market       MMarketConfig       `yaml:"market"`
}

type MSourceConfig struct {
	Transport               string `yaml:"transport"` // websocket | nats
	Endpoint                string `yaml:"endpoint"`
	SubjectPrefix           string `yaml:"subject_prefix"`
	HandshakeTimeoutSeconds int    `yaml:"handshake_timeout_seconds"`
	ReconnectDelayMs        int    `yaml:"reconnect_delay_ms"`
	MaxReconnectDelayMs     int    `yaml:"max_reconnect_delay_ms"`
	PingPeriodSeconds       int    `yaml:"ping_period_seconds"`
	Proxy                   string `yaml:"proxy"`
}

type MSubscriptionConfig struct {
	AvailableSymbols []string `yaml:"available_symbols"`
	InitialSymbols   []string `yaml:"initial_symbols"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	BufferSize         int    `yaml:"buffer_size"`
}

type MMarketConfig struct {
	DefaultMIC string `yaml:"default_mic"`
}
