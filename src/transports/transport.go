// Package transports provides the concrete connections to the streaming
// source.
package transports

import (
	"fmt"

	"market-monitor/src/config"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
)

// NewTransport builds the transport selected by source.transport.
func NewTransport(cfg *config.Config, log *logger.Logger) (interfaces.ITransport, error) {
	switch cfg.Source.Transport {
	case "nats":
		return NewNATSTransport(cfg, log.Named("NATSTransport")), nil
	case "websocket", "":
		ws, err := NewWebSocketTransport(cfg, log.Named("WebSocketTransport"))
		if err != nil {
			return nil, err
		}
		return ws, nil
	default:
		return nil, fmt.Errorf("unsupported source transport: %q", cfg.Source.Transport)
	}
}
