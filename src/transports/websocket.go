package transports

import (
	"context"
	"net/http"
	"sync"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/helpers"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4 * 1024 * 1024 // full series pushes can be large
)

// -----------------------------------------------------------------------------

// WebSocketTransport dials the streaming source over gorilla/websocket.
type WebSocketTransport struct {
	endpoint   string
	dialer     *websocket.Dialer
	pingPeriod time.Duration
	logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewWebSocketTransport(cfg *config.Config, log *logger.Logger) (*WebSocketTransport, error) {
	proxyURL, err := helpers.ParseProxy(cfg.Source.Proxy)
	if err != nil {
		return nil, helpers.NewConfigurationError("invalid source proxy", err)
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: time.Duration(cfg.Source.HandshakeTimeoutSeconds) * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}
	if proxyURL != nil {
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	return &WebSocketTransport{
		endpoint:   cfg.Source.Endpoint,
		dialer:     dialer,
		pingPeriod: time.Duration(cfg.Source.PingPeriodSeconds) * time.Second,
		logger:     log,
	}, nil
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) Name() string {
	return "websocket"
}

// -----------------------------------------------------------------------------

// Dial opens one websocket connection and starts its keepalive pinger.
func (t *WebSocketTransport) Dial(ctx context.Context) (interfaces.IConn, error) {
	conn, _, err := t.dialer.DialContext(ctx, t.endpoint, nil)
	if err != nil {
		return nil, helpers.NewTransportError("failed to connect to "+t.endpoint, err)
	}

	wc := &wsConn{
		conn:       conn,
		pingPeriod: t.pingPeriod,
		done:       make(chan struct{}),
		logger:     t.logger,
	}
	wc.configure()
	if t.pingPeriod > 0 {
		go wc.pingLoop()
	}

	t.logger.Debug("WebSocket connected to %s", t.endpoint)
	return wc, nil
}

// -----------------------------------------------------------------------------
// wsConn
// -----------------------------------------------------------------------------

type wsConn struct {
	conn       *websocket.Conn
	pingPeriod time.Duration
	logger     *logger.Logger
	writeMu    sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
}

// -----------------------------------------------------------------------------

func (c *wsConn) pongWait() time.Duration {
	return (c.pingPeriod * 10) / 9
}

// -----------------------------------------------------------------------------

func (c *wsConn) configure() {
	c.conn.SetReadLimit(maxMessageSize)
	if c.pingPeriod <= 0 {
		return
	}
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
		return nil
	})
}

// -----------------------------------------------------------------------------

// ReadMessage returns the next text or binary frame.
func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if c.pingPeriod > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// -----------------------------------------------------------------------------

// WriteMessage sends one text frame. gorilla allows one concurrent writer.
func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// -----------------------------------------------------------------------------

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// -----------------------------------------------------------------------------

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("Ping failed: %v", err)
				return
			}
		}
	}
}
