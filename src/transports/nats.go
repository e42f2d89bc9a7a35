package transports

import (
	"context"
	"errors"
	"sync"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/helpers"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"

	"github.com/nats-io/nats.go"
)

var errNATSClosed = errors.New("nats connection closed")

// -----------------------------------------------------------------------------

// NATSTransport carries the same envelopes over NATS subjects: requests are
// published on <prefix>.request and pushes arrive on <prefix>.push. The
// library's own reconnect is disabled so the connection manager sees every
// drop.
type NATSTransport struct {
	url     string
	prefix  string
	name    string
	timeout time.Duration
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNATSTransport(cfg *config.Config, log *logger.Logger) *NATSTransport {
	prefix := cfg.Source.SubjectPrefix
	if prefix == "" {
		prefix = "market"
	}
	return &NATSTransport{
		url:     cfg.Source.Endpoint,
		prefix:  prefix,
		name:    cfg.Name,
		timeout: time.Duration(cfg.Source.HandshakeTimeoutSeconds) * time.Second,
		logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (t *NATSTransport) Name() string {
	return "nats"
}

// RequestSubject is where outbound envelopes are published.
func (t *NATSTransport) RequestSubject() string { return t.prefix + ".request" }

// PushSubject is where inbound envelopes are consumed.
func (t *NATSTransport) PushSubject() string { return t.prefix + ".push" }

// -----------------------------------------------------------------------------

func (t *NATSTransport) Dial(ctx context.Context) (interfaces.IConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &natsConn{
		subject: t.RequestSubject(),
		msgs:    make(chan *nats.Msg, 256),
		closed:  make(chan struct{}),
	}

	opts := []nats.Option{
		nats.Name(t.name),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				t.logger.Warning("NATS disconnected: %v", err)
			}
			c.markClosed()
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.markClosed()
		}),
	}
	if t.timeout > 0 {
		opts = append(opts, nats.Timeout(t.timeout))
	}

	nc, err := nats.Connect(t.url, opts...)
	if err != nil {
		return nil, helpers.NewTransportError("nats connection failed", err)
	}

	sub, err := nc.ChanSubscribe(t.PushSubject(), c.msgs)
	if err != nil {
		nc.Close()
		return nil, helpers.NewTransportError("nats subscribe failed", err)
	}

	c.nc = nc
	c.sub = sub
	t.logger.Debug("NATS connected to %s (subject %s)", t.url, t.PushSubject())
	return c, nil
}

// -----------------------------------------------------------------------------
// natsConn
// -----------------------------------------------------------------------------

type natsConn struct {
	nc        *nats.Conn
	sub       *nats.Subscription
	subject   string
	msgs      chan *nats.Msg
	closed    chan struct{}
	closeOnce sync.Once
}

func (c *natsConn) markClosed() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// -----------------------------------------------------------------------------

func (c *natsConn) ReadMessage() ([]byte, error) {
	select {
	case msg := <-c.msgs:
		return msg.Data, nil
	case <-c.closed:
		return nil, errNATSClosed
	}
}

// -----------------------------------------------------------------------------

func (c *natsConn) WriteMessage(data []byte) error {
	if err := c.nc.Publish(c.subject, data); err != nil {
		return err
	}
	return c.nc.Flush()
}

// -----------------------------------------------------------------------------

func (c *natsConn) Close() error {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	if c.nc != nil {
		c.nc.Close()
	}
	c.markClosed()
	return nil
}
