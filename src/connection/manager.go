// Package connection owns the single logical connection to the streaming
// source: dialing, reconnecting, frame decoding and lifecycle signals.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"market-monitor/src/config"
	"market-monitor/src/helpers"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// ErrNotConnected is returned by Emit while the connection is down. The
// intent is dropped; callers re-issue from OnConnected.
var ErrNotConnected = errors.New("connection: not connected")

// -----------------------------------------------------------------------------

// ConnectionHandle controls one Connect call.
type ConnectionHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops reconnecting, closes the live connection and waits for the
// run loop to exit.
func (h *ConnectionHandle) Close() {
	h.cancel()
	<-h.done
}

// Done is closed once the run loop has exited.
func (h *ConnectionHandle) Done() <-chan struct{} {
	return h.done
}

// -----------------------------------------------------------------------------

// Manager implements interfaces.IEmitter on top of an ITransport.
type Manager struct {
	transport interfaces.ITransport
	logger    *logger.Logger
	dispatch  func(func())
	baseDelay time.Duration
	maxDelay  time.Duration

	mu        sync.RWMutex
	conn      interfaces.IConn
	connected bool

	hmu            sync.RWMutex
	onConnected    []func()
	onDisconnected []func()
	handlers       map[string][]func(json.RawMessage)
}

// -----------------------------------------------------------------------------

// NewManager creates a Manager. dispatch decides where callbacks run; nil
// runs them on the reader goroutine.
func NewManager(transport interfaces.ITransport, cfg *config.Config, log *logger.Logger, dispatch func(func())) *Manager {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Manager{
		transport: transport,
		logger:    log,
		dispatch:  dispatch,
		baseDelay: cfg.ReconnectDelay(),
		maxDelay:  cfg.MaxReconnectDelay(),
		handlers:  make(map[string][]func(json.RawMessage)),
	}
}

// -----------------------------------------------------------------------------
// Lifecycle and event registration
// -----------------------------------------------------------------------------

// OnConnected registers fn to run after every down→up transition.
func (m *Manager) OnConnected(fn func()) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.onConnected = append(m.onConnected, fn)
}

// OnDisconnected registers fn to run after every up→down transition.
func (m *Manager) OnDisconnected(fn func()) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.onDisconnected = append(m.onDisconnected, fn)
}

// On registers a handler for an inbound event name.
func (m *Manager) On(event string, fn func(json.RawMessage)) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.handlers[event] = append(m.handlers[event], fn)
}

// -----------------------------------------------------------------------------

// Connect starts the dial/read/reconnect loop in the background.
func (m *Manager) Connect(ctx context.Context) *ConnectionHandle {
	runCtx, cancel := context.WithCancel(ctx)
	handle := &ConnectionHandle{cancel: cancel, done: make(chan struct{})}
	go m.run(runCtx, handle.done)
	return handle
}

// -----------------------------------------------------------------------------
// IEmitter
// -----------------------------------------------------------------------------

// IsConnected reports whether a connection is currently up.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// -----------------------------------------------------------------------------

// Emit sends one event frame. Nothing is queued: while disconnected the
// intent is dropped and ErrNotConnected is returned.
func (m *Manager) Emit(event string, payload interface{}) error {
	m.mu.RLock()
	conn := m.conn
	connected := m.connected
	m.mu.RUnlock()

	if !connected || conn == nil {
		m.logger.Debug("Dropping %s while disconnected", event)
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return helpers.NewPayloadError("failed to encode "+event+" payload", err)
	}
	frame, err := json.Marshal(models.MEnvelope{Event: event, Data: data})
	if err != nil {
		return helpers.NewPayloadError("failed to encode envelope", err)
	}

	if err := conn.WriteMessage(frame); err != nil {
		return helpers.NewTransportError("failed to send "+event, err)
	}
	m.logger.Debug("Sent %s: %s", event, string(data))
	return nil
}

// -----------------------------------------------------------------------------
// Run loop
// -----------------------------------------------------------------------------

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := m.transport.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := helpers.BackoffDelay(m.baseDelay, m.maxDelay, attempt)
			attempt++
			m.logger.Warning("%s dial failed (attempt %d), retrying in %v: %v", m.transport.Name(), attempt, delay, err)
			if !sleepCtx(ctx, delay) {
				return
			}
			continue
		}

		attempt = 0
		m.setConnection(conn)
		m.logger.Info("Connected via %s", m.transport.Name())
		m.fire(m.connectedHandlers())

		m.readLoop(ctx, conn)

		m.setConnection(nil)
		_ = conn.Close()
		m.logger.Info("Disconnected from %s", m.transport.Name())
		m.fire(m.disconnectedHandlers())

		if !sleepCtx(ctx, helpers.BackoffDelay(m.baseDelay, m.maxDelay, 0)) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (m *Manager) readLoop(ctx context.Context, conn interfaces.IConn) {
	stop := make(chan struct{})
	defer close(stop)

	// unblock ReadMessage on shutdown
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warning("Read failed: %v", err)
			}
			return
		}
		m.route(frame)
	}
}

// -----------------------------------------------------------------------------

func (m *Manager) route(frame []byte) {
	var env models.MEnvelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		m.logger.Debug("Ignoring undecodable frame (%d bytes)", len(frame))
		return
	}

	m.hmu.RLock()
	handlers := append([]func(json.RawMessage){}, m.handlers[env.Event]...)
	m.hmu.RUnlock()

	if len(handlers) == 0 {
		m.logger.Debug("No handler for event %q", env.Event)
		return
	}

	data := env.Data
	for _, h := range handlers {
		h := h
		m.dispatch(func() { h(data) })
	}
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (m *Manager) setConnection(conn interfaces.IConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
	m.connected = conn != nil
}

func (m *Manager) connectedHandlers() []func() {
	m.hmu.RLock()
	defer m.hmu.RUnlock()
	return append([]func(){}, m.onConnected...)
}

func (m *Manager) disconnectedHandlers() []func() {
	m.hmu.RLock()
	defer m.hmu.RUnlock()
	return append([]func(){}, m.onDisconnected...)
}

func (m *Manager) fire(fns []func()) {
	for _, fn := range fns {
		m.dispatch(fn)
	}
}

// -----------------------------------------------------------------------------

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
