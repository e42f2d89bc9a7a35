package testutils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"market-monitor/src/interfaces"
	"market-monitor/src/models"
)

var (
	ErrFakeNotConnected = errors.New("fake emitter: not connected")
	ErrFakeDialRefused  = errors.New("fake transport: dial refused")
)

// -----------------------------------------------------------------------------
// FakeTransport
// -----------------------------------------------------------------------------

type dialResult struct {
	conn *FakeConn
	err  error
}

// FakeTransport hands out connections queued by the test. Dial blocks until
// the test queues a connection or a refusal, or ctx is cancelled.
type FakeTransport struct {
	results chan dialResult
	Dials   int
	Mu      sync.Mutex
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{results: make(chan dialResult, 16)}
}

func (f *FakeTransport) Name() string { return "fake" }

func (f *FakeTransport) Dial(ctx context.Context) (interfaces.IConn, error) {
	f.Mu.Lock()
	f.Dials++
	f.Mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-f.results:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	}
}

// Accept queues a fresh connection for the next Dial and returns it.
func (f *FakeTransport) Accept() *FakeConn {
	c := NewFakeConn()
	f.results <- dialResult{conn: c}
	return c
}

// Refuse makes the next Dial fail.
func (f *FakeTransport) Refuse() {
	f.results <- dialResult{err: ErrFakeDialRefused}
}

// DialCount returns how many times Dial was called.
func (f *FakeTransport) DialCount() int {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return f.Dials
}

// -----------------------------------------------------------------------------
// FakeConn
// -----------------------------------------------------------------------------

// FakeConn is an in-memory connection. Frames pushed with Push are returned
// by ReadMessage; frames written by the client are recorded in Written.
type FakeConn struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	Written   [][]byte
	Mu        sync.Mutex
}

func NewFakeConn() *FakeConn {
	return &FakeConn{
		inbound: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (c *FakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, io.EOF
	case msg := <-c.inbound:
		return msg, nil
	}
}

func (c *FakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Written = append(c.Written, append([]byte(nil), data...))
	return nil
}

func (c *FakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Drop simulates the source going away.
func (c *FakeConn) Drop() { _ = c.Close() }

// IsClosed reports whether Close was called.
func (c *FakeConn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Push delivers a raw frame to the reader.
func (c *FakeConn) Push(frame []byte) {
	c.inbound <- frame
}

// PushEvent wraps data in an envelope and delivers it.
func (c *FakeConn) PushEvent(event string, data string) {
	b, _ := json.Marshal(models.MEnvelope{Event: event, Data: json.RawMessage(data)})
	c.Push(b)
}

// Envelopes decodes every written frame.
func (c *FakeConn) Envelopes() []models.MEnvelope {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	out := make([]models.MEnvelope, 0, len(c.Written))
	for _, w := range c.Written {
		var env models.MEnvelope
		if err := json.Unmarshal(w, &env); err == nil {
			out = append(out, env)
		}
	}
	return out
}

// CountEvent returns how many written frames carry the event name.
func (c *FakeConn) CountEvent(event string) int {
	n := 0
	for _, env := range c.Envelopes() {
		if env.Event == event {
			n++
		}
	}
	return n
}
