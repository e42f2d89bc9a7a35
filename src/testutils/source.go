package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"market-monitor/src/models"

	"github.com/gorilla/websocket"
)

// FakeSource is a websocket server speaking the envelope protocol. It records
// every request and lets the test push frames to connected clients.
type FakeSource struct {
	Server   *httptest.Server
	Requests []models.MEnvelope
	conns    map[*websocket.Conn]*sync.Mutex
	upgrader websocket.Upgrader
	Mu       sync.Mutex
}

// -----------------------------------------------------------------------------

func NewFakeSource() *FakeSource {
	s := &FakeSource{
		conns: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// URL returns the ws:// address of the server.
func (s *FakeSource) URL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// -----------------------------------------------------------------------------

func (s *FakeSource) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.Mu.Lock()
	s.conns[conn] = &sync.Mutex{}
	s.Mu.Unlock()

	defer func() {
		s.Mu.Lock()
		delete(s.conns, conn)
		s.Mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env models.MEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			continue
		}
		s.Mu.Lock()
		s.Requests = append(s.Requests, env)
		s.Mu.Unlock()
	}
}

// -----------------------------------------------------------------------------

// Push sends an envelope to every connected client.
func (s *FakeSource) Push(event string, data string) {
	frame, _ := json.Marshal(models.MEnvelope{Event: event, Data: json.RawMessage(data)})

	s.Mu.Lock()
	defer s.Mu.Unlock()
	for conn, wmu := range s.conns {
		wmu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, frame)
		wmu.Unlock()
	}
}

// DropAll closes every client connection without a close handshake.
func (s *FakeSource) DropAll() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// ConnCount returns the number of connected clients.
func (s *FakeSource) ConnCount() int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return len(s.conns)
}

// RequestCount returns how many requests with the event name were received.
func (s *FakeSource) RequestCount(event string) int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	n := 0
	for _, r := range s.Requests {
		if r.Event == event {
			n++
		}
	}
	return n
}

// LastRequest returns the symbols carried by the last request of a kind.
func (s *FakeSource) LastRequest(event string) ([]string, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	for i := len(s.Requests) - 1; i >= 0; i-- {
		if s.Requests[i].Event == event {
			var symbols []string
			_ = json.Unmarshal(s.Requests[i].Data, &symbols)
			return symbols, true
		}
	}
	return nil, false
}

// Close shuts the server down.
func (s *FakeSource) Close() {
	s.DropAll()
	s.Server.Close()
}
