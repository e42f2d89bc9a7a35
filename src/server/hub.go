package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"market-monitor/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const commandTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			s.stateMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				client.close()
			}
			s.stateMutex.Unlock()
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()

			// Send current state on connect
			initial := s.monitor.Snapshot()
			initial.Type = "INITIAL"
			client.trySend(initial)

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				client.close()
			}
			s.stateMutex.Unlock()

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			for client := range s.clients {
				if !client.trySend(message) {
					// slow viewer: drop it rather than stall the hub
					delete(s.clients, client)
					client.close()
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

// Broadcast queues a snapshot for every viewer. It never blocks: when the
// queue is full the snapshot is dropped and the next one supersedes it.
func (s *APIServer) Broadcast(snapshot *models.MDisplaySnapshot) {
	select {
	case s.broadcast <- snapshot:
	default:
		s.Logger.Warning("Broadcast queue full, dropping snapshot")
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan interface{}, 64),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

type commandReply struct {
	Type    string          `json:"type"` // "ACK" or "ERROR"
	Command string          `json:"command,omitempty"`
	Symbol  models.Symbol   `json:"symbol,omitempty"`
	Present *bool           `json:"present,omitempty"`
	Symbols []models.Symbol `json:"symbols,omitempty"`
	Message string          `json:"message,omitempty"`
}

// -----------------------------------------------------------------------------

// HandleClientMessage applies a viewer command and replies to that viewer.
// The resulting snapshot reaches everyone through the normal broadcast.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MViewerCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client.trySend(s.applyCommand(ctx, cmd))
}

// -----------------------------------------------------------------------------

func (s *APIServer) applyCommand(ctx context.Context, cmd models.MViewerCommand) commandReply {
	switch cmd.Command {
	case "toggle":
		symbol := models.NormalizeSymbol(cmd.Symbol)
		if symbol == "" || !s.Config.IsAvailable(symbol) {
			return commandReply{Type: "ERROR", Command: cmd.Command, Message: "unknown symbol: " + cmd.Symbol}
		}
		present, err := s.monitor.ToggleSymbol(ctx, symbol)
		if err != nil {
			return commandReply{Type: "ERROR", Command: cmd.Command, Message: err.Error()}
		}
		return commandReply{Type: "ACK", Command: cmd.Command, Symbol: symbol, Present: &present, Symbols: s.monitor.Symbols()}

	case "set":
		symbols, invalid := s.parseSymbols(cmd.Symbols)
		if len(invalid) > 0 {
			return commandReply{Type: "ERROR", Command: cmd.Command, Message: "unknown symbols"}
		}
		if err := s.monitor.SetSymbols(ctx, symbols); err != nil {
			return commandReply{Type: "ERROR", Command: cmd.Command, Message: err.Error()}
		}
		return commandReply{Type: "ACK", Command: cmd.Command, Symbols: s.monitor.Symbols()}

	default:
		return commandReply{Type: "ERROR", Command: cmd.Command, Message: "unknown command"}
	}
}
