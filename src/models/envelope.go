package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Channel event names
// -----------------------------------------------------------------------------

const (
	EventRequestQuotes = "getStock"
	EventRequestSeries = "getChart"
	EventQuotePush     = "stockData"
	EventSeriesPush    = "chartData"
)

// -----------------------------------------------------------------------------

// MEnvelope is the frame exchanged with the streaming source.
type MEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// -----------------------------------------------------------------------------

// MViewerCommand is sent by local dashboard viewers over /ws.
type MViewerCommand struct {
	Command string   `json:"command"` // "toggle" or "set"
	Symbol  string   `json:"symbol,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}
