package models

// MSymbolState is what is currently known for a symbol. A nil Quote or a nil
// Series means that kind of data was never received.
type MSymbolState struct {
	Symbol Symbol
	Quote  *MQuotePoint
	Series MTimeSeries
}

// -----------------------------------------------------------------------------

// MDisplayValue holds display-ready figures. ChangePercent is nil when it
// cannot be computed (first series price of zero).
type MDisplayValue struct {
	Symbol        Symbol   `json:"symbol"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	FromQuote     bool     `json:"fromQuote"`
}

// -----------------------------------------------------------------------------

// MDisplaySnapshot is the payload served to local viewers.
type MDisplaySnapshot struct {
	Type      string          `json:"type"` // "INITIAL" or "UPDATE"
	Connected bool            `json:"connected"`
	Symbols   []Symbol        `json:"symbols"`
	Values    []MDisplayEntry `json:"values"`
	Timestamp int64           `json:"timestamp"`
}

// MDisplayEntry pairs a computed value with its formatted rendering.
type MDisplayEntry struct {
	MDisplayValue
	Formatted  MFormattedValue `json:"formatted"`
	MarketOpen bool            `json:"market_open"`
}

// MFormattedValue is the string rendering of a display value. ChangePercent is
// empty when the percentage is missing.
type MFormattedValue struct {
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent,omitempty"`
}
