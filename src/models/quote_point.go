package models

// MQuotePoint is a point-in-time snapshot of a single instrument.
// Change and ChangePercent are computed by the source against its own
// reference price and are never recomputed client side.
type MQuotePoint struct {
	Symbol        Symbol  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}
