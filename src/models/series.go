package models

// MSeriesSample is one point of a price history. OHLCV fields are optional.
type MSeriesSample struct {
	Timestamp int64    `json:"timestamp"` // seconds since epoch
	Price     float64  `json:"price"`
	Open      *float64 `json:"open,omitempty"`
	High      *float64 `json:"high,omitempty"`
	Low       *float64 `json:"low,omitempty"`
	Close     *float64 `json:"close,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
}

// MTimeSeries is ordered ascending by timestamp, as delivered by the source.
type MTimeSeries []MSeriesSample

// -----------------------------------------------------------------------------

// Clone returns an independent copy of the series (nil stays nil).
func (ts MTimeSeries) Clone() MTimeSeries {
	if ts == nil {
		return nil
	}
	out := make(MTimeSeries, len(ts))
	copy(out, ts)
	return out
}

// -----------------------------------------------------------------------------

// MSeriesUpdate carries a full replacement series for one symbol.
type MSeriesUpdate struct {
	Symbol Symbol      `json:"symbol"`
	Chart  MTimeSeries `json:"chart"`
}
