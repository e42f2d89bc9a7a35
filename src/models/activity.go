package models

// MActivity is one entry of the recent-activity log served to viewers.
type MActivity struct {
	Kind   string `json:"kind"` // connected, disconnected, quote, series, subscription, ignored
	Detail string `json:"detail,omitempty"`
	At     int64  `json:"at"` // unix millis
}
