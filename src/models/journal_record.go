package models

// MJournalRecord is one merged push as written to the session journal.
type MJournalRecord struct {
	Kind       string // "quote" or "series"
	Symbol     Symbol
	Price      float64
	Change     float64
	ChangePct  float64
	Samples    int
	FirstTS    int64
	LastTS     int64
	ReceivedAt int64 // unix millis
}
