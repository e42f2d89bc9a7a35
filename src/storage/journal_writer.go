package storage

import (
	"sync"
	"time"

	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// Journal record kinds
const (
	KindQuote        = "quote"
	KindSeries       = "series"
	KindConnected    = "connected"
	KindDisconnected = "disconnected"
)

const maxBatch = 128

// -----------------------------------------------------------------------------

// JournalWriter moves journal writes off the event loop. Record never blocks;
// when the buffer is full the record is dropped.
type JournalWriter struct {
	journal interfaces.IPushJournal
	logger  *logger.Logger
	queue   chan models.MJournalRecord
	dropped int
	mu      sync.Mutex
	wg      sync.WaitGroup
	once    sync.Once
}

// -----------------------------------------------------------------------------

func NewJournalWriter(journal interfaces.IPushJournal, bufferSize int, log *logger.Logger) *JournalWriter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &JournalWriter{
		journal: journal,
		logger:  log,
		queue:   make(chan models.MJournalRecord, bufferSize),
	}
}

// -----------------------------------------------------------------------------

// Start launches the drain goroutine.
func (w *JournalWriter) Start() {
	w.wg.Add(1)
	go w.drain()
}

// -----------------------------------------------------------------------------

// Record enqueues records without blocking.
func (w *JournalWriter) Record(records ...models.MJournalRecord) {
	for _, r := range records {
		select {
		case w.queue <- r:
		default:
			w.mu.Lock()
			w.dropped++
			n := w.dropped
			w.mu.Unlock()
			if n == 1 || n%100 == 0 {
				w.logger.Warning("Journal buffer full, %d records dropped so far", n)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Dropped returns how many records were discarded because the buffer was full.
func (w *JournalWriter) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// -----------------------------------------------------------------------------

// Stop flushes what is queued and waits for the drain goroutine. Record must
// not be called after Stop.
func (w *JournalWriter) Stop() {
	w.once.Do(func() { close(w.queue) })
	w.wg.Wait()
}

// -----------------------------------------------------------------------------

func (w *JournalWriter) drain() {
	defer w.wg.Done()

	batch := make([]models.MJournalRecord, 0, maxBatch)
	for r := range w.queue {
		batch = append(batch[:0], r)

		// gather whatever else is already queued
	collect:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-w.queue:
				if !ok {
					break collect
				}
				batch = append(batch, next)
			default:
				break collect
			}
		}

		if err := w.journal.SaveRecords(batch); err != nil {
			w.logger.Error("Failed to write %d journal records: %v", len(batch), err)
		}
	}
}

// -----------------------------------------------------------------------------
// Record builders
// -----------------------------------------------------------------------------

// QuoteRecords builds one record per merged quote.
func QuoteRecords(points []models.MQuotePoint, at time.Time) []models.MJournalRecord {
	out := make([]models.MJournalRecord, 0, len(points))
	for _, p := range points {
		out = append(out, models.MJournalRecord{
			Kind:       KindQuote,
			Symbol:     p.Symbol,
			Price:      p.Price,
			Change:     p.Change,
			ChangePct:  p.ChangePercent,
			ReceivedAt: at.UnixMilli(),
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// SeriesRecords summarises each replaced series; samples are not stored.
func SeriesRecords(updates []models.MSeriesUpdate, at time.Time) []models.MJournalRecord {
	out := make([]models.MJournalRecord, 0, len(updates))
	for _, u := range updates {
		r := models.MJournalRecord{
			Kind:       KindSeries,
			Symbol:     u.Symbol,
			Samples:    len(u.Chart),
			ReceivedAt: at.UnixMilli(),
		}
		if n := len(u.Chart); n > 0 {
			r.FirstTS = u.Chart[0].Timestamp
			r.LastTS = u.Chart[n-1].Timestamp
			r.Price = u.Chart[n-1].Price
			r.Change = u.Chart[n-1].Price - u.Chart[0].Price
		}
		out = append(out, r)
	}
	return out
}

// -----------------------------------------------------------------------------

// LifecycleRecord marks a connect or disconnect.
func LifecycleRecord(kind string, at time.Time) models.MJournalRecord {
	return models.MJournalRecord{Kind: kind, ReceivedAt: at.UnixMilli()}
}
