// Package reconciler merges asynchronous pushes into per-symbol state.
package reconciler

import (
	"fmt"
	"sort"
	"sync"

	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------

// Reconciler is the only writer of per-symbol quote and series state. Writes
// happen on the event loop; reads may come from any goroutine.
type Reconciler struct {
	quotes map[models.Symbol]models.MQuotePoint
	series map[models.Symbol]models.MTimeSeries
	logger *logger.Logger
	mu     sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{
		quotes: make(map[models.Symbol]models.MQuotePoint),
		series: make(map[models.Symbol]models.MTimeSeries),
		logger: log,
	}
}

// -----------------------------------------------------------------------------
// Push handlers
// -----------------------------------------------------------------------------

// HandleQuotePush decodes and merges a raw quote push. Malformed pushes leave
// state untouched and return the decode error.
func (r *Reconciler) HandleQuotePush(raw []byte) ([]models.MQuotePoint, error) {
	payload, err := DecodePayload[models.MQuotePoint](raw)
	if err != nil {
		return nil, fmt.Errorf("quote push: %w", err)
	}
	return r.ApplyQuotes(payload), nil
}

// -----------------------------------------------------------------------------

// HandleSeriesPush decodes and merges a raw series push.
func (r *Reconciler) HandleSeriesPush(raw []byte) ([]models.MSeriesUpdate, error) {
	payload, err := DecodePayload[models.MSeriesUpdate](raw)
	if err != nil {
		return nil, fmt.Errorf("series push: %w", err)
	}
	return r.ApplySeries(payload), nil
}

// -----------------------------------------------------------------------------
// Merge
// -----------------------------------------------------------------------------

// ApplyQuotes overwrites the stored quote of every symbol in the push. Other
// symbols keep their quote. Returns the applied items.
func (r *Reconciler) ApplyQuotes(p Payload[models.MQuotePoint]) []models.MQuotePoint {
	items := p.Items()
	applied := make([]models.MQuotePoint, 0, len(items))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range items {
		if q.Symbol == "" {
			r.logger.Debug("Skipping quote without symbol")
			continue
		}
		r.quotes[q.Symbol] = q
		applied = append(applied, q)
	}
	return applied
}

// -----------------------------------------------------------------------------

// ApplySeries replaces wholesale the stored series of every symbol in the
// push. Other symbols keep their series. Returns the applied items.
func (r *Reconciler) ApplySeries(p Payload[models.MSeriesUpdate]) []models.MSeriesUpdate {
	items := p.Items()
	applied := make([]models.MSeriesUpdate, 0, len(items))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range items {
		if u.Symbol == "" {
			r.logger.Debug("Skipping series without symbol")
			continue
		}

		chart := u.Chart.Clone()
		if chart == nil {
			chart = models.MTimeSeries{}
		}
		if !sort.SliceIsSorted(chart, func(i, j int) bool { return chart[i].Timestamp < chart[j].Timestamp }) {
			r.logger.Warning("Series for %s is not in timestamp order, stored as received", u.Symbol)
		}

		r.series[u.Symbol] = chart
		applied = append(applied, models.MSeriesUpdate{Symbol: u.Symbol, Chart: chart})
	}
	return applied
}

// -----------------------------------------------------------------------------
// Read accessors
// -----------------------------------------------------------------------------

// State returns what is known for a symbol; false when nothing was received.
func (r *Reconciler) State(symbol models.Symbol) (models.MSymbolState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := models.MSymbolState{Symbol: symbol}
	q, hasQuote := r.quotes[symbol]
	if hasQuote {
		state.Quote = &q
	}
	s, hasSeries := r.series[symbol]
	if hasSeries {
		state.Series = s.Clone()
	}
	return state, hasQuote || hasSeries
}

// -----------------------------------------------------------------------------

// Quote returns the stored quote for a symbol.
func (r *Reconciler) Quote(symbol models.Symbol) (models.MQuotePoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[symbol]
	return q, ok
}

// -----------------------------------------------------------------------------

// Series returns a copy of the stored series for a symbol.
func (r *Reconciler) Series(symbol models.Symbol) (models.MTimeSeries, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.series[symbol]
	return s.Clone(), ok
}

// -----------------------------------------------------------------------------

// Symbols returns every symbol with any stored data, sorted.
func (r *Reconciler) Symbols() []models.Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[models.Symbol]struct{}, len(r.quotes)+len(r.series))
	for s := range r.quotes {
		seen[s] = struct{}{}
	}
	for s := range r.series {
		seen[s] = struct{}{}
	}

	out := make([]models.Symbol, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
