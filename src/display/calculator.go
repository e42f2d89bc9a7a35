// Package display derives display-ready figures from a symbol's state.
package display

import (
	"math"

	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------

// Compute returns the display value for a symbol, or false when the symbol
// has nothing to show. A quote always wins over a series. Without a quote the
// figures come from the first and last series samples by position.
func Compute(state models.MSymbolState) (models.MDisplayValue, bool) {
	if q := state.Quote; q != nil {
		pct := q.ChangePercent
		return models.MDisplayValue{
			Symbol:        state.Symbol,
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: &pct,
			FromQuote:     true,
		}, true
	}

	if len(state.Series) == 0 {
		return models.MDisplayValue{}, false
	}

	first := state.Series[0].Price
	last := state.Series[len(state.Series)-1].Price
	change := last - first

	return models.MDisplayValue{
		Symbol:        state.Symbol,
		Price:         last,
		Change:        change,
		ChangePercent: percentOf(change, first),
	}, true
}

// -----------------------------------------------------------------------------

// percentOf returns change/base*100, or nil when the result is not finite.
func percentOf(change, base float64) *float64 {
	if base == 0 {
		return nil
	}
	pct := change / base * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	return &pct
}
