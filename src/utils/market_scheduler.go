package utils

import (
	"sync"
	"time"

	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// MarketScheduler tracks which exchange calendar applies to each subscribed
// symbol.
type MarketScheduler struct {
	Calendars  map[models.Symbol]*TradingCalendar
	DefaultMIC string
	Logger     *logger.Logger
	Now        func() time.Time
	mu         sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []models.Symbol, defaultMIC string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars:  make(map[models.Symbol]*TradingCalendar),
		DefaultMIC: defaultMIC,
		Logger:     l,
		Now:        time.Now,
	}
	ms.UpdateSymbols(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbols remaps the tracked symbols, dropping ones no longer listed.
func (ms *MarketScheduler) UpdateSymbols(symbols []models.Symbol) {
	calendars := make(map[models.Symbol]*TradingCalendar, len(symbols))
	unique := make(map[string]struct{})
	for _, symbol := range symbols {
		cal := GetCalendar(MICForSymbol(symbol, ms.DefaultMIC))
		calendars[symbol] = cal
		unique[cal.MIC] = struct{}{}
	}

	ms.mu.Lock()
	ms.Calendars = calendars
	ms.mu.Unlock()

	ms.Logger.Debug("MarketScheduler: Mapped %d symbols to %d unique calendars.", len(symbols), len(unique))
}

// -----------------------------------------------------------------------------

// CalendarFor returns the calendar for a symbol, resolving untracked symbols
// on the fly.
func (ms *MarketScheduler) CalendarFor(symbol models.Symbol) *TradingCalendar {
	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()
	if ok {
		return cal
	}
	return GetCalendar(MICForSymbol(symbol, ms.DefaultMIC))
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the symbol's exchange is open now.
func (ms *MarketScheduler) IsOpen(symbol models.Symbol) bool {
	return ms.CalendarFor(symbol).IsOpenOnMinute(ms.Now().UTC())
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.Now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	seen := make(map[*TradingCalendar]struct{})
	for _, cal := range ms.Calendars {
		if _, ok := seen[cal]; ok {
			continue
		}
		seen[cal] = struct{}{}
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
