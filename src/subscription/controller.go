// Package subscription owns the set of symbols the client is tracking.
package subscription

import (
	"sync"

	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------

// Controller is the only writer of the subscription set. Every change while
// connected re-issues both requests carrying the whole set; nothing is sent
// while disconnected and the pending set is requested on the next connect.
//
// The connected flag follows HandleConnected/HandleDisconnected, not the
// emitter, so it flips on the same goroutine that applies set changes.
type Controller struct {
	emitter   interfaces.IEmitter
	logger    *logger.Logger
	symbols   []models.Symbol // insertion order, no duplicates
	connected bool
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewController(emitter interfaces.IEmitter, initial []models.Symbol, log *logger.Logger) *Controller {
	return &Controller{
		emitter: emitter,
		logger:  log,
		symbols: dedupe(initial),
	}
}

// -----------------------------------------------------------------------------

// SetSymbols replaces the set. Any call counts as a change, even when the new
// set equals the old one.
func (c *Controller) SetSymbols(symbols []models.Symbol) {
	c.mu.Lock()
	c.symbols = dedupe(symbols)
	current := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("Subscription set changed: %v", current)
	c.requestIfConnected(current)
}

// -----------------------------------------------------------------------------

// ToggleSymbol adds an absent symbol or removes a present one. Returns true
// when the symbol is present afterwards.
func (c *Controller) ToggleSymbol(symbol models.Symbol) bool {
	c.mu.Lock()
	present := false
	idx := c.indexLocked(symbol)
	if idx >= 0 {
		next := make([]models.Symbol, 0, len(c.symbols)-1)
		next = append(next, c.symbols[:idx]...)
		c.symbols = append(next, c.symbols[idx+1:]...)
	} else {
		c.symbols = append(c.snapshotLocked(), symbol)
		present = true
	}
	current := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("Toggled %s (present=%v): %v", symbol, present, current)
	c.requestIfConnected(current)
	return present
}

// -----------------------------------------------------------------------------

// HandleConnected issues both requests for the set current at connect time,
// on first connection and on every reconnection alike. An empty set sends
// nothing.
func (c *Controller) HandleConnected() {
	c.mu.Lock()
	c.connected = true
	current := c.snapshotLocked()
	c.mu.Unlock()

	if len(current) == 0 {
		c.logger.Debug("Connected with empty subscription set, nothing to request")
		return
	}
	c.request(current)
}

// -----------------------------------------------------------------------------

// HandleDisconnected suspends requests until the next HandleConnected.
func (c *Controller) HandleDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Symbols returns a copy of the current set in insertion order.
func (c *Controller) Symbols() []models.Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// -----------------------------------------------------------------------------

// Contains reports whether a symbol is in the set.
func (c *Controller) Contains(symbol models.Symbol) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLocked(symbol) >= 0
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (c *Controller) requestIfConnected(symbols []models.Symbol) {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()

	if !connected {
		c.logger.Debug("Disconnected, request deferred until reconnect")
		return
	}
	c.request(symbols)
}

// -----------------------------------------------------------------------------

func (c *Controller) request(symbols []models.Symbol) {
	payload := models.SymbolsToStrings(symbols)

	// each request is independent; a failed quotes request does not skip series
	if err := c.emitter.Emit(models.EventRequestQuotes, payload); err != nil {
		c.logger.Warning("Quote request dropped: %v", err)
	}
	if err := c.emitter.Emit(models.EventRequestSeries, payload); err != nil {
		c.logger.Warning("Series request dropped: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) snapshotLocked() []models.Symbol {
	out := make([]models.Symbol, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// -----------------------------------------------------------------------------

func (c *Controller) indexLocked(symbol models.Symbol) int {
	for i, s := range c.symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

func dedupe(symbols []models.Symbol) []models.Symbol {
	seen := make(map[models.Symbol]struct{}, len(symbols))
	out := make([]models.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
