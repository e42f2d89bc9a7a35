package interfaces

import (
	"context"

	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------
// IMonitor is the surface the HTTP and gRPC layers use to read display state
// and change the subscription set.
// -----------------------------------------------------------------------------

type IMonitor interface {
	// Symbols returns the current subscription set.
	Symbols() []models.Symbol

	// SetSymbols replaces the subscription set.
	SetSymbols(ctx context.Context, symbols []models.Symbol) error

	// ToggleSymbol adds or removes one symbol and reports whether it is now present.
	ToggleSymbol(ctx context.Context, symbol models.Symbol) (bool, error)

	// Display returns the display value for one symbol, false when absent.
	Display(symbol models.Symbol) (models.MDisplayValue, bool)

	// Snapshot returns display entries for the subscribed symbols.
	Snapshot() *models.MDisplaySnapshot

	// Series returns the raw series held for a symbol.
	Series(symbol models.Symbol) (models.MTimeSeries, bool)

	// IsConnected reports the connection state.
	IsConnected() bool

	// Activity returns up to n recent lifecycle and push events, oldest first.
	Activity(n int) []models.MActivity
}
