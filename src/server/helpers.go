package server

import (
	"strconv"

	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------

// parseSymbols normalizes raw symbols and splits off the ones not allowed by
// subscription.available_symbols.
func (s *APIServer) parseSymbols(raw []string) ([]models.Symbol, []string) {
	symbols := make([]models.Symbol, 0, len(raw))
	var invalid []string
	for _, r := range raw {
		symbol := models.NormalizeSymbol(r)
		if symbol == "" || !s.Config.IsAvailable(symbol) {
			invalid = append(invalid, r)
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols, invalid
}

// -----------------------------------------------------------------------------

func parseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
