package models

import "strings"

// Symbol identifies a tradable instrument (e.g. "BBCA").
type Symbol string

// -----------------------------------------------------------------------------

// NormalizeSymbol trims and upper-cases raw user input.
func NormalizeSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

// -----------------------------------------------------------------------------

// SymbolsToStrings converts symbols to their wire representation.
func SymbolsToStrings(symbols []Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
