package testutils

import (
	"context"
	"sync"

	"market-monitor/src/models"
)

// FakeMonitor is an in-memory IMonitor for the HTTP and gRPC surfaces.
type FakeMonitor struct {
	SymbolSet []models.Symbol
	Values    map[models.Symbol]models.MDisplayValue
	SeriesMap map[models.Symbol]models.MTimeSeries
	Connected bool
	Events    []models.MActivity
	SetErr    error
	Mu        sync.Mutex
}

func NewFakeMonitor(symbols ...models.Symbol) *FakeMonitor {
	return &FakeMonitor{
		SymbolSet: append([]models.Symbol{}, symbols...),
		Values:    make(map[models.Symbol]models.MDisplayValue),
		SeriesMap: make(map[models.Symbol]models.MTimeSeries),
	}
}

func (f *FakeMonitor) Symbols() []models.Symbol {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return append([]models.Symbol{}, f.SymbolSet...)
}

func (f *FakeMonitor) SetSymbols(ctx context.Context, symbols []models.Symbol) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.SymbolSet = append([]models.Symbol{}, symbols...)
	return nil
}

func (f *FakeMonitor) ToggleSymbol(ctx context.Context, symbol models.Symbol) (bool, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if f.SetErr != nil {
		return false, f.SetErr
	}
	for i, s := range f.SymbolSet {
		if s == symbol {
			f.SymbolSet = append(f.SymbolSet[:i:i], f.SymbolSet[i+1:]...)
			return false, nil
		}
	}
	f.SymbolSet = append(f.SymbolSet, symbol)
	return true, nil
}

func (f *FakeMonitor) Display(symbol models.Symbol) (models.MDisplayValue, bool) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	v, ok := f.Values[symbol]
	return v, ok
}

func (f *FakeMonitor) Snapshot() *models.MDisplaySnapshot {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	snap := &models.MDisplaySnapshot{
		Type:      "UPDATE",
		Connected: f.Connected,
		Symbols:   append([]models.Symbol{}, f.SymbolSet...),
		Values:    []models.MDisplayEntry{},
	}
	for _, s := range f.SymbolSet {
		if v, ok := f.Values[s]; ok {
			snap.Values = append(snap.Values, models.MDisplayEntry{MDisplayValue: v})
		}
	}
	return snap
}

func (f *FakeMonitor) Series(symbol models.Symbol) (models.MTimeSeries, bool) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	s, ok := f.SeriesMap[symbol]
	return s.Clone(), ok
}

func (f *FakeMonitor) IsConnected() bool {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return f.Connected
}

func (f *FakeMonitor) Activity(n int) []models.MActivity {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if n <= 0 || len(f.Events) == 0 {
		return []models.MActivity{}
	}
	if n > len(f.Events) {
		n = len(f.Events)
	}
	return append([]models.MActivity{}, f.Events[len(f.Events)-n:]...)
}
