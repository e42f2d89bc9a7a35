package testutils

import (
	"encoding/json"
	"sync"
)

// EmittedEvent is one intent recorded by FakeEmitter.
type EmittedEvent struct {
	Event   string
	Symbols []string
}

// -----------------------------------------------------------------------------

// FakeEmitter records emitted intents and drops them while disconnected,
// like the real connection manager.
type FakeEmitter struct {
	Connected bool
	Events    []EmittedEvent
	Dropped   int
	Mu        sync.Mutex
}

func NewFakeEmitter(connected bool) *FakeEmitter {
	return &FakeEmitter{Connected: connected}
}

func (f *FakeEmitter) IsConnected() bool {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return f.Connected
}

func (f *FakeEmitter) SetConnected(v bool) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Connected = v
}

func (f *FakeEmitter) Emit(event string, payload interface{}) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()

	if !f.Connected {
		f.Dropped++
		return ErrFakeNotConnected
	}

	// round-trip through JSON so the recorded value matches the wire
	var symbols []string
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &symbols); err != nil {
		return err
	}
	f.Events = append(f.Events, EmittedEvent{Event: event, Symbols: symbols})
	return nil
}

// Count returns how many recorded intents carry the given event name.
func (f *FakeEmitter) Count(event string) int {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	n := 0
	for _, e := range f.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Last returns the last recorded intent for the event.
func (f *FakeEmitter) Last(event string) (EmittedEvent, bool) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	for i := len(f.Events) - 1; i >= 0; i-- {
		if f.Events[i].Event == event {
			return f.Events[i], true
		}
	}
	return EmittedEvent{}, false
}

// Reset clears recorded intents.
func (f *FakeEmitter) Reset() {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Events = nil
	f.Dropped = 0
}
