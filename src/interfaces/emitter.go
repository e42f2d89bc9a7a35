package interfaces

// -----------------------------------------------------------------------------
// IEmitter sends subscription intents to the streaming source.
// -----------------------------------------------------------------------------

type IEmitter interface {

	// Emit sends an event. Intents emitted while disconnected are dropped.
	Emit(event string, payload interface{}) error

	// -----------------------------------------------------------------------------

	// IsConnected reports whether the connection is currently up.
	IsConnected() bool
}
