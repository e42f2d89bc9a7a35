package interfaces

import "context"

// -----------------------------------------------------------------------------
// ITransport opens connections to the streaming source.
// -----------------------------------------------------------------------------

type ITransport interface {

	// Name returns the transport identifier (for logging)
	Name() string

	// -----------------------------------------------------------------------------

	// Dial opens one connection. A failed dial is not fatal: the caller retries.
	Dial(ctx context.Context) (IConn, error)
}

// -----------------------------------------------------------------------------
// IConn is a single live connection returned by ITransport.Dial.
// -----------------------------------------------------------------------------

type IConn interface {

	// ReadMessage blocks until the next frame arrives or the connection drops.
	ReadMessage() ([]byte, error)

	// -----------------------------------------------------------------------------

	// WriteMessage sends one frame. Safe for concurrent use.
	WriteMessage(data []byte) error

	// -----------------------------------------------------------------------------

	// Close releases the connection and unblocks ReadMessage.
	Close() error
}
