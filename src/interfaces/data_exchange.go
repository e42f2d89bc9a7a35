package interfaces

import (
	"context"

	"market-monitor/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger shares display snapshots with local viewers.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a snapshot to connected viewers. Must not block.
	Broadcast(snapshot *models.MDisplaySnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
