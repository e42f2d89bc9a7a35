package interfaces

import "market-monitor/src/models"

// -----------------------------------------------------------------------------
// IPushJournal records merged pushes for the current session only.
// -----------------------------------------------------------------------------

type IPushJournal interface {

	// Initialize recreates the journal tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveRecords inserts a batch of journal records.
	SaveRecords(records []models.MJournalRecord) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
