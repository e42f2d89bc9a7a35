package storage

import (
	"fmt"

	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"
)

// NewJournal builds the journal for the configured db_type.
func NewJournal(cfg *models.MConfig, log *logger.Logger) (interfaces.IPushJournal, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		pg, err := NewPostgresJournal(cfg, log.Named("PostgresJournal"))
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite", "":
		lite, err := NewSQLiteJournal(cfg, log.Named("SQLiteJournal"))
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Storage.DBType)
	}
}
