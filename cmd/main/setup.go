package main

import (
	"market-monitor/src/config"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/storage"
	"market-monitor/src/transports"
)

// -----------------------------------------------------------------------------

// setupJournal opens the session journal and its writer. Both are nil when
// storage is disabled.
func setupJournal(conf *config.Config, appLogger *logger.Logger) (interfaces.IPushJournal, *storage.JournalWriter, error) {
	if !conf.Storage.Enabled {
		appLogger.Info("Push journal disabled")
		return nil, nil, nil
	}

	journalLogger := logger.NewLogger(conf.LogLevel, "PushJournal")
	journal, err := storage.NewJournal(conf.MConfig, journalLogger)
	if err != nil {
		appLogger.Critical("Failed to init journal: %v", err)
		return nil, nil, err
	}
	if err := journal.Initialize(); err != nil {
		appLogger.Critical("Failed to prepare journal: %v", err)
		return nil, nil, err
	}

	writer := storage.NewJournalWriter(journal, conf.Storage.BufferSize, journalLogger)
	writer.Start()
	return journal, writer, nil
}

// -----------------------------------------------------------------------------

// setupTransport builds the configured upstream transport
func setupTransport(conf *config.Config) (interfaces.ITransport, error) {
	transportLogger := logger.NewLogger(conf.LogLevel, "Transport")
	return transports.NewTransport(conf, transportLogger)
}
