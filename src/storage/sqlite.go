package storage

import (
	"database/sql"
	"fmt"

	"market-monitor/src/helpers"
	"market-monitor/src/logger"
	"market-monitor/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteJournal writes the session push journal to a local SQLite file.
type SQLiteJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteJournal(cfg *models.MConfig, log *logger.Logger) (*SQLiteJournal, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewStorageError("sqlite journal needs a db_path", nil)
	}
	return &SQLiteJournal{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewStorageError("failed to open sqlite journal", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError("failed to reach sqlite journal", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// session only: nothing from a previous run survives
	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) recreateTables() error {
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS push_journal"); err != nil {
		return fmt.Errorf("failed to drop push_journal: %w", err)
	}

	query := `
		CREATE TABLE push_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			symbol TEXT,
			price REAL,
			change REAL,
			change_percent REAL,
			samples INTEGER,
			first_ts INTEGER,
			last_ts INTEGER,
			received_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create push_journal: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) SaveRecords(records []models.MJournalRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("failed to begin journal batch", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO push_journal (kind, symbol, price, change, change_percent, samples, first_ts, last_ts, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return helpers.NewStorageError("failed to prepare journal insert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Kind, string(r.Symbol), r.Price, r.Change, r.ChangePct, r.Samples, r.FirstTS, r.LastTS, r.ReceivedAt); err != nil {
			return helpers.NewStorageError("failed to insert journal record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewStorageError("failed to commit journal batch", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// CountRecords returns how many records of a kind were written this session.
func (d *SQLiteJournal) CountRecords(kind string) (int, error) {
	var n int
	if err := d.DB.QueryRow("SELECT COUNT(*) FROM push_journal WHERE kind = ?", kind).Scan(&n); err != nil {
		return 0, helpers.NewStorageError("failed to count journal records", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
