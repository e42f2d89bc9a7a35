package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"market-monitor/src/helpers"
	"market-monitor/src/logger"
	"market-monitor/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresJournal writes the session push journal into a schema named after
// the running executable.
type PostgresJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresJournal(cfg *models.MConfig, log *logger.Logger) (*PostgresJournal, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresJournal{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewStorageError("failed to open postgres journal", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError("failed to reach postgres journal", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresJournal initialized (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) table() string {
	return fmt.Sprintf(`"%s"."push_journal"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) recreateTables() error {
	if _, err := d.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, d.table())); err != nil {
		return fmt.Errorf("failed to drop push_journal: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE %s (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			symbol TEXT,
			price DOUBLE PRECISION,
			change DOUBLE PRECISION,
			change_percent DOUBLE PRECISION,
			samples INTEGER,
			first_ts BIGINT,
			last_ts BIGINT,
			received_at BIGINT NOT NULL
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create push_journal: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) SaveRecords(records []models.MJournalRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("failed to begin journal batch", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (kind, symbol, price, change, change_percent, samples, first_ts, last_ts, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.table()))
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

func (d *PostgresJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
