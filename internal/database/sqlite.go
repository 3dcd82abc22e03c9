package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
)

// DBConfig holds database configuration
type DBConfig struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// GetConfig returns database configuration with defaults
func GetConfig() *DBConfig {
	viper.SetDefault("database.path", "neopay.db")
	viper.SetDefault("database.busy_timeout", time.Second*5)
	viper.SetDefault("database.max_open_conns", 1)

	return &DBConfig{
		Path:         viper.GetString("database.path"),
		BusyTimeout:  viper.GetDuration("database.busy_timeout"),
		MaxOpenConns: viper.GetInt("database.max_open_conns"),
	}
}

// InitDB opens the embedded SQLite database and creates the schema. The
// connection pool is capped at one connection: the simulation is a
// single-writer system and SQLite serializes writers anyway.
func InitDB() (*sql.DB, error) {
	config := GetConfig()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		config.Path, config.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)

	if err := Migrate(context.Background(), db); err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate creates the six collections if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			mobile TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			pin_hash TEXT NOT NULL,
			kyc_status TEXT NOT NULL,
			onboarded_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			account_number TEXT NOT NULL UNIQUE,
			ifsc TEXT NOT NULL,
			type TEXT NOT NULL,
			label TEXT NOT NULL,
			is_frozen INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			sender_account_id TEXT NOT NULL,
			receiver_upi_id TEXT NOT NULL DEFAULT '',
			receiver_account_number TEXT NOT NULL DEFAULT '',
			receiver_ifsc TEXT NOT NULL DEFAULT '',
			receiver_name TEXT NOT NULL,
			receiver_type TEXT NOT NULL,
			amount INTEGER NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			reference_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id TEXT PRIMARY KEY,
			transaction_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			direction TEXT NOT NULL,
			balance_before INTEGER NOT NULL,
			balance_after INTEGER NOT NULL,
			payment_ref TEXT NOT NULL,
			settlement_ref TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			counterparty_name TEXT NOT NULL,
			counterparty_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			biller_name TEXT NOT NULL,
			category TEXT NOT NULL,
			amount INTEGER NOT NULL,
			due_date INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}
