package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	// Monetary amounts are stored as decimal strings, not REAL, so rounding
	// stays with the domain layer.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			shop TEXT NOT NULL,
			name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			currency TEXT NOT NULL,
			total TEXT NOT NULL,
			fulfillment TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			line_items TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_shop ON orders(shop)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,

		`CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			shop TEXT NOT NULL,
			order_id TEXT NOT NULL,
			status TEXT NOT NULL,
			method TEXT NOT NULL,
			currency TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			items TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_shop ON claims(shop)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_order ON claims(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_created_at ON claims(created_at)`,

		`CREATE TABLE IF NOT EXISTS widget_settings (
			shop TEXT PRIMARY KEY,
			addon_title TEXT NOT NULL,
			enabled_description TEXT NOT NULL,
			disabled_description TEXT NOT NULL,
			published INTEGER NOT NULL DEFAULT 0,
			pricing TEXT NOT NULL,
			minimum_charge TEXT NOT NULL,
			increment_amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			appearance TEXT,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS claim_portal_settings (
			shop TEXT PRIMARY KEY,
			resolution TEXT NOT NULL,
			days INTEGER NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
