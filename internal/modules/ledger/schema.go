// Package ledger implements the ledger store: SQLite-backed repositories for
// payable/receivable records, reference dictionaries and manual balance
// snapshots, plus the snapshot loader that fans out the independent reads
// the analytics engine consumes.
package ledger

import (
	"database/sql"
	"fmt"
)

// dateFormat is how calendar dates are stored. Dates are date-only; times of
// day never matter to the engine.
const dateFormat = "2006-01-02"

// InitSchema creates the ledger tables when they do not exist yet.
func InitSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS payables (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			description TEXT,
			amount REAL NOT NULL DEFAULT 0,
			amount_paid REAL NOT NULL DEFAULT 0,
			due_date TEXT,
			paid_date TEXT,
			status TEXT NOT NULL,
			cost_center_id TEXT,
			category_id TEXT,
			project_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payables_tenant_due ON payables(tenant_id, due_date)`,
		`CREATE TABLE IF NOT EXISTS receivables (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			description TEXT,
			amount REAL NOT NULL DEFAULT 0,
			amount_paid REAL NOT NULL DEFAULT 0,
			due_date TEXT,
			paid_date TEXT,
			status TEXT NOT NULL,
			client_id TEXT,
			project_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_receivables_tenant_due ON receivables(tenant_id, due_date)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cost_centers (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS balance_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT NOT NULL,
			balance REAL NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_tenant_recorded ON balance_snapshots(tenant_id, recorded_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize ledger schema: %w", err)
		}
	}
	return nil
}
