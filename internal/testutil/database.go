package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A second pooled connection would see its own empty in-memory
	// database; pin the pool to one.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the migrations in internal/database.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Stock lot table
		CREATE TABLE stock_lot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(10) NOT NULL,
			acquisition_date DATE NOT NULL,
			original_quantity TEXT NOT NULL,
			remaining_quantity TEXT NOT NULL,
			cost_basis TEXT NOT NULL,
			source VARCHAR(50),
			status VARCHAR(7) NOT NULL,
			method VARCHAR(12),
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_stock_lot_scope ON stock_lot (account_id, symbol, acquisition_date);
		CREATE INDEX idx_stock_lot_status ON stock_lot (status);

		-- Realized gain table
		CREATE TABLE realized_gain (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			sale_id VARCHAR(128) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(10) NOT NULL,
			sale_date DATE NOT NULL,
			quantity TEXT NOT NULL,
			proceeds TEXT NOT NULL,
			cost_basis TEXT NOT NULL,
			gain_loss TEXT NOT NULL,
			holding_period_days INTEGER NOT NULL,
			long_term BOOLEAN NOT NULL,
			wash_sale BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_realized_gain_sale ON realized_gain (sale_id);
		CREATE INDEX idx_realized_gain_symbol_date ON realized_gain (symbol, sale_date);

		-- Lot consumption table
		CREATE TABLE lot_consumption (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			realized_gain_id VARCHAR(36) NOT NULL,
			lot_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL,
			FOREIGN KEY(realized_gain_id) REFERENCES realized_gain(id) ON DELETE CASCADE,
			FOREIGN KEY(lot_id) REFERENCES stock_lot(id)
		);

		CREATE INDEX idx_lot_consumption_gain ON lot_consumption (realized_gain_id);
		CREATE INDEX idx_lot_consumption_lot ON lot_consumption (lot_id);

		-- Transaction feed table (quoted because transaction is a reserved keyword)
		CREATE TABLE "transaction" (
			id VARCHAR(128) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			type VARCHAR(4) NOT NULL,
			quantity TEXT NOT NULL,
			amount TEXT NOT NULL,
			processed_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_transaction_scope ON "transaction" (account_id, symbol, date);
		CREATE INDEX idx_transaction_symbol_date ON "transaction" (symbol, date);
	`

	_, err := db.Exec(schema)
	return err
}
