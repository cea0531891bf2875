package testutil

import (
	"database/sql"
	"testing"

	"github.com/mjansen/wealth-tracker-backend/internal/repository"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// NewTestLedgerService builds a ledger service against the test database.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(db)
}

// NewTestWashSaleService builds a wash-sale service sharing the given
// ledger.
func NewTestWashSaleService(t *testing.T, db *sql.DB, ledger *service.LedgerService) *service.WashSaleService {
	t.Helper()

	return service.NewWashSaleService(
		repository.NewTransactionRepository(db),
		repository.NewGainRepository(db),
		ledger,
	)
}

// NewTestSyncService builds the full sync stack (ledger, wash-sale
// detector, FIFO matching) against the test database.
func NewTestSyncService(t *testing.T, db *sql.DB) *service.SyncService {
	t.Helper()

	ledger := service.NewLedgerService(db)
	washSales := NewTestWashSaleService(t, db, ledger)
	return service.NewSyncService(db, ledger, washSales, nil)
}

// NewTestReportService builds a report service against the test database.
func NewTestReportService(t *testing.T, db *sql.DB) *service.ReportService {
	t.Helper()

	return service.NewReportService(db)
}

// NewTestTransactionService builds a transaction feed service against the
// test database.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(db)
}
