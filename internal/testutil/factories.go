package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// Date parses a YYYY-MM-DD test date, failing the test on bad input.
func Date(t *testing.T, value string) time.Time {
	t.Helper()

	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Invalid test date %q: %v", value, err)
	}
	return date
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("Invalid test decimal %q: %v", value, err)
	}
	return d
}

// CreateLot records an acquisition through the ledger and returns the
// created lot.
func CreateLot(t *testing.T, ledger *service.LedgerService, accountID, symbol, date, quantity, costBasis string) *model.StockLot {
	t.Helper()

	lot, err := ledger.CreateLot(context.Background(),
		accountID, symbol, Date(t, date), Dec(t, quantity), Dec(t, costBasis), "test")
	if err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}
	return lot
}

// Buy builds a feed purchase record for sync tests. Amount is the total
// consideration, not per share.
func Buy(t *testing.T, accountID, symbol, date, quantity, amount string) model.Transaction {
	t.Helper()

	return model.Transaction{
		AccountID: accountID,
		Symbol:    symbol,
		Date:      Date(t, date),
		Type:      model.TransactionBuy,
		Quantity:  Dec(t, quantity),
		Amount:    Dec(t, amount),
	}
}

// Sell builds a feed disposal record for sync tests.
func Sell(t *testing.T, accountID, symbol, date, quantity, amount string) model.Transaction {
	t.Helper()

	return model.Transaction{
		AccountID: accountID,
		Symbol:    symbol,
		Date:      Date(t, date),
		Type:      model.TransactionSell,
		Quantity:  Dec(t, quantity),
		Amount:    Dec(t, amount),
	}
}
