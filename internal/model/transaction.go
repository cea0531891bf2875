package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes acquisitions from disposals in the feed.
type TransactionType string

// Feed transaction types.
const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one record of the external transaction feed, stored
// durably so the sync engine can replay history (clear-and-rebuild) and the
// wash-sale detector can scan purchases across all accounts.
//
// ID doubles as the idempotency key: records with an ID already stored are
// skipped on ingest. Feeds that do not supply their own IDs get a
// deterministic natural key derived from the record's fields.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Symbol      string          `json:"symbol"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// NaturalKey returns the deterministic dedup key used when the feed does
// not supply a transaction ID.
func (t *Transaction) NaturalKey() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		t.AccountID, t.Symbol, t.Date.Format("2006-01-02"),
		t.Type, t.Quantity.String(), t.Amount.String())
}

// PricePerShare returns the per-share amount of the transaction.
func (t *Transaction) PricePerShare() decimal.Decimal {
	if t.Quantity.IsZero() {
		return decimal.Zero
	}
	return t.Amount.Div(t.Quantity)
}
