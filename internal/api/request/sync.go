package request

import "github.com/shopspring/decimal"

// TransactionRecord is one feed record as the ingestion layer delivers it:
// broker-format parsing already happened upstream. ID is optional; records
// without one are deduplicated by their natural key.
type TransactionRecord struct {
	ID       string          `json:"id,omitempty"`
	Account  string          `json:"account"`
	Symbol   string          `json:"symbol"`
	Date     string          `json:"date"`
	Action   string          `json:"action"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// SyncRequest is the body of POST /api/sync.
type SyncRequest struct {
	ClearExisting bool                `json:"clearExisting"`
	Account       string              `json:"account,omitempty"`
	Symbol        string              `json:"symbol,omitempty"`
	Transactions  []TransactionRecord `json:"transactions"`
}

// ResetRequest is the body of POST /api/ledger/reset. Confirm must be true;
// the reset is destructive.
type ResetRequest struct {
	Account string `json:"account,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Confirm bool   `json:"confirm"`
}
