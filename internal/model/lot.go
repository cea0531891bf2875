package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus describes the lifecycle state of a tax lot.
type LotStatus string

// Lot lifecycle states. A lot is open until a sale consumes part of it,
// partial while some shares remain, and closed once fully consumed.
// Lots are never deleted, only closed, to preserve the audit trail.
const (
	LotStatusOpen    LotStatus = "open"
	LotStatusPartial LotStatus = "partial"
	LotStatusClosed  LotStatus = "closed"
)

// SelectionMethod tags the lot-selection method requested when a lot or
// sale was recorded.
type SelectionMethod string

// Supported lot-selection methods.
const (
	MethodFIFO        SelectionMethod = "fifo"
	MethodSpecificLot SelectionMethod = "specific"
)

// StockLot represents one acquisition of a security in one account,
// tracked separately for cost-basis purposes.
type StockLot struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"accountId"`
	Symbol            string          `json:"symbol"`
	AcquisitionDate   time.Time       `json:"acquisitionDate"`
	OriginalQuantity  decimal.Decimal `json:"originalQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	CostBasis         decimal.Decimal `json:"costBasis"`
	Source            string          `json:"source,omitempty"`
	Status            LotStatus       `json:"status"`
	Method            SelectionMethod `json:"method,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// CostPerShare returns the acquisition cost of a single share of this lot.
// Derived from the total cost basis, never stored.
func (l *StockLot) CostPerShare() decimal.Decimal {
	if l.OriginalQuantity.IsZero() {
		return decimal.Zero
	}
	return l.CostBasis.Div(l.OriginalQuantity)
}

// StatusForRemaining derives the lifecycle status implied by a remaining
// quantity: closed when nothing remains, open when untouched, else partial.
func (l *StockLot) StatusForRemaining(remaining decimal.Decimal) LotStatus {
	switch {
	case remaining.IsZero():
		return LotStatusClosed
	case remaining.Equal(l.OriginalQuantity):
		return LotStatusOpen
	default:
		return LotStatusPartial
	}
}
