package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotConsumption records how many shares a realized sale took from one lot.
type LotConsumption struct {
	LotID    string          `json:"lotId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RealizedGain represents the outcome of one sale transaction for one
// holding-period term. A sale that spans lots with mixed terms produces one
// RealizedGain row per term group sharing the same SaleID, so short- and
// long-term amounts are never averaged together.
//
// RealizedGain rows are immutable after creation with one exception: the
// WashSale flag may be set retroactively when a later repurchase lands
// inside the wash-sale window.
type RealizedGain struct {
	ID                string           `json:"id"`
	SaleID            string           `json:"saleId"`
	AccountID         string           `json:"accountId"`
	Symbol            string           `json:"symbol"`
	SaleDate          time.Time        `json:"saleDate"`
	Quantity          decimal.Decimal  `json:"quantity"`
	Proceeds          decimal.Decimal  `json:"proceeds"`
	CostBasis         decimal.Decimal  `json:"costBasis"`
	GainLoss          decimal.Decimal  `json:"gainLoss"`
	HoldingPeriodDays int64            `json:"holdingPeriodDays"`
	LongTerm          bool             `json:"isLongTerm"`
	WashSale          bool             `json:"washSale"`
	Consumptions      []LotConsumption `json:"consumptions,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"createdAt,omitempty"`
}

// IsLoss reports whether this realized gain row is a loss. Only losses are
// candidates for wash-sale flagging.
func (g *RealizedGain) IsLoss() bool {
	return g.GainLoss.IsNegative()
}
