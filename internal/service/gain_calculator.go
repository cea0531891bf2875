package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

// longTermThresholdDays is the holding-period boundary: a holding period of
// more than 365 days qualifies as long-term, exactly 365 does not.
const longTermThresholdDays = 365

// Sale describes one disposal to be realized against a consumption plan.
// Proceeds is the total consideration for the sale; PricePerShare, when
// set, is used directly instead of pro-rata allocation.
type Sale struct {
	ID            string
	AccountID     string
	Symbol        string
	Date          time.Time
	Quantity      decimal.Decimal
	Proceeds      decimal.Decimal
	PricePerShare *decimal.Decimal
}

// GainCalculator turns a sale plus the matcher's consumption plan into
// realized gain rows, consuming the underlying lots through the ledger.
type GainCalculator struct {
	ledger *LedgerService
}

// NewGainCalculator creates a new GainCalculator writing through the given
// ledger.
func NewGainCalculator(ledger *LedgerService) *GainCalculator {
	return &GainCalculator{ledger: ledger}
}

// termGroup accumulates the consumed portions sharing one holding-period
// term.
type termGroup struct {
	longTerm     bool
	quantity     decimal.Decimal
	cost         decimal.Decimal
	dayQuantity  decimal.Decimal // Σ(holding days × quantity), for the weighted average
	consumptions []model.LotConsumption
}

// RealizeSale consumes the planned lots and records one realized gain row
// per holding-period term group. A sale spanning short- and long-term lots
// produces two rows sharing the sale ID; the terms are never averaged.
// Losses come out negative, never clamped.
func (c *GainCalculator) RealizeSale(ctx context.Context, sale Sale, plan []Consumption) ([]model.RealizedGain, error) {
	perShare := sale.Proceeds.Div(sale.Quantity)
	if sale.PricePerShare != nil {
		perShare = *sale.PricePerShare
	}

	groups := groupByTerm(sale.Date, plan)

	for _, consumption := range plan {
		if err := c.ledger.ConsumeLot(ctx, consumption.Lot.ID, consumption.Quantity); err != nil {
			return nil, err
		}
	}

	gains := make([]model.RealizedGain, 0, len(groups))
	allocated := decimal.Zero

	for i, group := range groups {
		proceeds := perShare.Mul(group.quantity).Round(2)
		// The last group absorbs the rounding remainder so the rows sum to
		// the reported total when proceeds were given as an aggregate.
		if sale.PricePerShare == nil && i == len(groups)-1 {
			proceeds = sale.Proceeds.Round(2).Sub(allocated)
		}
		allocated = allocated.Add(proceeds)

		cost := group.cost.Round(2)
		gain := model.RealizedGain{
			ID:                uuid.New().String(),
			SaleID:            sale.ID,
			AccountID:         sale.AccountID,
			Symbol:            sale.Symbol,
			SaleDate:          sale.Date,
			Quantity:          group.quantity,
			Proceeds:          proceeds,
			CostBasis:         cost,
			GainLoss:          proceeds.Sub(cost),
			HoldingPeriodDays: group.dayQuantity.Div(group.quantity).IntPart(),
			LongTerm:          group.longTerm,
			Consumptions:      group.consumptions,
			CreatedAt:         time.Now().UTC(),
		}

		if err := c.ledger.RecordGain(ctx, &gain); err != nil {
			return nil, err
		}
		gains = append(gains, gain)
	}

	return gains, nil
}

// groupByTerm splits the consumption plan into short- and long-term
// groups, preserving plan order within each group.
func groupByTerm(saleDate time.Time, plan []Consumption) []termGroup {
	groups := []termGroup{}
	index := map[bool]int{}

	for _, consumption := range plan {
		days := holdingDays(consumption.Lot.AcquisitionDate, saleDate)
		longTerm := days > longTermThresholdDays

		i, ok := index[longTerm]
		if !ok {
			i = len(groups)
			index[longTerm] = i
			groups = append(groups, termGroup{
				longTerm:    longTerm,
				quantity:    decimal.Zero,
				cost:        decimal.Zero,
				dayQuantity: decimal.Zero,
			})
		}

		cost := consumption.Lot.CostPerShare().Mul(consumption.Quantity)
		groups[i].quantity = groups[i].quantity.Add(consumption.Quantity)
		groups[i].cost = groups[i].cost.Add(cost)
		groups[i].dayQuantity = groups[i].dayQuantity.Add(
			decimal.NewFromInt(days).Mul(consumption.Quantity))
		groups[i].consumptions = append(groups[i].consumptions, model.LotConsumption{
			LotID:    consumption.Lot.ID,
			Quantity: consumption.Quantity,
		})
	}

	return groups
}

// holdingDays returns the calendar days between acquisition and sale,
// ignoring time-of-day.
func holdingDays(acquired, sold time.Time) int64 {
	a := time.Date(acquired.Year(), acquired.Month(), acquired.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(sold.Year(), sold.Month(), sold.Day(), 0, 0, 0, 0, time.UTC)
	return int64(s.Sub(a).Hours() / 24)
}
