package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

// Consumption is one entry of a matcher's plan: how many shares a sale
// takes from one lot.
type Consumption struct {
	Lot      model.StockLot
	Quantity decimal.Decimal
}

// SelectionStrategy decides which open lots a sale consumes and in what
// order. Strategies are pure: they never mutate the ledger, they only plan.
// The lots argument is the ledger's open-lot list for the scope, ordered
// oldest acquisition first.
type SelectionStrategy interface {
	Method() model.SelectionMethod
	Select(lots []model.StockLot, quantity decimal.Decimal) ([]Consumption, error)
}

// FIFOStrategy consumes the oldest-acquisition lots first, spilling into
// the next-oldest until the sale quantity is exhausted. Lots acquired on
// the same date are consumed in creation order, which the ledger's open-lot
// ordering already guarantees.
type FIFOStrategy struct{}

// Method returns the method tag for this strategy.
func (FIFOStrategy) Method() model.SelectionMethod {
	return model.MethodFIFO
}

// Select builds a FIFO consumption plan. Fails with ErrOversold when the
// open lots cannot cover the sale quantity; an oversell means acquisition
// history is missing and is reported, never silently clamped.
func (FIFOStrategy) Select(lots []model.StockLot, quantity decimal.Decimal) ([]Consumption, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("sale quantity must be positive, got %s", quantity)
	}

	plan := []Consumption{}
	needed := quantity

	for _, lot := range lots {
		if needed.IsZero() {
			break
		}
		if !lot.RemainingQuantity.IsPositive() {
			continue
		}

		take := decimal.Min(lot.RemainingQuantity, needed)
		plan = append(plan, Consumption{Lot: lot, Quantity: take})
		needed = needed.Sub(take)
	}

	if needed.IsPositive() {
		return nil, fmt.Errorf("%w: short %s of %s", apperrors.ErrOversold, needed, quantity)
	}

	return plan, nil
}

// LotRequest names one lot and the quantity to take from it, for
// specific-lot selection.
type LotRequest struct {
	LotID    string          `json:"lotId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SpecificLotsStrategy consumes exactly the lots the caller names,
// bypassing FIFO ordering. Each request is validated against the lot's
// remaining quantity, and the requests must cover the sale quantity
// exactly.
type SpecificLotsStrategy struct {
	Requests []LotRequest
}

// Method returns the method tag for this strategy.
func (SpecificLotsStrategy) Method() model.SelectionMethod {
	return model.MethodSpecificLot
}

// Select validates the caller's lot requests against the open lots and
// builds the consumption plan in the requested order.
func (s SpecificLotsStrategy) Select(lots []model.StockLot, quantity decimal.Decimal) ([]Consumption, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("sale quantity must be positive, got %s", quantity)
	}

	byID := make(map[string]model.StockLot, len(lots))
	for _, lot := range lots {
		byID[lot.ID] = lot
	}

	plan := make([]Consumption, 0, len(s.Requests))
	total := decimal.Zero

	for _, req := range s.Requests {
		lot, ok := byID[req.LotID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrLotNotFound, req.LotID)
		}
		if !req.Quantity.IsPositive() {
			return nil, fmt.Errorf("lot %s: requested quantity must be positive, got %s", req.LotID, req.Quantity)
		}
		if req.Quantity.GreaterThan(lot.RemainingQuantity) {
			return nil, fmt.Errorf("%w: lot %s has %s remaining, requested %s",
				apperrors.ErrInsufficientLotQuantity, req.LotID, lot.RemainingQuantity, req.Quantity)
		}

		plan = append(plan, Consumption{Lot: lot, Quantity: req.Quantity})
		total = total.Add(req.Quantity)
	}

	if !total.Equal(quantity) {
		return nil, fmt.Errorf("%w: specified lots cover %s of sale quantity %s",
			apperrors.ErrOversold, total, quantity)
	}

	return plan, nil
}
