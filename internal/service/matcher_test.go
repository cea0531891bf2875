package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

func lot(id, date, remaining string) model.StockLot {
	acquired, _ := time.Parse("2006-01-02", date)
	qty, _ := decimal.NewFromString(remaining)
	return model.StockLot{
		ID:                id,
		AccountID:         "acct-1",
		Symbol:            "AAPL",
		AcquisitionDate:   acquired,
		OriginalQuantity:  qty,
		RemainingQuantity: qty,
		CostBasis:         qty.Mul(decimal.NewFromInt(10)),
		Status:            model.LotStatusOpen,
	}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestFIFOStrategy(t *testing.T) {
	t.Run("consumes oldest lot first", func(t *testing.T) {
		lots := []model.StockLot{
			lot("jan", "2024-01-15", "100"),
			lot("feb", "2024-02-15", "100"),
		}

		plan, err := FIFOStrategy{}.Select(lots, dec("80"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		if len(plan) != 1 {
			t.Fatalf("Expected 1 consumption, got %d", len(plan))
		}
		if plan[0].Lot.ID != "jan" {
			t.Errorf("Expected oldest lot first, got %s", plan[0].Lot.ID)
		}
		if !plan[0].Quantity.Equal(dec("80")) {
			t.Errorf("Expected quantity 80, got %s", plan[0].Quantity)
		}
	})

	t.Run("spills into next oldest lot", func(t *testing.T) {
		lots := []model.StockLot{
			lot("jan", "2024-01-15", "100"),
			lot("feb", "2024-02-15", "100"),
		}

		plan, err := FIFOStrategy{}.Select(lots, dec("150"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		if len(plan) != 2 {
			t.Fatalf("Expected 2 consumptions, got %d", len(plan))
		}
		if plan[0].Lot.ID != "jan" || !plan[0].Quantity.Equal(dec("100")) {
			t.Errorf("Expected 100 from jan, got %s from %s", plan[0].Quantity, plan[0].Lot.ID)
		}
		if plan[1].Lot.ID != "feb" || !plan[1].Quantity.Equal(dec("50")) {
			t.Errorf("Expected 50 from feb, got %s from %s", plan[1].Quantity, plan[1].Lot.ID)
		}
	})

	t.Run("same acquisition date consumed in list order", func(t *testing.T) {
		lots := []model.StockLot{
			lot("first", "2024-01-15", "10"),
			lot("second", "2024-01-15", "10"),
		}

		plan, err := FIFOStrategy{}.Select(lots, dec("15"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		if plan[0].Lot.ID != "first" {
			t.Errorf("Expected creation-order tie-break, got %s first", plan[0].Lot.ID)
		}
	})

	t.Run("skips exhausted lots", func(t *testing.T) {
		exhausted := lot("empty", "2024-01-01", "50")
		exhausted.RemainingQuantity = decimal.Zero
		exhausted.Status = model.LotStatusClosed

		lots := []model.StockLot{exhausted, lot("feb", "2024-02-15", "50")}

		plan, err := FIFOStrategy{}.Select(lots, dec("30"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if len(plan) != 1 || plan[0].Lot.ID != "feb" {
			t.Errorf("Expected plan to skip exhausted lot, got %+v", plan)
		}
	})

	t.Run("oversell fails with ErrOversold", func(t *testing.T) {
		lots := []model.StockLot{lot("jan", "2024-01-15", "100")}

		_, err := FIFOStrategy{}.Select(lots, dec("150"))
		if !errors.Is(err, apperrors.ErrOversold) {
			t.Errorf("Expected ErrOversold, got %v", err)
		}
	})

	t.Run("fractional quantities", func(t *testing.T) {
		lots := []model.StockLot{
			lot("jan", "2024-01-15", "0.5"),
			lot("feb", "2024-02-15", "0.75"),
		}

		plan, err := FIFOStrategy{}.Select(lots, dec("1.1"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if !plan[1].Quantity.Equal(dec("0.6")) {
			t.Errorf("Expected 0.6 from second lot, got %s", plan[1].Quantity)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		lots := []model.StockLot{lot("jan", "2024-01-15", "100")}

		if _, err := (FIFOStrategy{}).Select(lots, decimal.Zero); err == nil {
			t.Error("Expected error for zero quantity")
		}
	})
}

func TestSpecificLotsStrategy(t *testing.T) {
	lots := []model.StockLot{
		lot("jan", "2024-01-15", "100"),
		lot("feb", "2024-02-15", "100"),
	}

	t.Run("consumes named lots bypassing FIFO order", func(t *testing.T) {
		strategy := SpecificLotsStrategy{Requests: []LotRequest{
			{LotID: "feb", Quantity: dec("40")},
			{LotID: "jan", Quantity: dec("10")},
		}}

		plan, err := strategy.Select(lots, dec("50"))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		if plan[0].Lot.ID != "feb" || plan[1].Lot.ID != "jan" {
			t.Errorf("Expected requested order feb,jan; got %s,%s", plan[0].Lot.ID, plan[1].Lot.ID)
		}
	})

	t.Run("unknown lot fails with ErrLotNotFound", func(t *testing.T) {
		strategy := SpecificLotsStrategy{Requests: []LotRequest{
			{LotID: "missing", Quantity: dec("10")},
		}}

		_, err := strategy.Select(lots, dec("10"))
		if !errors.Is(err, apperrors.ErrLotNotFound) {
			t.Errorf("Expected ErrLotNotFound, got %v", err)
		}
	})

	t.Run("over-requesting one lot fails", func(t *testing.T) {
		strategy := SpecificLotsStrategy{Requests: []LotRequest{
			{LotID: "jan", Quantity: dec("150")},
		}}

		_, err := strategy.Select(lots, dec("150"))
		if !errors.Is(err, apperrors.ErrInsufficientLotQuantity) {
			t.Errorf("Expected ErrInsufficientLotQuantity, got %v", err)
		}
	})

	t.Run("requests must cover sale quantity exactly", func(t *testing.T) {
		strategy := SpecificLotsStrategy{Requests: []LotRequest{
			{LotID: "jan", Quantity: dec("30")},
		}}

		_, err := strategy.Select(lots, dec("50"))
		if !errors.Is(err, apperrors.ErrOversold) {
			t.Errorf("Expected ErrOversold, got %v", err)
		}
	})

	t.Run("method tags", func(t *testing.T) {
		if (FIFOStrategy{}).Method() != model.MethodFIFO {
			t.Error("Expected fifo method tag")
		}
		if (SpecificLotsStrategy{}).Method() != model.MethodSpecificLot {
			t.Error("Expected specific method tag")
		}
	})
}
