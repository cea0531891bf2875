package service_test

import (
	"context"
	"testing"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
	"github.com/mjansen/wealth-tracker-backend/internal/testutil"
)

// realize runs the FIFO matcher and calculator against the ledger's open
// lots for one sale.
func realize(t *testing.T, ledger *service.LedgerService, sale service.Sale) []model.RealizedGain {
	t.Helper()

	ctx := context.Background()
	lots, err := ledger.ListOpenLots(ctx, sale.AccountID, sale.Symbol)
	if err != nil {
		t.Fatalf("ListOpenLots failed: %v", err)
	}

	plan, err := service.FIFOStrategy{}.Select(lots, sale.Quantity)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	gains, err := service.NewGainCalculator(ledger).RealizeSale(ctx, sale, plan)
	if err != nil {
		t.Fatalf("RealizeSale failed: %v", err)
	}
	return gains
}

func TestGainCalculatorTermClassification(t *testing.T) {
	t.Run("exactly 365 days is short-term", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedgerService(t, db)
		testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2023-01-01", "10", "1000")

		gains := realize(t, ledger, service.Sale{
			ID: "sale-1", AccountID: "acct-1", Symbol: "AAPL",
			Date:     testutil.Date(t, "2024-01-01"),
			Quantity: testutil.Dec(t, "10"),
			Proceeds: testutil.Dec(t, "1200"),
		})

		if len(gains) != 1 {
			t.Fatalf("Expected 1 gain row, got %d", len(gains))
		}
		if gains[0].HoldingPeriodDays != 365 {
			t.Errorf("Expected 365 holding days, got %d", gains[0].HoldingPeriodDays)
		}
		if gains[0].LongTerm {
			t.Error("365-day holding period must be short-term")
		}
	})

	t.Run("366 days is long-term", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedgerService(t, db)
		testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2023-01-01", "10", "1000")

		gains := realize(t, ledger, service.Sale{
			ID: "sale-1", AccountID: "acct-1", Symbol: "AAPL",
			Date:     testutil.Date(t, "2024-01-02"),
			Quantity: testutil.Dec(t, "10"),
			Proceeds: testutil.Dec(t, "1200"),
		})

		if gains[0].HoldingPeriodDays != 366 {
			t.Errorf("Expected 366 holding days, got %d", gains[0].HoldingPeriodDays)
		}
		if !gains[0].LongTerm {
			t.Error("366-day holding period must be long-term")
		}
	})
}

func TestGainCalculatorMixedTerms(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)
	ctx := context.Background()

	// One old lot (long-term by sale date) and one recent lot.
	oldLot := testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2022-06-01", "100", "5000")
	newLot := testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2024-03-01", "100", "9000")

	gains := realize(t, ledger, service.Sale{
		ID: "sale-1", AccountID: "acct-1", Symbol: "AAPL",
		Date:     testutil.Date(t, "2024-06-01"),
		Quantity: testutil.Dec(t, "150"),
		Proceeds: testutil.Dec(t, "15000"),
	})

	if len(gains) != 2 {
		t.Fatalf("Expected one row per term group, got %d", len(gains))
	}
	if gains[0].SaleID != "sale-1" || gains[1].SaleID != "sale-1" {
		t.Error("Term rows must share the sale ID")
	}

	long, short := gains[0], gains[1]
	if !long.LongTerm {
		long, short = short, long
	}

	if !long.Quantity.Equal(testutil.Dec(t, "100")) {
		t.Errorf("Expected 100 long-term shares, got %s", long.Quantity)
	}
	if !long.CostBasis.Equal(testutil.Dec(t, "5000")) {
		t.Errorf("Expected long-term cost basis 5000, got %s", long.CostBasis)
	}
	if short.LongTerm {
		t.Error("Expected the 50-share group to be short-term")
	}
	if !short.Quantity.Equal(testutil.Dec(t, "50")) {
		t.Errorf("Expected 50 short-term shares, got %s", short.Quantity)
	}
	if !short.CostBasis.Equal(testutil.Dec(t, "4500")) {
		t.Errorf("Expected short-term cost basis 4500, got %s", short.CostBasis)
	}

	// Pro-rata proceeds: 100 shares at 100/share, remainder to last group.
	total := long.Proceeds.Add(short.Proceeds)
	if !total.Equal(testutil.Dec(t, "15000")) {
		t.Errorf("Term rows must sum to total proceeds, got %s", total)
	}

	// Lot statuses after consumption.
	updated, err := ledger.GetLot(ctx, oldLot.ID)
	if err != nil {
		t.Fatalf("GetLot failed: %v", err)
	}
	if updated.Status != model.LotStatusClosed {
		t.Errorf("Expected old lot closed, got %s", updated.Status)
	}

	updated, err = ledger.GetLot(ctx, newLot.ID)
	if err != nil {
		t.Fatalf("GetLot failed: %v", err)
	}
	if updated.Status != model.LotStatusPartial {
		t.Errorf("Expected new lot partial, got %s", updated.Status)
	}
	if !updated.RemainingQuantity.Equal(testutil.Dec(t, "50")) {
		t.Errorf("Expected 50 remaining, got %s", updated.RemainingQuantity)
	}
}

func TestGainCalculatorProceedsAllocation(t *testing.T) {
	t.Run("last term group absorbs rounding remainder", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedgerService(t, db)

		testutil.CreateLot(t, ledger, "acct-1", "XYZ", "2021-01-01", "1", "10")
		testutil.CreateLot(t, ledger, "acct-1", "XYZ", "2024-05-01", "2", "20")

		// 100.00 over 3 shares does not split evenly per share.
		gains := realize(t, ledger, service.Sale{
			ID: "sale-1", AccountID: "acct-1", Symbol: "XYZ",
			Date:     testutil.Date(t, "2024-06-01"),
			Quantity: testutil.Dec(t, "3"),
			Proceeds: testutil.Dec(t, "100.00"),
		})

		if len(gains) != 2 {
			t.Fatalf("Expected 2 term rows, got %d", len(gains))
		}
		total := gains[0].Proceeds.Add(gains[1].Proceeds)
		if !total.Equal(testutil.Dec(t, "100.00")) {
			t.Errorf("Rows must sum to reported proceeds, got %s", total)
		}
	})

	t.Run("explicit per-share price overrides pro-rata", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedgerService(t, db)

		testutil.CreateLot(t, ledger, "acct-1", "XYZ", "2024-01-01", "10", "100")

		perShare := testutil.Dec(t, "12.50")
		gains := realize(t, ledger, service.Sale{
			ID: "sale-1", AccountID: "acct-1", Symbol: "XYZ",
			Date:          testutil.Date(t, "2024-06-01"),
			Quantity:      testutil.Dec(t, "4"),
			Proceeds:      testutil.Dec(t, "50"),
			PricePerShare: &perShare,
		})

		if !gains[0].Proceeds.Equal(testutil.Dec(t, "50.00")) {
			t.Errorf("Expected proceeds 50.00, got %s", gains[0].Proceeds)
		}
	})
}

func TestGainCalculatorLosses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)

	testutil.CreateLot(t, ledger, "acct-1", "TSLA", "2024-01-01", "10", "3000")

	gains := realize(t, ledger, service.Sale{
		ID: "sale-1", AccountID: "acct-1", Symbol: "TSLA",
		Date:     testutil.Date(t, "2024-04-01"),
		Quantity: testutil.Dec(t, "10"),
		Proceeds: testutil.Dec(t, "2000"),
	})

	if !gains[0].GainLoss.Equal(testutil.Dec(t, "-1000.00")) {
		t.Errorf("Expected loss -1000.00, got %s", gains[0].GainLoss)
	}
	if !gains[0].IsLoss() {
		t.Error("Expected IsLoss to report true")
	}
}
