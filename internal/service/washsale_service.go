package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
)

// washSaleWindowDays is the half-width of the wash-sale window: a loss is
// disallowed when the same security is repurchased within 30 days before
// or after the sale.
const washSaleWindowDays = 30

// WashSaleService flags realized losses as wash sales. "Substantially
// identical" is treated as an exact symbol match, and purchases are
// scanned across all accounts under the holder. The flag is advisory
// metadata: the detector degrades to "not flagged" on storage errors
// rather than blocking gain recording, and it never adjusts the cost basis
// of the replacement lot.
type WashSaleService struct {
	transactions *repository.TransactionRepository
	gains        *repository.GainRepository
	ledger       *LedgerService
}

// NewWashSaleService creates a new WashSaleService with the provided
// repository and ledger dependencies.
func NewWashSaleService(
	transactions *repository.TransactionRepository,
	gains *repository.GainRepository,
	ledger *LedgerService,
) *WashSaleService {
	return &WashSaleService{
		transactions: transactions,
		gains:        gains,
		ledger:       ledger,
	}
}

// IsWashSale reports whether a loss sale of the symbol on saleDate has a
// same-symbol purchase inside the ±30 day window, in any account.
func (s *WashSaleService) IsWashSale(ctx context.Context, symbol string, saleDate time.Time) (bool, error) {
	from := saleDate.AddDate(0, 0, -washSaleWindowDays)
	to := saleDate.AddDate(0, 0, washSaleWindowDays)
	return s.transactions.HasBuyInWindow(ctx, symbol, from, to)
}

// RescanSymbol re-evaluates the wash-sale flag for every sale of the
// symbol against the current transaction history. The sync engine calls
// this after each ingestion batch, because a purchase arriving later can
// retroactively turn an already-recorded loss into a wash sale.
//
// The scan recomputes the flag both ways, so re-running after a
// clear-and-rebuild converges to the same state. Per-sale failures are
// logged and skipped; wash-sale status never blocks a sync.
func (s *WashSaleService) RescanSymbol(ctx context.Context, symbol string) {
	rows, err := s.gains.ListGainsBySymbol(ctx, symbol)
	if err != nil {
		log.Printf("wash-sale scan: failed to load gains for %s: %v", symbol, err)
		return
	}

	for _, sale := range groupBySale(rows) {
		flagged := false
		if sale.gainLoss.IsNegative() {
			flagged, err = s.IsWashSale(ctx, symbol, sale.date)
			if err != nil {
				log.Printf("wash-sale scan: window query failed for sale %s: %v", sale.id, err)
				continue
			}
		}

		if flagged == sale.washSale {
			continue
		}
		if err := s.ledger.UpdateWashFlag(ctx, sale.id, flagged); err != nil {
			log.Printf("wash-sale scan: failed to update flag for sale %s: %v", sale.id, err)
		}
	}
}

// saleAggregate folds the per-term rows of one sale back together. The
// loss test applies to the sale as a whole; the flag is then written to
// all of its rows.
type saleAggregate struct {
	id       string
	date     time.Time
	gainLoss decimal.Decimal
	washSale bool
}

func groupBySale(rows []model.RealizedGain) []saleAggregate {
	sales := []saleAggregate{}
	index := map[string]int{}

	for _, row := range rows {
		i, ok := index[row.SaleID]
		if !ok {
			i = len(sales)
			index[row.SaleID] = i
			sales = append(sales, saleAggregate{
				id:       row.SaleID,
				date:     row.SaleDate,
				gainLoss: decimal.Zero,
				washSale: row.WashSale,
			})
		}
		sales[i].gainLoss = sales[i].gainLoss.Add(row.GainLoss)
	}

	return sales
}
