package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
)

// ReportService is the read side of the ledger: per-year, per-symbol
// rollups of realized gains and open-lot listings for the reporting API.
// It never mutates, so it is safe to call while a sync runs on unrelated
// scopes.
type ReportService struct {
	gains *repository.GainRepository
	lots  *repository.LotRepository
}

// NewReportService creates a new ReportService with the provided database
// connection.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{
		gains: repository.NewGainRepository(db),
		lots:  repository.NewLotRepository(db),
	}
}

// RealizedGains retrieves the realized gain rows for a tax year, each with
// its lot consumption entries attached.
func (s *ReportService) RealizedGains(ctx context.Context, year int) ([]model.RealizedGain, error) {
	gains, err := s.gains.ListGainsByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	for i := range gains {
		consumptions, err := s.gains.GetConsumptions(ctx, gains[i].ID)
		if err != nil {
			return nil, err
		}
		gains[i].Consumptions = consumptions
	}

	return gains, nil
}

// Summary aggregates a tax year's realized gain rows by symbol, split by
// holding-period term. Derived on demand, never stored.
func (s *ReportService) Summary(ctx context.Context, year int) (*model.CapitalGainsSummary, error) {
	gains, err := s.gains.ListGainsByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	bySymbol := map[string]*model.SymbolSummary{}
	for _, g := range gains {
		symbol, ok := bySymbol[g.Symbol]
		if !ok {
			symbol = &model.SymbolSummary{Symbol: g.Symbol}
			bySymbol[g.Symbol] = symbol
		}

		if g.LongTerm {
			symbol.LongTerm.Add(g)
		} else {
			symbol.ShortTerm.Add(g)
		}
		symbol.Total.Add(g)
		if g.WashSale {
			symbol.WashSales++
		}
	}

	summary := &model.CapitalGainsSummary{Year: year, Symbols: []model.SymbolSummary{}}
	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, name := range symbols {
		symbol := bySymbol[name]
		summary.Symbols = append(summary.Symbols, *symbol)

		summary.ShortTerm.Proceeds = summary.ShortTerm.Proceeds.Add(symbol.ShortTerm.Proceeds)
		summary.ShortTerm.CostBasis = summary.ShortTerm.CostBasis.Add(symbol.ShortTerm.CostBasis)
		summary.ShortTerm.GainLoss = summary.ShortTerm.GainLoss.Add(symbol.ShortTerm.GainLoss)
		summary.LongTerm.Proceeds = summary.LongTerm.Proceeds.Add(symbol.LongTerm.Proceeds)
		summary.LongTerm.CostBasis = summary.LongTerm.CostBasis.Add(symbol.LongTerm.CostBasis)
		summary.LongTerm.GainLoss = summary.LongTerm.GainLoss.Add(symbol.LongTerm.GainLoss)
		summary.Total.Proceeds = summary.Total.Proceeds.Add(symbol.Total.Proceeds)
		summary.Total.CostBasis = summary.Total.CostBasis.Add(symbol.Total.CostBasis)
		summary.Total.GainLoss = summary.Total.GainLoss.Add(symbol.Total.GainLoss)
	}

	return summary, nil
}

// OpenLots retrieves lots filtered by status, account and symbol for the
// reporting API. An empty status returns all lots.
func (s *ReportService) OpenLots(ctx context.Context, status model.LotStatus, accountID, symbol string) ([]model.StockLot, error) {
	return s.lots.ListLots(ctx, status, accountID, symbol)
}
