package model

import "github.com/shopspring/decimal"

// TermTotals aggregates proceeds, cost basis and gain for one holding-period
// term within a symbol or grand total.
type TermTotals struct {
	Proceeds  decimal.Decimal `json:"proceeds"`
	CostBasis decimal.Decimal `json:"costBasis"`
	GainLoss  decimal.Decimal `json:"gainLoss"`
}

// Add folds a realized gain row into the totals.
func (t *TermTotals) Add(g RealizedGain) {
	t.Proceeds = t.Proceeds.Add(g.Proceeds)
	t.CostBasis = t.CostBasis.Add(g.CostBasis)
	t.GainLoss = t.GainLoss.Add(g.GainLoss)
}

// SymbolSummary is the per-symbol rollup of realized gains for a tax year.
type SymbolSummary struct {
	Symbol    string     `json:"symbol"`
	ShortTerm TermTotals `json:"shortTerm"`
	LongTerm  TermTotals `json:"longTerm"`
	Total     TermTotals `json:"total"`
	WashSales int        `json:"washSales"`
}

// CapitalGainsSummary is the derived (never stored) aggregation of realized
// gain rows for one tax year, grouped by symbol and split by term.
type CapitalGainsSummary struct {
	Year      int             `json:"year"`
	Symbols   []SymbolSummary `json:"symbols"`
	ShortTerm TermTotals      `json:"shortTerm"`
	LongTerm  TermTotals      `json:"longTerm"`
	Total     TermTotals      `json:"total"`
}
