package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

// GainRepository provides data access methods for the realized_gain and
// lot_consumption tables.
type GainRepository struct {
	db DBTX
}

// NewGainRepository creates a new GainRepository bound to the given
// database or transaction.
func NewGainRepository(db DBTX) *GainRepository {
	return &GainRepository{db: db}
}

const gainColumns = `id, sale_id, account_id, symbol, sale_date, quantity, proceeds,
	cost_basis, gain_loss, holding_period_days, long_term, wash_sale, notes, created_at`

// InsertGain stores a realized gain row together with its lot consumption
// entries.
func (r *GainRepository) InsertGain(ctx context.Context, gain *model.RealizedGain) error {
	query := `
		INSERT INTO realized_gain (id, sale_id, account_id, symbol, sale_date, quantity,
			proceeds, cost_basis, gain_loss, holding_period_days, long_term, wash_sale,
			notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		gain.ID,
		gain.SaleID,
		gain.AccountID,
		gain.Symbol,
		gain.SaleDate.Format("2006-01-02"),
		gain.Quantity.String(),
		gain.Proceeds.String(),
		gain.CostBasis.String(),
		gain.GainLoss.String(),
		gain.HoldingPeriodDays,
		gain.LongTerm,
		gain.WashSale,
		gain.Notes,
		gain.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert realized gain: %w", err)
	}

	consumptionQuery := `
		INSERT INTO lot_consumption (id, realized_gain_id, lot_id, quantity)
		VALUES (?, ?, ?, ?)
	`
	for _, c := range gain.Consumptions {
		_, err := r.db.ExecContext(ctx, consumptionQuery,
			uuid.New().String(), gain.ID, c.LotID, c.Quantity.String())
		if err != nil {
			return fmt.Errorf("failed to insert lot consumption: %w", err)
		}
	}

	return nil
}

// UpdateWashFlag sets the wash-sale flag on all gain rows belonging to a
// sale. This is the only mutation permitted on realized gains.
func (r *GainRepository) UpdateWashFlag(ctx context.Context, saleID string, washSale bool) error {
	query := `UPDATE realized_gain SET wash_sale = ? WHERE sale_id = ?`

	result, err := r.db.ExecContext(ctx, query, washSale, saleID)
	if err != nil {
		return fmt.Errorf("failed to update wash-sale flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrSaleNotFound
	}

	return nil
}

// ListGainsByYear retrieves realized gain rows whose sale date falls in the
// given tax year, ordered by sale date.
func (r *GainRepository) ListGainsByYear(ctx context.Context, year int) ([]model.RealizedGain, error) {
	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)

	query := `SELECT ` + gainColumns + ` FROM realized_gain
		WHERE sale_date >= ? AND sale_date <= ?
		ORDER BY sale_date ASC, rowid ASC`

	return r.queryGains(ctx, query, start, end)
}

// ListGainsBySymbol retrieves all realized gain rows for a symbol, ordered
// by sale date. Used by the wash-sale detector's retroactive re-scan.
func (r *GainRepository) ListGainsBySymbol(ctx context.Context, symbol string) ([]model.RealizedGain, error) {
	query := `SELECT ` + gainColumns + ` FROM realized_gain
		WHERE symbol = ?
		ORDER BY sale_date ASC, rowid ASC`

	return r.queryGains(ctx, query, symbol)
}

// GetConsumptions retrieves the lot consumption entries for a gain row.
func (r *GainRepository) GetConsumptions(ctx context.Context, gainID string) ([]model.LotConsumption, error) {
	query := `SELECT lot_id, quantity FROM lot_consumption
		WHERE realized_gain_id = ? ORDER BY rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, gainID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot_consumption table: %w", err)
	}
	defer rows.Close()

	consumptions := []model.LotConsumption{}
	for rows.Next() {
		var c model.LotConsumption
		var quantityStr string
		if err := rows.Scan(&c.LotID, &quantityStr); err != nil {
			return nil, fmt.Errorf("failed to scan lot_consumption results: %w", err)
		}
		c.Quantity, err = ParseDecimal(quantityStr)
		if err != nil {
			return nil, err
		}
		consumptions = append(consumptions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot_consumption table: %w", err)
	}

	return consumptions, nil
}

// SumConsumedQuantity returns the total quantity consumed from a lot by all
// realized sales referencing it.
func (r *GainRepository) SumConsumedQuantity(ctx context.Context, lotID string) ([]string, error) {
	query := `SELECT quantity FROM lot_consumption WHERE lot_id = ?`

	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot_consumption table: %w", err)
	}
	defer rows.Close()

	quantities := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan lot_consumption results: %w", err)
		}
		quantities = append(quantities, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot_consumption table: %w", err)
	}

	return quantities, nil
}

// DeleteGains removes realized gains (and their consumption entries, via
// cascade) for the given scope. Used only by the ledger reset.
func (r *GainRepository) DeleteGains(ctx context.Context, accountID, symbol string) error {
	query := `DELETE FROM realized_gain`
	conditions := []string{}
	args := []any{}

	if accountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, accountID)
	}
	if symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, symbol)
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete realized gains: %w", err)
	}

	return nil
}

func (r *GainRepository) queryGains(ctx context.Context, query string, args ...any) ([]model.RealizedGain, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query realized_gain table: %w", err)
	}
	defer rows.Close()

	gains := []model.RealizedGain{}
	for rows.Next() {
		gain, err := scanGain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realized_gain results: %w", err)
		}
		gains = append(gains, *gain)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realized_gain table: %w", err)
	}

	return gains, nil
}

func scanGain(s scanner) (*model.RealizedGain, error) {
	var g model.RealizedGain
	var saleDateStr, quantityStr, proceedsStr, costBasisStr, gainLossStr, createdAtStr string
	var notes sql.NullString

	err := s.Scan(
		&g.ID,
		&g.SaleID,
		&g.AccountID,
		&g.Symbol,
		&saleDateStr,
		&quantityStr,
		&proceedsStr,
		&costBasisStr,
		&gainLossStr,
		&g.HoldingPeriodDays,
		&g.LongTerm,
		&g.WashSale,
		&notes,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	g.SaleDate, err = ParseTime(saleDateStr)
	if err != nil || g.SaleDate.IsZero() {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	g.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	g.Quantity, err = ParseDecimal(quantityStr)
	if err != nil {
		return nil, err
	}
	g.Proceeds, err = ParseDecimal(proceedsStr)
	if err != nil {
		return nil, err
	}
	g.CostBasis, err = ParseDecimal(costBasisStr)
	if err != nil {
		return nil, err
	}
	g.GainLoss, err = ParseDecimal(gainLossStr)
	if err != nil {
		return nil, err
	}
	g.Notes = notes.String

	return &g, nil
}
