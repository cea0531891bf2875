package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

// LotRepository provides data access methods for the stock_lot table.
type LotRepository struct {
	db DBTX
}

// NewLotRepository creates a new LotRepository bound to the given database
// or transaction.
func NewLotRepository(db DBTX) *LotRepository {
	return &LotRepository{db: db}
}

const lotColumns = `id, account_id, symbol, acquisition_date, original_quantity,
	remaining_quantity, cost_basis, source, status, method, notes, created_at`

// InsertLot stores a new tax lot.
func (r *LotRepository) InsertLot(ctx context.Context, lot *model.StockLot) error {
	query := `
		INSERT INTO stock_lot (id, account_id, symbol, acquisition_date, original_quantity,
			remaining_quantity, cost_basis, source, status, method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lot.ID,
		lot.AccountID,
		lot.Symbol,
		lot.AcquisitionDate.Format("2006-01-02"),
		lot.OriginalQuantity.String(),
		lot.RemainingQuantity.String(),
		lot.CostBasis.String(),
		lot.Source,
		string(lot.Status),
		string(lot.Method),
		lot.Notes,
		lot.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}

	return nil
}

// GetLot retrieves a single lot by ID.
func (r *LotRepository) GetLot(ctx context.Context, lotID string) (*model.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lot WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, lotID)
	lot, err := scanLot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock_lot results: %w", err)
	}

	return lot, nil
}

// ListOpenLots retrieves lots with remaining quantity for the given scope,
// ordered by acquisition date ascending with insertion order as tie-break.
// Empty account or symbol widens the filter.
func (r *LotRepository) ListOpenLots(ctx context.Context, accountID, symbol string) ([]model.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lot WHERE status != ?`
	args := []any{string(model.LotStatusClosed)}

	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	if symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY acquisition_date ASC, rowid ASC`

	return r.queryLots(ctx, query, args...)
}

// ListLots retrieves lots filtered by status, account and symbol. All
// filters are optional.
func (r *LotRepository) ListLots(ctx context.Context, status model.LotStatus, accountID, symbol string) ([]model.StockLot, error) {
	conditions := []string{}
	args := []any{}

	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(status))
	}
	if accountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, accountID)
	}
	if symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, symbol)
	}

	query := `SELECT ` + lotColumns + ` FROM stock_lot`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY acquisition_date ASC, rowid ASC`

	return r.queryLots(ctx, query, args...)
}

// UpdateRemaining sets the remaining quantity and status of a lot.
func (r *LotRepository) UpdateRemaining(ctx context.Context, lotID string, remaining string, status model.LotStatus) error {
	query := `UPDATE stock_lot SET remaining_quantity = ?, status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, remaining, string(status), lotID)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrLotNotFound
	}

	return nil
}

// DeleteLots removes lots for the given scope. Used only by the ledger's
// clear-and-rebuild reset; normal operation never deletes lots.
func (r *LotRepository) DeleteLots(ctx context.Context, accountID, symbol string) error {
	query := `DELETE FROM stock_lot`
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
		return fmt.Errorf("failed to delete lots: %w", err)
	}

	return nil
}

func (r *LotRepository) queryLots(ctx context.Context, query string, args ...any) ([]model.StockLot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.StockLot{}
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock_lot results: %w", err)
		}
		lots = append(lots, *lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_lot table: %w", err)
	}

	return lots, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLot(s scanner) (*model.StockLot, error) {
	var lot model.StockLot
	var acquisitionDateStr, originalStr, remainingStr, costBasisStr, statusStr, createdAtStr string
	var source, method, notes sql.NullString

	err := s.Scan(
		&lot.ID,
		&lot.AccountID,
		&lot.Symbol,
		&acquisitionDateStr,
		&originalStr,
		&remainingStr,
		&costBasisStr,
		&source,
		&statusStr,
		&method,
		&notes,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	lot.AcquisitionDate, err = ParseTime(acquisitionDateStr)
	if err != nil || lot.AcquisitionDate.IsZero() {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	lot.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	lot.OriginalQuantity, err = ParseDecimal(originalStr)
	if err != nil {
		return nil, err
	}
	lot.RemainingQuantity, err = ParseDecimal(remainingStr)
	if err != nil {
		return nil, err
	}
	lot.CostBasis, err = ParseDecimal(costBasisStr)
	if err != nil {
		return nil, err
	}

	lot.Status = model.LotStatus(statusStr)
	lot.Source = source.String
	lot.Method = model.SelectionMethod(method.String)
	lot.Notes = notes.String

	return &lot, nil
}
