package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// feed table. The table is the durable copy of the external feed: the sync
// engine replays it, and the wash-sale detector scans it across accounts.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository bound to the
// given database or transaction.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, account_id, symbol, date, type, quantity, amount,
	processed_at, created_at`

// InsertTransaction stores a feed record. Records whose ID is already
// present are ignored, which makes ingestion idempotent. Returns true when
// the record was newly inserted.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) (bool, error) {
	query := `
		INSERT OR IGNORE INTO "transaction" (id, account_id, symbol, date, type,
			quantity, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.AccountID,
		t.Symbol,
		t.Date.Format("2006-01-02"),
		string(t.Type),
		t.Quantity.String(),
		t.Amount.String(),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// GetTransaction retrieves a single feed record by ID.
func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction results: %w", err)
	}

	return t, nil
}

// ListTransactions retrieves feed records filtered by account and symbol,
// in chronological order. Both filters are optional.
func (r *TransactionRepository) ListTransactions(ctx context.Context, accountID, symbol string) ([]model.Transaction, error) {
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

	query := `SELECT ` + transactionColumns + ` FROM "transaction"`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date ASC, rowid ASC`

	return r.queryTransactions(ctx, query, args...)
}

// ListUnprocessed retrieves feed records not yet projected onto the ledger,
// in chronological order.
func (r *TransactionRepository) ListUnprocessed(ctx context.Context) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction"
		WHERE processed_at IS NULL
		ORDER BY date ASC, rowid ASC`

	return r.queryTransactions(ctx, query)
}

// MarkProcessed stamps a feed record as projected onto the ledger.
func (r *TransactionRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE "transaction" SET processed_at = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339), id); err != nil {
		return fmt.Errorf("failed to mark transaction processed: %w", err)
	}

	return nil
}

// ClearProcessed resets the processed marker for the given scope so a
// clear-and-rebuild can replay history. Empty filters widen the scope.
func (r *TransactionRepository) ClearProcessed(ctx context.Context, accountID, symbol string) error {
	query := `UPDATE "transaction" SET processed_at = NULL`
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
		return fmt.Errorf("failed to clear processed markers: %w", err)
	}

	return nil
}

// HasBuyInWindow reports whether any account purchased the symbol within
// the inclusive date window. Cross-account on purpose: the wash-sale rule
// aggregates all accounts under the same holder.
func (r *TransactionRepository) HasBuyInWindow(ctx context.Context, symbol string, from, to time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM "transaction"
		WHERE symbol = ? AND type = ? AND date >= ? AND date <= ?`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		symbol,
		string(model.TransactionBuy),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query transaction window: %w", err)
	}

	return count > 0, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction results: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var t model.Transaction
	var dateStr, quantityStr, amountStr, typeStr, createdAtStr string
	var processedAtStr sql.NullString

	err := s.Scan(
		&t.ID,
		&t.AccountID,
		&t.Symbol,
		&dateStr,
		&typeStr,
		&quantityStr,
		&amountStr,
		&processedAtStr,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	t.Date, err = ParseTime(dateStr)
	if err != nil || t.Date.IsZero() {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if processedAtStr.Valid {
		processedAt, err := ParseTime(processedAtStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		t.ProcessedAt = &processedAt
	}

	t.Type = model.TransactionType(typeStr)
	t.Quantity, err = ParseDecimal(quantityStr)
	if err != nil {
		return nil, err
	}
	t.Amount, err = ParseDecimal(amountStr)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
