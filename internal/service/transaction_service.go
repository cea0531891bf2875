package service

import (
	"context"
	"database/sql"

	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
)

// TransactionService exposes the stored transaction feed to the API layer.
type TransactionService struct {
	transactions *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided
// database connection.
func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{
		transactions: repository.NewTransactionRepository(db),
	}
}

// ListTransactions retrieves stored feed records, optionally filtered by
// account and symbol, in chronological order.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID, symbol string) ([]model.Transaction, error) {
	return s.transactions.ListTransactions(ctx, accountID, symbol)
}

// GetTransaction retrieves a single feed record by ID.
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return s.transactions.GetTransaction(ctx, id)
}
