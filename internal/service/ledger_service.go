package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
)

// LedgerService is the single owner of tax lot and realized gain storage.
// All lot mutations go through it: lots are created by the sync engine,
// consumed when sales are realized, and never deleted outside an explicit
// reset. Mutations for one (account, symbol) scope must be serialized;
// AcquireScope enforces that.
type LedgerService struct {
	db    *sql.DB
	lots  *repository.LotRepository
	gains *repository.GainRepository
	locks *scopeLockSet
}

// NewLedgerService creates a new LedgerService with the provided database
// connection.
func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{
		db:    db,
		lots:  repository.NewLotRepository(db),
		gains: repository.NewGainRepository(db),
		locks: newScopeLockSet(),
	}
}

// WithTx returns a ledger bound to the given transaction. The returned
// ledger shares scope locks with its parent, so serialization guarantees
// carry across the transaction boundary.
func (s *LedgerService) WithTx(tx *sql.Tx) *LedgerService {
	return &LedgerService{
		lots:  repository.NewLotRepository(tx),
		gains: repository.NewGainRepository(tx),
		locks: s.locks,
	}
}

// BeginTx starts a storage transaction for a sync batch.
func (s *LedgerService) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, fmt.Errorf("ledger is already transaction-bound")
	}
	return s.db.BeginTx(ctx, nil)
}

// AcquireScope reserves exclusive write access to one (account, symbol)
// scope. Returns ErrScopeBusy when a sync already holds it. The returned
// release function must be called when the batch completes.
func (s *LedgerService) AcquireScope(accountID, symbol string) (func(), error) {
	return s.locks.acquire(accountID + "/" + symbol)
}

// CreateLot records a new acquisition. Quantity must be positive and cost
// basis non-negative; anything else is rejected with ErrInvalidLot.
func (s *LedgerService) CreateLot(ctx context.Context, accountID, symbol string, date time.Time, quantity, costBasis decimal.Decimal, source string) (*model.StockLot, error) {
	if accountID == "" || symbol == "" {
		return nil, fmt.Errorf("%w: account and symbol are required", apperrors.ErrInvalidLot)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", apperrors.ErrInvalidLot, quantity)
	}
	if costBasis.IsNegative() {
		return nil, fmt.Errorf("%w: cost basis must not be negative, got %s", apperrors.ErrInvalidLot, costBasis)
	}

	lot := &model.StockLot{
		ID:                uuid.New().String(),
		AccountID:         accountID,
		Symbol:            symbol,
		AcquisitionDate:   date,
		OriginalQuantity:  quantity,
		RemainingQuantity: quantity,
		CostBasis:         costBasis,
		Source:            source,
		Status:            model.LotStatusOpen,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.lots.InsertLot(ctx, lot); err != nil {
		return nil, err
	}

	return lot, nil
}

// ConsumeLot decrements a lot's remaining quantity and transitions its
// status. Consuming more than remains fails with
// ErrInsufficientLotQuantity; callers are expected to go through the
// matcher, which never over-allocates.
func (s *LedgerService) ConsumeLot(ctx context.Context, lotID string, quantity decimal.Decimal) error {
	lot, err := s.lots.GetLot(ctx, lotID)
	if err != nil {
		return err
	}

	if quantity.GreaterThan(lot.RemainingQuantity) {
		return fmt.Errorf("%w: lot %s has %s remaining, requested %s",
			apperrors.ErrInsufficientLotQuantity, lotID, lot.RemainingQuantity, quantity)
	}

	remaining := lot.RemainingQuantity.Sub(quantity)
	return s.lots.UpdateRemaining(ctx, lotID, remaining.String(), lot.StatusForRemaining(remaining))
}

// GetLot retrieves a single lot by ID.
func (s *LedgerService) GetLot(ctx context.Context, lotID string) (*model.StockLot, error) {
	return s.lots.GetLot(ctx, lotID)
}

// ListOpenLots retrieves lots with remaining shares for the scope, oldest
// acquisition first. This is the matcher's FIFO input order.
func (s *LedgerService) ListOpenLots(ctx context.Context, accountID, symbol string) ([]model.StockLot, error) {
	return s.lots.ListOpenLots(ctx, accountID, symbol)
}

// ListLots retrieves lots filtered by status, account and symbol.
func (s *LedgerService) ListLots(ctx context.Context, status model.LotStatus, accountID, symbol string) ([]model.StockLot, error) {
	return s.lots.ListLots(ctx, status, accountID, symbol)
}

// RecordGain persists a realized gain row. The consumption entries must
// sum to the row's quantity.
func (s *LedgerService) RecordGain(ctx context.Context, gain *model.RealizedGain) error {
	total := decimal.Zero
	for _, c := range gain.Consumptions {
		total = total.Add(c.Quantity)
	}
	if !total.Equal(gain.Quantity) {
		return fmt.Errorf("consumption quantities sum to %s, gain quantity is %s", total, gain.Quantity)
	}

	if gain.ID == "" {
		gain.ID = uuid.New().String()
	}
	if gain.CreatedAt.IsZero() {
		gain.CreatedAt = time.Now().UTC()
	}

	return s.gains.InsertGain(ctx, gain)
}

// UpdateWashFlag sets the wash-sale flag on all gain rows of a sale. This
// is the only mutation allowed on realized gains; the wash-sale detector
// uses it when later repurchases land inside the window.
func (s *LedgerService) UpdateWashFlag(ctx context.Context, saleID string, washSale bool) error {
	return s.gains.UpdateWashFlag(ctx, saleID, washSale)
}

// Reset clears lots and realized gains for a scope. Destructive; callers
// must pass confirm explicitly. Empty account or symbol widens the scope.
func (s *LedgerService) Reset(ctx context.Context, accountID, symbol string, confirm bool) error {
	if !confirm {
		return apperrors.ErrResetNotConfirmed
	}

	if err := s.gains.DeleteGains(ctx, accountID, symbol); err != nil {
		return err
	}
	return s.lots.DeleteLots(ctx, accountID, symbol)
}

// scopeLockSet hands out exclusive, non-blocking locks keyed by scope.
type scopeLockSet struct {
	mu   sync.Mutex
	held map[string]bool
}

func newScopeLockSet() *scopeLockSet {
	return &scopeLockSet{held: make(map[string]bool)}
}

func (l *scopeLockSet) acquire(key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrScopeBusy, key)
	}
	l.held[key] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}
	return release, nil
}
