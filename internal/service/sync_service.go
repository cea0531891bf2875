package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
)

// scopeReplayLimit caps how many (account, symbol) scopes replay
// concurrently during a sync.
const scopeReplayLimit = 4

// SyncService projects the external transaction feed onto the lot ledger.
// Ingestion is idempotent: feed records are deduplicated by ID, and a
// clear-and-rebuild replays the stored history from scratch, converging to
// the same lots and gains every time.
type SyncService struct {
	db           *sql.DB
	ledger       *LedgerService
	transactions *repository.TransactionRepository
	washSales    *WashSaleService
	strategy     SelectionStrategy
}

// NewSyncService creates a new SyncService. A nil strategy selects FIFO,
// the ledger's default lot-selection method.
func NewSyncService(
	db *sql.DB,
	ledger *LedgerService,
	washSales *WashSaleService,
	strategy SelectionStrategy,
) *SyncService {
	if strategy == nil {
		strategy = FIFOStrategy{}
	}
	return &SyncService{
		db:           db,
		ledger:       ledger,
		transactions: repository.NewTransactionRepository(db),
		washSales:    washSales,
		strategy:     strategy,
	}
}

// SyncRequest carries one sync invocation: new feed records to ingest and
// the requested mode. ClearExisting wipes lots and gains for the scope
// (all scopes when account and symbol are empty) and replays the full
// stored history; otherwise only unprocessed records are applied.
type SyncRequest struct {
	ClearExisting bool
	AccountID     string
	Symbol        string
	Transactions  []model.Transaction
}

// scopeKey identifies one serialization unit: processing order is strictly
// chronological per account and symbol.
type scopeKey struct {
	accountID string
	symbol    string
}

// Sync ingests the request's feed records and projects all pending
// records onto the ledger. Per-transaction domain errors (oversells,
// malformed lots) are collected into the result and processing continues;
// storage errors abort the affected scope's batch and surface to the
// caller, which owns any retry policy.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*model.SyncResult, error) {
	result := &model.SyncResult{Errors: []model.SyncError{}}

	for i := range req.Transactions {
		t := &req.Transactions[i]
		if t.ID == "" {
			t.ID = t.NaturalKey()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}

		inserted, err := s.transactions.InsertTransaction(ctx, t)
		if err != nil {
			return nil, err
		}
		if !inserted {
			result.Skipped++
		}
	}

	if req.ClearExisting {
		if err := s.ledger.Reset(ctx, req.AccountID, req.Symbol, true); err != nil {
			return nil, err
		}
		if err := s.transactions.ClearProcessed(ctx, req.AccountID, req.Symbol); err != nil {
			return nil, err
		}
	}

	pending, err := s.transactions.ListUnprocessed(ctx)
	if err != nil {
		return nil, err
	}

	scopes := groupByScope(pending)
	keys := make([]scopeKey, 0, len(scopes))
	for key := range scopes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].accountID != keys[j].accountID {
			return keys[i].accountID < keys[j].accountID
		}
		return keys[i].symbol < keys[j].symbol
	})

	// Scopes are independent serialization units; replay them in parallel,
	// each inside its own storage transaction.
	scopeResults := make([]model.SyncResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scopeReplayLimit)

	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			res, err := s.syncScope(gctx, key, scopes[key])
			if err != nil {
				return err
			}
			scopeResults[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range scopeResults {
		result.Merge(res)
	}

	// Post-pass: new purchases can retroactively turn earlier losses into
	// wash sales, so re-scan every touched symbol.
	for _, symbol := range touchedSymbols(keys) {
		s.washSales.RescanSymbol(ctx, symbol)
	}

	return result, nil
}

// syncScope applies one scope's pending transactions in chronological
// order inside a single storage transaction, so concurrent readers observe
// either the pre-batch or post-batch ledger, never a partial one.
func (s *SyncService) syncScope(ctx context.Context, key scopeKey, pending []model.Transaction) (*model.SyncResult, error) {
	release, err := s.ledger.AcquireScope(key.accountID, key.symbol)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	ledger := s.ledger.WithTx(tx)
	transactions := repository.NewTransactionRepository(tx)
	calculator := NewGainCalculator(ledger)

	result := &model.SyncResult{Errors: []model.SyncError{}}
	chronoSort(pending)

	for _, t := range pending {
		// Rebuilds over long histories must stay cancellable; check at
		// each transaction boundary, never mid-transaction.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.apply(ctx, ledger, calculator, t, result); err != nil {
			if !isDomainError(err) {
				return nil, err
			}
			result.Errors = append(result.Errors, model.SyncError{
				TransactionID: t.ID,
				Error:         err.Error(),
			})
		}

		if err := transactions.MarkProcessed(ctx, t.ID, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync batch: %w", err)
	}

	return result, nil
}

// apply projects a single feed transaction onto the ledger.
func (s *SyncService) apply(ctx context.Context, ledger *LedgerService, calculator *GainCalculator, t model.Transaction, result *model.SyncResult) error {
	switch t.Type {
	case model.TransactionBuy:
		if _, err := ledger.CreateLot(ctx, t.AccountID, t.Symbol, t.Date, t.Quantity, t.Amount, "sync"); err != nil {
			return err
		}
		result.LotsCreated++
		return nil

	case model.TransactionSell:
		lots, err := ledger.ListOpenLots(ctx, t.AccountID, t.Symbol)
		if err != nil {
			return err
		}
		plan, err := s.strategy.Select(lots, t.Quantity)
		if err != nil {
			return err
		}

		sale := Sale{
			ID:        t.ID,
			AccountID: t.AccountID,
			Symbol:    t.Symbol,
			Date:      t.Date,
			Quantity:  t.Quantity,
			Proceeds:  t.Amount,
		}
		if _, err := calculator.RealizeSale(ctx, sale, plan); err != nil {
			return err
		}
		result.SalesCreated++
		return nil

	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
}

// isDomainError reports whether an error is a per-transaction business
// failure that should be recorded and skipped rather than aborting the
// batch.
func isDomainError(err error) bool {
	return errors.Is(err, apperrors.ErrOversold) ||
		errors.Is(err, apperrors.ErrInvalidLot) ||
		errors.Is(err, apperrors.ErrInsufficientLotQuantity) ||
		errors.Is(err, apperrors.ErrLotNotFound)
}

func groupByScope(pending []model.Transaction) map[scopeKey][]model.Transaction {
	scopes := make(map[scopeKey][]model.Transaction)
	for _, t := range pending {
		key := scopeKey{accountID: t.AccountID, symbol: t.Symbol}
		scopes[key] = append(scopes[key], t)
	}
	return scopes
}

// chronoSort orders a scope's transactions for replay: date ascending,
// buys before sells on the same date, feed order as the final tie-break.
func chronoSort(transactions []model.Transaction) {
	rank := func(t model.TransactionType) int {
		if t == model.TransactionBuy {
			return 0
		}
		return 1
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.Before(transactions[j].Date)
		}
		return rank(transactions[i].Type) < rank(transactions[j].Type)
	})
}

func touchedSymbols(keys []scopeKey) []string {
	seen := map[string]bool{}
	symbols := []string{}
	for _, key := range keys {
		if !seen[key.symbol] {
			seen[key.symbol] = true
			symbols = append(symbols, key.symbol)
		}
	}
	return symbols
}
