package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrLotNotFound indicates that a tax lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrSaleNotFound indicates that a realized gain record with the given
	// sale ID does not exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrTransactionNotFound indicates that a feed transaction with the
	// given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidLot indicates malformed acquisition data: non-positive
	// quantity or negative cost basis. The lot is rejected, not ingested.
	ErrInvalidLot = errors.New("invalid lot")

	// ErrOversold indicates that a sale exceeds the total open quantity
	// tracked for the symbol and account. Surfaced per transaction; it
	// usually means acquisition history is missing from the feed.
	ErrOversold = errors.New("sale quantity exceeds open lot quantity")

	// ErrInsufficientLotQuantity indicates an attempt to consume more
	// shares from a single lot than it has remaining. Reaching this error
	// means a caller bypassed the matcher.
	ErrInsufficientLotQuantity = errors.New("insufficient lot quantity")

	// ErrScopeBusy indicates that a sync is already running for the same
	// account/symbol scope. Concurrent syncs on one scope are rejected
	// because lot matching and wash-sale detection are order-sensitive.
	ErrScopeBusy = errors.New("sync already in progress for scope")

	// ErrResetNotConfirmed indicates a ledger reset was requested without
	// the explicit confirmation flag. Reset is destructive.
	ErrResetNotConfirmed = errors.New("reset requires explicit confirmation")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Operation failure errors represent system-level failures when retrieving
// or processing data.
var (
	ErrFailedToRetrieveLots         = errors.New("failed to retrieve lots")
	ErrFailedToRetrieveGains        = errors.New("failed to retrieve realized gains")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToGetSummary           = errors.New("failed to get capital gains summary")
	ErrFailedToSync                 = errors.New("failed to sync transactions")
	ErrFailedToReset                = errors.New("failed to reset ledger")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)
