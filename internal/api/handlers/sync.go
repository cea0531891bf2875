package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/mjansen/wealth-tracker-backend/internal/api/request"
	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
	"github.com/mjansen/wealth-tracker-backend/internal/validation"
)

// SyncHandler handles HTTP requests for the sync endpoint, the single
// mutation entry point of the ledger.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a new SyncHandler with the provided service dependency.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// Sync handles POST requests to ingest feed transactions and project them
// onto the lot ledger. Per-transaction failures are reported in the result
// body; they do not fail the request.
//
// Endpoint: POST /api/sync
// Request Body: SyncRequest (clearExisting, account?, symbol?, transactions)
// Response: 200 OK with SyncResult
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the scope is already being synced
// Error: 500 Internal Server Error if the sync fails
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SyncRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSyncRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transactions := make([]model.Transaction, 0, len(req.Transactions))
	for _, record := range req.Transactions {
		date, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		transactions = append(transactions, model.Transaction{
			ID:        record.ID,
			AccountID: record.Account,
			Symbol:    record.Symbol,
			Date:      date,
			Type:      model.TransactionType(record.Action),
			Quantity:  record.Quantity,
			Amount:    record.Amount,
		})
	}

	result, err := h.syncService.Sync(r.Context(), service.SyncRequest{
		ClearExisting: req.ClearExisting,
		AccountID:     req.Account,
		Symbol:        req.Symbol,
		Transactions:  transactions,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrScopeBusy) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrScopeBusy.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSync.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
