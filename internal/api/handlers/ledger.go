package handlers

import (
	"errors"
	"net/http"

	"github.com/mjansen/wealth-tracker-backend/internal/api/request"
	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
	"github.com/mjansen/wealth-tracker-backend/internal/validation"
)

// LedgerHandler handles destructive ledger administration requests.
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler with the provided service dependency.
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// Reset handles POST requests to clear lots and realized gains for a
// scope. Destructive: requires confirm=true in the body, and the route is
// guarded by the API token middleware.
//
// Endpoint: POST /api/ledger/reset
// Request Body: ResetRequest (account?, symbol?, confirm)
// Response: 204 No Content
// Error: 400 Bad Request if confirmation is missing
// Error: 500 Internal Server Error if the reset fails
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ResetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateResetRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.ledgerService.Reset(r.Context(), req.Account, req.Symbol, req.Confirm); err != nil {
		if errors.Is(err, apperrors.ErrResetNotConfirmed) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrResetNotConfirmed.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReset.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
