package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// LotsHandler handles HTTP requests for tax lot endpoints.
type LotsHandler struct {
	reportService *service.ReportService
	ledgerService *service.LedgerService
}

// NewLotsHandler creates a new LotsHandler with the provided service dependencies.
func NewLotsHandler(reportService *service.ReportService, ledgerService *service.LedgerService) *LotsHandler {
	return &LotsHandler{
		reportService: reportService,
		ledgerService: ledgerService,
	}
}

// validLotStatus contains the allowed lot status filter values.
var validLotStatus = map[string]bool{
	"": true, "open": true, "partial": true, "closed": true,
}

// Lots handles GET requests to list tax lots, optionally filtered by
// status, account and symbol.
//
// Endpoint: GET /api/lots?status=open&account=&symbol=
// Response: 200 OK with array of StockLot
// Error: 400 Bad Request if the status filter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *LotsHandler) Lots(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !validLotStatus[status] {
		response.RespondError(w, http.StatusBadRequest, "invalid status filter", status)
		return
	}

	lots, err := h.reportService.OpenLots(
		r.Context(),
		model.LotStatus(status),
		r.URL.Query().Get("account"),
		r.URL.Query().Get("symbol"),
	)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// GetLot handles GET requests to retrieve a single tax lot by ID.
//
// Endpoint: GET /api/lots/{uuid}
// Response: 200 OK with StockLot
// Error: 400 Bad Request if the lot ID is invalid (validated by middleware)
// Error: 404 Not Found if the lot does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *LotsHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "uuid")

	lot, err := h.ledgerService.GetLot(r.Context(), lotID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lot)
}
