package handlers

import (
	"net/http"
	"strconv"

	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// GainsHandler handles HTTP requests for capital-gains reporting endpoints.
// Read-only: all data comes from the report aggregator.
type GainsHandler struct {
	reportService *service.ReportService
}

// NewGainsHandler creates a new GainsHandler with the provided service dependency.
func NewGainsHandler(reportService *service.ReportService) *GainsHandler {
	return &GainsHandler{
		reportService: reportService,
	}
}

// Summary handles GET requests for the per-year capital gains summary,
// grouped by symbol and split by holding-period term.
//
// Endpoint: GET /api/gains/summary?year=YYYY
// Response: 200 OK with CapitalGainsSummary
// Error: 400 Bad Request if the year parameter is missing or malformed
// Error: 500 Internal Server Error if aggregation fails
func (h *GainsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year parameter", err.Error())
		return
	}

	summary, err := h.reportService.Summary(r.Context(), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// RealizedGains handles GET requests for a tax year's realized gain rows,
// including their lot consumption entries.
//
// Endpoint: GET /api/gains?year=YYYY
// Response: 200 OK with array of RealizedGain
// Error: 400 Bad Request if the year parameter is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *GainsHandler) RealizedGains(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year parameter", err.Error())
		return
	}

	gains, err := h.reportService.RealizedGains(r.Context(), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveGains.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, gains)
}

func parseYear(r *http.Request) (int, error) {
	return strconv.Atoi(r.URL.Query().Get("year"))
}
