package handlers

import (
	"net/http"

	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
	"github.com/mjansen/wealth-tracker-backend/internal/apperrors"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// TransactionsHandler handles HTTP requests for the stored transaction
// feed.
type TransactionsHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionsHandler creates a new TransactionsHandler with the provided service dependency.
func NewTransactionsHandler(transactionService *service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to list stored feed records,
// optionally filtered by account and symbol, in chronological order.
//
// Endpoint: GET /api/transactions?account=&symbol=
// Response: 200 OK with array of Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.ListTransactions(
		r.Context(),
		r.URL.Query().Get("account"),
		r.URL.Query().Get("symbol"),
	)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}
