package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mjansen/wealth-tracker-backend/internal/api"
	"github.com/mjansen/wealth-tracker-backend/internal/config"
	"github.com/mjansen/wealth-tracker-backend/internal/model"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
	"github.com/mjansen/wealth-tracker-backend/internal/testutil"
)

// setupRouter wires the full API over an in-memory database.
func setupRouter(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	router := api.NewRouter(
		service.NewSystemService(db),
		testutil.NewTestSyncService(t, db),
		testutil.NewTestReportService(t, db),
		ledger,
		testutil.NewTestTransactionService(t, db),
		cfg,
	)
	return router, db
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSyncEndpoint(t *testing.T) {
	t.Run("ingests and projects transactions", func(t *testing.T) {
		router, _ := setupRouter(t)

		body := `{"transactions": [
			{"account": "acct-1", "symbol": "AAPL", "date": "2023-01-10", "action": "buy", "quantity": "100", "amount": "10000"},
			{"account": "acct-1", "symbol": "AAPL", "date": "2024-02-01", "action": "sell", "quantity": "40", "amount": "6000"}
		]}`

		rec := doRequest(t, router, http.MethodPost, "/api/sync/", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var result model.SyncResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.LotsCreated != 1 || result.SalesCreated != 1 {
			t.Errorf("Expected 1 lot and 1 sale, got %d and %d", result.LotsCreated, result.SalesCreated)
		}
	})

	t.Run("rejects invalid records with field errors", func(t *testing.T) {
		router, _ := setupRouter(t)

		body := `{"transactions": [
			{"account": "", "symbol": "AAPL", "date": "2023-01-10", "action": "hold", "quantity": "100", "amount": "10000"}
		]}`

		rec := doRequest(t, router, http.MethodPost, "/api/sync/", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "transactions[0].account") {
			t.Errorf("Expected field-level error, got %s", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "invalid action") {
			t.Errorf("Expected action error, got %s", rec.Body.String())
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		router, _ := setupRouter(t)

		rec := doRequest(t, router, http.MethodPost, "/api/sync/", `{"transactionz": []}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown field, got %d", rec.Code)
		}
	})
}

func TestGainsEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"transactions": [
		{"account": "acct-1", "symbol": "AAPL", "date": "2022-01-10", "action": "buy", "quantity": "100", "amount": "10000"},
		{"account": "acct-1", "symbol": "AAPL", "date": "2024-02-01", "action": "sell", "quantity": "40", "amount": "6000"}
	]}`
	if rec := doRequest(t, router, http.MethodPost, "/api/sync/", body); rec.Code != http.StatusOK {
		t.Fatalf("Sync setup failed: %d %s", rec.Code, rec.Body.String())
	}

	t.Run("realized gains by year", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/gains/?year=2024", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var gains []model.RealizedGain
		if err := json.Unmarshal(rec.Body.Bytes(), &gains); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(gains) != 1 {
			t.Fatalf("Expected 1 gain row, got %d", len(gains))
		}
		if !gains[0].LongTerm {
			t.Error("Expected a long-term gain")
		}
		if len(gains[0].Consumptions) != 1 {
			t.Errorf("Expected consumption entries attached, got %d", len(gains[0].Consumptions))
		}
	})

	t.Run("summary by year", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/gains/summary?year=2024", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var summary model.CapitalGainsSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if summary.Year != 2024 || len(summary.Symbols) != 1 {
			t.Errorf("Unexpected summary: year %d, %d symbols", summary.Year, len(summary.Symbols))
		}
	})

	t.Run("missing year is rejected", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/gains/", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for missing year, got %d", rec.Code)
		}
	})
}

func TestLotsEndpoints(t *testing.T) {
	router, db := setupRouter(t)
	ledger := testutil.NewTestLedgerService(t, db)
	lot := testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2024-01-10", "100", "10000")

	t.Run("lists lots", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/lots/?status=open", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var lots []model.StockLot
		if err := json.Unmarshal(rec.Body.Bytes(), &lots); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(lots) != 1 || lots[0].ID != lot.ID {
			t.Errorf("Unexpected lots response: %+v", lots)
		}
	})

	t.Run("rejects invalid status filter", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/lots/?status=bogus", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for invalid status, got %d", rec.Code)
		}
	})

	t.Run("gets a lot by ID", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/lots/"+lot.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown lot returns 404", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/lots/00000000-0000-0000-0000-000000000000", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("malformed UUID returns 400", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/lots/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerResetEndpoint(t *testing.T) {
	router, db := setupRouter(t)
	ledger := testutil.NewTestLedgerService(t, db)
	testutil.CreateLot(t, ledger, "acct-1", "AAPL", "2024-01-10", "100", "10000")

	t.Run("requires confirmation", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ledger/reset", `{"confirm": false}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without confirmation, got %d", rec.Code)
		}
	})

	t.Run("clears the ledger when confirmed", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/ledger/reset", `{"confirm": true}`)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
		}

		lots, err := ledger.ListLots(context.Background(), "", "", "")
		if err != nil {
			t.Fatalf("ListLots failed: %v", err)
		}
		if len(lots) != 0 {
			t.Errorf("Expected empty ledger after reset, got %d lots", len(lots))
		}
	})
}

func TestSystemEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("health", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/system/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "healthy") {
			t.Errorf("Unexpected health body: %s", rec.Body.String())
		}
	})

	t.Run("version", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/system/version", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	})
}

func TestTransactionsEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"transactions": [
		{"account": "acct-1", "symbol": "AAPL", "date": "2024-01-10", "action": "buy", "quantity": "10", "amount": "1000"}
	]}`
	if rec := doRequest(t, router, http.MethodPost, "/api/sync/", body); rec.Code != http.StatusOK {
		t.Fatalf("Sync setup failed: %d", rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/transactions/?account=acct-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var transactions []model.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &transactions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected 1 stored transaction, got %d", len(transactions))
	}
	if transactions[0].ProcessedAt == nil {
		t.Error("Synced transaction must carry a processed marker")
	}
}
