package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mjansen/wealth-tracker-backend/internal/api/handlers"
	custommiddleware "github.com/mjansen/wealth-tracker-backend/internal/api/middleware"
	"github.com/mjansen/wealth-tracker-backend/internal/config"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	syncService *service.SyncService,
	reportService *service.ReportService,
	ledgerService *service.LedgerService,
	transactionService *service.TransactionService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/sync", func(r chi.Router) {
			syncHandler := handlers.NewSyncHandler(syncService)
			r.Post("/", syncHandler.Sync)
		})

		r.Route("/gains", func(r chi.Router) {
			gainsHandler := handlers.NewGainsHandler(reportService)
			r.Get("/", gainsHandler.RealizedGains)
			r.Get("/summary", gainsHandler.Summary)
		})

		r.Route("/lots", func(r chi.Router) {
			lotsHandler := handlers.NewLotsHandler(reportService, ledgerService)
			r.Get("/", lotsHandler.Lots)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", lotsHandler.GetLot)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionsHandler := handlers.NewTransactionsHandler(transactionService)
			r.Get("/", transactionsHandler.Transactions)
		})

		// Destructive endpoints sit behind the API token guard.
		r.Route("/ledger", func(r chi.Router) {
			r.Use(custommiddleware.APIToken(cfg.Auth.FernetKey))
			ledgerHandler := handlers.NewLedgerHandler(ledgerService)
			r.Post("/reset", ledgerHandler.Reset)
		})
	})

	return r
}
