package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mjansen/wealth-tracker-backend/internal/api"
	"github.com/mjansen/wealth-tracker-backend/internal/config"
	"github.com/mjansen/wealth-tracker-backend/internal/database"
	"github.com/mjansen/wealth-tracker-backend/internal/repository"
	"github.com/mjansen/wealth-tracker-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create services
	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(db)
	transactionService := service.NewTransactionService(db)
	reportService := service.NewReportService(db)
	washSaleService := service.NewWashSaleService(
		repository.NewTransactionRepository(db),
		repository.NewGainRepository(db),
		ledgerService,
	)
	syncService := service.NewSyncService(db, ledgerService, washSaleService, nil)

	// Scheduled incremental sync picks up feed records that arrived since
	// the last run.
	scheduler := cron.New()
	if cfg.Sync.Schedule != "" {
		_, err := scheduler.AddFunc(cfg.Sync.Schedule, func() {
			result, err := syncService.Sync(context.Background(), service.SyncRequest{})
			if err != nil {
				log.Printf("Scheduled sync failed: %v", err)
				return
			}
			log.Printf("Scheduled sync: %d lots created, %d sales created, %d errors",
				result.LotsCreated, result.SalesCreated, len(result.Errors))
		})
		if err != nil {
			log.Fatalf("Invalid sync schedule %q: %v", cfg.Sync.Schedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(systemService, syncService, reportService, ledgerService, transactionService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
