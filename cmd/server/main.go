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

	"github.com/avermeer/stock-ledger-backend/internal/api"
	"github.com/avermeer/stock-ledger-backend/internal/config"
	"github.com/avermeer/stock-ledger-backend/internal/database"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/avermeer/stock-ledger-backend/internal/service"
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

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	lotRepo := repository.NewLotRepository(db)
	cashRepo := repository.NewCashEntryRepository(db)

	// Create services. Mutating services share one lock registry so all
	// work on an account is serialized regardless of entry point.
	locks := service.NewAccountLocks()
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo)
	lotMatcher := service.NewLotMatcher(lotRepo)
	cashLedger := service.NewCashLedger(db, cashRepo)
	ledger := service.NewTransactionLedger(db, locks, lotMatcher, cashLedger, accountRepo, transactionRepo)
	transactionService := service.NewTransactionService(transactionRepo)
	lotService := service.NewLotService(lotRepo)
	reconciliation := service.NewReconciliationSync(db, locks, cashLedger, accountRepo, transactionRepo, cashRepo)
	validator := service.NewConsistencyValidator(locks, accountRepo, lotRepo, transactionRepo, cashRepo)

	// Create router
	router, err := api.NewRouter(systemService, accountService, ledger, transactionService, lotService, cashLedger, reconciliation, validator, cfg)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// Periodic consistency check across all accounts
	scheduler := cron.New()
	if cfg.Jobs.ValidationSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Jobs.ValidationSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			results, err := validator.ValidateAll(ctx)
			if err != nil {
				log.Printf("Consistency check failed: %v", err)
				return
			}
			for accountID, violations := range results {
				for _, v := range violations {
					log.Printf("Consistency violation on account %s: [%s] %s", accountID, v.Code, v.Message)
				}
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule consistency check: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

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
