package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avermeer/stock-ledger-backend/internal/api/handlers"
	custommiddleware "github.com/avermeer/stock-ledger-backend/internal/api/middleware"
	"github.com/avermeer/stock-ledger-backend/internal/config"
	"github.com/avermeer/stock-ledger-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	accountService *service.AccountService,
	ledger *service.TransactionLedger,
	transactionService *service.TransactionService,
	lotService *service.LotService,
	cashLedger *service.CashLedger,
	reconciliation *service.ReconciliationSync,
	validator *service.ConsistencyValidator,
	cfg *config.Config,
) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Mutating routes require an API key when one is configured.
	requireKey := func(next http.Handler) http.Handler { return next }
	if cfg.Auth.APIKeySecret != "" {
		apiKey, err := custommiddleware.NewAPIKey(cfg.Auth.APIKeySecret, cfg.Auth.APIKeyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure API key middleware: %w", err)
		}
		requireKey = apiKey
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(accountService)
			r.With(requireKey).Post("/", accountHandler.CreateAccount)
			r.Get("/", accountHandler.Accounts)

			r.Route("/{accountId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAccountIDMiddleware)

				r.Get("/", accountHandler.GetAccount)

				transactionHandler := handlers.NewTransactionHandler(ledger, transactionService)
				r.With(requireKey).Post("/transaction", transactionHandler.Apply)
				r.Get("/transaction", transactionHandler.History)

				lotHandler := handlers.NewLotHandler(lotService)
				r.Get("/lots", lotHandler.OpenLots)

				cashHandler := handlers.NewCashHandler(ledger, cashLedger)
				r.With(requireKey).Post("/deposit", cashHandler.Deposit)
				r.With(requireKey).Post("/withdraw", cashHandler.Withdraw)
				r.Get("/balance", cashHandler.Balance)
				r.Get("/cash", cashHandler.Entries)

				maintenanceHandler := handlers.NewMaintenanceHandler(reconciliation, validator)
				r.With(requireKey).Post("/reconcile", maintenanceHandler.Backfill)
				r.Get("/validate", maintenanceHandler.Validate)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(ledger, transactionService)
			r.With(custommiddleware.ValidateTransactionIDMiddleware).Get("/{uuid}", transactionHandler.GetTransaction)
		})
	})

	return r, nil
}
