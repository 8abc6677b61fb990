// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/avermeer/stock-ledger-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ValidateAccountIDMiddleware validates that the accountId URL parameter is
// present and is a valid UUID. Returns 400 Bad Request if it is missing or
// invalid. Apply it to routes carrying an account ID in the URL path.
//
// Example usage in router:
//
//	r.Route("/{accountId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateAccountIDMiddleware)
//	    r.Get("/balance", handler.Balance)
//	})
func ValidateAccountIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "accountId")

		if accountID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid account ID is required", "")
			return
		}

		if err := validation.ValidateUUID(accountID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid account ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateTransactionIDMiddleware validates that the uuid URL parameter is
// present and is a valid UUID. Returns 400 Bad Request if it is missing or
// invalid.
func ValidateTransactionIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transactionID := chi.URLParam(r, "uuid")

		if transactionID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid transaction ID is required", "")
			return
		}

		if err := validation.ValidateUUID(transactionID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid transaction ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
