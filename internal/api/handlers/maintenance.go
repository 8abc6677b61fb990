package handlers

import (
	"errors"
	"net/http"

	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// MaintenanceHandler handles HTTP requests for the out-of-band maintenance
// operations: reconciliation backfill and consistency validation.
type MaintenanceHandler struct {
	reconciliation *service.ReconciliationSync
	validator      *service.ConsistencyValidator
}

// NewMaintenanceHandler creates a new MaintenanceHandler with the provided service dependencies.
func NewMaintenanceHandler(reconciliation *service.ReconciliationSync, validator *service.ConsistencyValidator) *MaintenanceHandler {
	return &MaintenanceHandler{
		reconciliation: reconciliation,
		validator:      validator,
	}
}

// Backfill handles POST requests to synthesize missing cash entries for
// historical stock transactions. The operation is idempotent: a second run
// reports zero created entries.
//
// Endpoint: POST /api/account/{accountId}/reconcile
// Response: 200 OK with BackfillResult (created, skipped, failed)
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the scan itself fails
func (h *MaintenanceHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	result, err := h.reconciliation.BackfillCashEntries(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill cash entries", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Validate handles GET requests to run the consistency checks for an
// account. Violations are reported in the response body, not as an error
// status; the endpoint is a health probe, not a gate.
//
// Endpoint: GET /api/account/{accountId}/validate
// Response: 200 OK with array of Violation (empty when consistent)
// Error: 500 Internal Server Error if the checks cannot run
func (h *MaintenanceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	violations, err := h.validator.Validate(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to validate account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, violations)
}
