package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avermeer/stock-ledger-backend/internal/api/request"
	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/service"
	"github.com/avermeer/stock-ledger-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// CashHandler handles HTTP requests for cash ledger endpoints: deposits,
// withdrawals, balance, and the entry history.
type CashHandler struct {
	ledger     *service.TransactionLedger
	cashLedger *service.CashLedger
}

// NewCashHandler creates a new CashHandler with the provided service dependencies.
func NewCashHandler(ledger *service.TransactionLedger, cashLedger *service.CashLedger) *CashHandler {
	return &CashHandler{
		ledger:     ledger,
		cashLedger: cashLedger,
	}
}

// Deposit handles POST requests to record a cash deposit.
//
// Endpoint: POST /api/account/{accountId}/deposit
// Request Body: CashMovementRequest (amount, description)
// Response: 201 Created with CashEntry
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the append fails
func (h *CashHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledger.Deposit)
}

// Withdraw handles POST requests to record a cash withdrawal. Withdrawals
// are permitted even when they drive the balance negative; the ledger
// records truth and leaves overdraft limits to policy layers above it.
//
// Endpoint: POST /api/account/{accountId}/withdraw
// Request Body: CashMovementRequest (amount, description)
// Response: 201 Created with CashEntry
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the append fails
func (h *CashHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledger.Withdraw)
}

func (h *CashHandler) movement(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, accountID string, amount money.Money, description string) (model.CashEntry, error)) {
	accountID := chi.URLParam(r, "accountId")

	req, err := parseJSON[request.CashMovementRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCashMovement(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	amount, err := money.ParseMoney(req.Amount)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := apply(r.Context(), accountID, amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidAmount):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to record cash movement", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// Balance handles GET requests to retrieve the current cash balance.
//
// Endpoint: GET /api/account/{accountId}/balance
// Response: 200 OK with {"balance": "..."}
// Error: 500 Internal Server Error if retrieval fails
func (h *CashHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	balance, err := h.cashLedger.GetBalance(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveBalance.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"balance": balance.String()})
}

// Entries handles GET requests to retrieve the cash ledger of an account in
// append order.
//
// Endpoint: GET /api/account/{accountId}/cash
// Response: 200 OK with array of CashEntry
// Error: 500 Internal Server Error if retrieval fails
func (h *CashHandler) Entries(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	entries, err := h.cashLedger.GetEntries(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveCashEntries.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}
