package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/api/request"
	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/service"
	"github.com/avermeer/stock-ledger-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// TransactionHandler handles HTTP requests for transaction endpoints. It
// parses and validates requests and delegates to the transaction ledger,
// which owns all mutation semantics.
type TransactionHandler struct {
	ledger             *service.TransactionLedger
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependencies.
func NewTransactionHandler(ledger *service.TransactionLedger, transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		ledger:             ledger,
		transactionService: transactionService,
	}
}

// ShortfallDetails is the error detail payload for a sell that exceeds the
// available shares, so the caller can show the gap and correct the order.
type ShortfallDetails struct {
	Symbol    string `json:"symbol"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

// Apply handles POST requests to commit a buy or sell transaction.
//
// Endpoint: POST /api/account/{accountId}/transaction
// Request Body: ApplyTransactionRequest (symbol, side, quantity, price, date, comment)
// Response: 201 Created with TransactionResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account does not exist
// Error: 422 Unprocessable Entity if a sell exceeds the available shares,
// with requested/available quantities in the details
// Error: 500 Internal Server Error if the commit fails
func (h *TransactionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	req, err := parseJSON[request.ApplyTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateApplyTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	quantity, err := money.ParseQuantity(req.Quantity)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	price, err := money.ParseMoney(req.Price)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	tradeDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.ledger.Apply(r.Context(), service.ApplyRequest{
		AccountID: accountID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  quantity,
		Price:     price,
		TradeDate: tradeDate,
		Comment:   req.Comment,
	})
	if err != nil {
		var shortfall *apperrors.SharesShortfallError
		switch {
		case errors.As(err, &shortfall):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientShares.Error(), ShortfallDetails{
				Symbol:    shortfall.Symbol,
				Requested: shortfall.Requested.String(),
				Available: shortfall.Available.String(),
			})
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidQuantity), errors.Is(err, apperrors.ErrInvalidAmount):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to apply transaction", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// History handles GET requests to retrieve the transaction history of an
// account, optionally filtered by symbol, side, and trade-date range.
//
// Endpoint: GET /api/account/{accountId}/transaction?symbol=&side=&from=&to=
// Response: 200 OK with array of Transaction
// Error: 400 Bad Request if a date filter is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	filter := model.TransactionFilter{
		Symbol: r.URL.Query().Get("symbol"),
		Side:   r.URL.Query().Get("side"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid from date", err.Error())
			return
		}
		filter.StartDate = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid to date", err.Error())
			return
		}
		filter.EndDate = t
	}

	transactions, err := h.transactionService.GetTransactionHistory(r.Context(), accountID, filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.transactionService.GetTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}
