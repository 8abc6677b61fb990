package handlers

import (
	"net/http"

	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// LotHandler handles HTTP requests for lot endpoints.
type LotHandler struct {
	lotService *service.LotService
}

// NewLotHandler creates a new LotHandler with the provided service dependency.
func NewLotHandler(lotService *service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// OpenLots handles GET requests to retrieve the open lots of an account,
// optionally narrowed to one symbol.
//
// Endpoint: GET /api/account/{accountId}/lots?symbol=&all=
// Response: 200 OK with array of Lot (all=true includes closed lots)
// Error: 500 Internal Server Error if retrieval fails
func (h *LotHandler) OpenLots(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	symbol := r.URL.Query().Get("symbol")

	var err error
	var lots any

	if r.URL.Query().Get("all") == "true" {
		lots, err = h.lotService.GetLots(r.Context(), accountID, symbol)
	} else {
		lots, err = h.lotService.GetOpenLots(r.Context(), accountID, symbol)
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}
