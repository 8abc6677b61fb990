package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/api/request"
	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// ValidTransactionSide contains the allowed transaction side values.
var ValidTransactionSide = map[string]bool{
	"BUY": true, "SELL": true,
}

// ValidateApplyTransaction validates a transaction apply request.
//
// Required fields:
//   - symbol: non-empty, at most 10 characters
//   - side: BUY or SELL
//   - quantity: positive decimal with at most 4 fractional digits
//   - price: positive decimal with at most 2 fractional digits
//   - date: YYYY-MM-DD format
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateApplyTransaction(req request.ApplyTransactionRequest) error {
	errors := make(map[string]string)

	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		errors["symbol"] = "symbol is required"
	} else if len(symbol) > 10 {
		errors["symbol"] = "symbol must be at most 10 characters"
	}

	if strings.TrimSpace(req.Side) == "" {
		errors["side"] = "side is required"
	} else if !ValidTransactionSide[req.Side] {
		errors["side"] = fmt.Sprintf("invalid side: %s", req.Side)
	}

	if quantity, err := money.ParseQuantity(req.Quantity); err != nil {
		errors["quantity"] = err.Error()
	} else if !quantity.IsPositive() {
		errors["quantity"] = "quantity must be positive"
	}

	if price, err := money.ParseMoney(req.Price); err != nil {
		errors["price"] = err.Error()
	} else if !price.IsPositive() {
		errors["price"] = "price must be positive"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
