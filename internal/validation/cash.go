package validation

import (
	"github.com/avermeer/stock-ledger-backend/internal/api/request"
	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// ValidateCashMovement validates a deposit or withdrawal request. The amount
// must be a positive decimal with at most 2 fractional digits; the endpoint
// decides the sign.
func ValidateCashMovement(req request.CashMovementRequest) error {
	errors := make(map[string]string)

	if amount, err := money.ParseMoney(req.Amount); err != nil {
		errors["amount"] = err.Error()
	} else if !amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
