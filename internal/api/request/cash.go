package request

// CashMovementRequest carries a deposit or withdrawal. The amount is a
// decimal string and must be positive; direction comes from the endpoint.
type CashMovementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}
