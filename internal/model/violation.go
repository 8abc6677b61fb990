package model

// Violation codes reported by the consistency validator.
const (
	ViolationShareMismatch   = "SHARE_MISMATCH"
	ViolationBalanceChain    = "BALANCE_CHAIN"
	ViolationMissingGainLoss = "MISSING_GAIN_LOSS"
	ViolationCashLink        = "CASH_LINK"
)

// Violation is one consistency finding for an account. The validator returns
// findings instead of failing so it can serve as a non-fatal health probe.
type Violation struct {
	AccountID string `json:"accountId"`
	Code      string `json:"code"`
	Symbol    string `json:"symbol,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	Message   string `json:"message"`
}

// BackfillResult summarizes one reconciliation run.
type BackfillResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
