package model

import (
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// Cash entry types. WITHDRAWAL and STOCK_BUY amounts are negative;
// DEPOSIT and STOCK_SELL amounts are positive.
const (
	CashDeposit    = "DEPOSIT"
	CashWithdrawal = "WITHDRAWAL"
	CashStockBuy   = "STOCK_BUY"
	CashStockSell  = "STOCK_SELL"
)

// CashEntry is one line in the append-only cash ledger. BalanceAfter is the
// running balance snapshot after this entry; it is derivable from the chain
// but persisted for O(1) balance reads and as a consistency check.
// Invariant: balanceAfter[n] = balanceAfter[n-1] + amount[n] in Seq order.
type CashEntry struct {
	ID            string      `json:"id"`
	AccountID     string      `json:"accountId"`
	Seq           int64       `json:"seq"`
	Type          string      `json:"type"`
	Amount        money.Money `json:"amount"`
	BalanceAfter  money.Money `json:"balanceAfter"`
	TransactionID string      `json:"transactionId,omitempty"`
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}
