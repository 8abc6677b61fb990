package model

import (
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// Transaction sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Transaction is an immutable record of a committed buy or sell. The
// computed fields (cost basis, realized gain/loss, remaining-shares
// snapshot) are fixed at commit time and never change afterwards.
type Transaction struct {
	ID        string         `json:"id"`
	AccountID string         `json:"accountId"`
	Symbol    string         `json:"symbol"`
	Side      string         `json:"side"`
	Quantity  money.Quantity `json:"quantity"`
	Price     money.Money    `json:"price"`
	TradeDate time.Time      `json:"tradeDate"`
	Comment   string         `json:"comment,omitempty"`

	// Computed at commit time. CostBasis and RealizedGainLoss are set for
	// SELL transactions only.
	CostBasis        *money.Money   `json:"costBasis,omitempty"`
	RealizedGainLoss *money.Money   `json:"realizedGainLoss,omitempty"`
	RemainingShares  money.Quantity `json:"remainingShares"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// TransactionFilter narrows transaction history queries.
type TransactionFilter struct {
	Symbol    string
	Side      string
	StartDate time.Time
	EndDate   time.Time
}

// TransactionResult is returned by the transaction ledger after a committed
// apply call.
type TransactionResult struct {
	Transaction      Transaction `json:"transaction"`
	CashEntry        CashEntry   `json:"cashEntry"`
	RealizedGainLoss money.Money `json:"realizedGainLoss"`
}
