package model

import (
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// Lot represents the unconsumed shares of one opening BUY transaction.
// Invariant: 0 <= RemainingQuantity <= OriginalQuantity. A lot is never
// deleted; RemainingQuantity zero means closed, retained for audit.
type Lot struct {
	ID                  string         `json:"id"`
	AccountID           string         `json:"accountId"`
	Symbol              string         `json:"symbol"`
	OpenedAt            time.Time      `json:"openedAt"`
	OriginalQuantity    money.Quantity `json:"originalQuantity"`
	RemainingQuantity   money.Quantity `json:"remainingQuantity"`
	UnitCost            money.Money    `json:"unitCost"`
	SourceTransactionID string         `json:"sourceTransactionId"`
	CreatedAt           time.Time      `json:"createdAt,omitempty"`
}

// Closed reports whether the lot has been fully consumed.
func (l Lot) Closed() bool {
	return l.RemainingQuantity.IsZero()
}

// LotConsumption records how much of one lot a SELL transaction consumed,
// with the cost basis attributed to that slice.
type LotConsumption struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transactionId"`
	LotID         string         `json:"lotId"`
	Quantity      money.Quantity `json:"quantity"`
	CostBasis     money.Money    `json:"costBasis"`
	CreatedAt     time.Time      `json:"createdAt,omitempty"`
}
