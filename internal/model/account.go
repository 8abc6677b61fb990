package model

import "time"

// Account owns lots, transactions, and cash entries. All engine operations
// are scoped to a single account; cross-account operations do not exist.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
