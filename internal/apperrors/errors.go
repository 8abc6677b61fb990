// Package apperrors defines the error taxonomy shared by services, handlers,
// and tests. Errors are sentinel values so callers can branch with errors.Is;
// storage failures are wrapped with context and surfaced, never retried
// inside the engine.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLotNotFound indicates that a lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrCashEntryNotFound indicates that a cash entry with the given ID does not exist.
	ErrCashEntryNotFound = errors.New("cash entry not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidQuantity indicates a non-positive share quantity was supplied.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidAmount indicates a non-positive cash amount was supplied to a
	// deposit or withdrawal.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientShares indicates that a sell exceeds the open lot
	// quantity for the symbol. The concrete error is a SharesShortfallError
	// carrying the requested and available quantities.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Data integrity errors represent inconsistencies detected in persisted state.
var (
	// ErrConsistencyViolation tags findings reported by the consistency
	// validator. Findings never block mutations.
	ErrConsistencyViolation = errors.New("consistency violation detected")
)

// Operation failure errors represent system-level failures when retrieving data.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveLots         = errors.New("failed to retrieve lots")
	ErrFailedToRetrieveCashEntries  = errors.New("failed to retrieve cash entries")
	ErrFailedToRetrieveBalance      = errors.New("failed to retrieve balance")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// SharesShortfallError reports a sell that exceeds the available open-lot
// quantity for a symbol. It wraps ErrInsufficientShares so callers can branch
// with errors.Is, while handlers surface the requested/available pair.
type SharesShortfallError struct {
	Symbol    string
	Requested money.Quantity
	Available money.Quantity
}

func (e *SharesShortfallError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: requested %s, available %s",
		e.Symbol, e.Requested, e.Available)
}

func (e *SharesShortfallError) Unwrap() error {
	return ErrInsufficientShares
}
