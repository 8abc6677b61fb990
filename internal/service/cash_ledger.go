package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/google/uuid"
)

// CashLedger maintains the append-only cash entry sequence per account.
// The ledger records truth and does not enforce limits: a withdrawal may
// drive the balance negative, and rejecting that is caller policy.
type CashLedger struct {
	db       *sql.DB
	cashRepo *repository.CashEntryRepository
}

// NewCashLedger creates a new CashLedger with the provided dependencies.
func NewCashLedger(db *sql.DB, cashRepo *repository.CashEntryRepository) *CashLedger {
	return &CashLedger{db: db, cashRepo: cashRepo}
}

// Append writes one cash entry inside the caller's transaction scope,
// deriving balance-after from the most recent entry of the account (zero if
// none exists). The caller owns the amount's sign: negative for WITHDRAWAL
// and STOCK_BUY, positive for DEPOSIT and STOCK_SELL.
func (s *CashLedger) Append(ctx context.Context, dbtx repository.DBTX, accountID, entryType string, amount money.Money, relatedTransactionID, description string) (model.CashEntry, error) {
	last, found, err := s.cashRepo.GetLastEntry(ctx, dbtx, accountID)
	if err != nil {
		return model.CashEntry{}, err
	}

	var seq int64 = 1
	balance := amount
	if found {
		seq = last.Seq + 1
		balance = last.BalanceAfter.Add(amount)
	}

	entry := model.CashEntry{
		ID:            uuid.New().String(),
		AccountID:     accountID,
		Seq:           seq,
		Type:          entryType,
		Amount:        amount,
		BalanceAfter:  balance,
		TransactionID: relatedTransactionID,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.cashRepo.InsertCashEntry(ctx, dbtx, &entry); err != nil {
		return model.CashEntry{}, err
	}

	return entry, nil
}

// GetBalance returns the latest balance-after snapshot for the account in
// O(1). The balance is never recomputed by summation on the read path; the
// consistency validator checks that summation would agree.
func (s *CashLedger) GetBalance(ctx context.Context, accountID string) (money.Money, error) {
	last, found, err := s.cashRepo.GetLastEntry(ctx, s.db, accountID)
	if err != nil {
		return money.Zero, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveBalance, err)
	}
	if !found {
		return money.Zero, nil
	}
	return last.BalanceAfter, nil
}

// GetEntries returns the full cash ledger of an account in append order.
func (s *CashLedger) GetEntries(ctx context.Context, accountID string) ([]model.CashEntry, error) {
	return s.cashRepo.GetEntries(ctx, accountID)
}
