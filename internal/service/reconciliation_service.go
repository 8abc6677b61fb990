package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
)

// ReconciliationSync backfills cash entries for stock transactions that
// predate the cash ledger. It is corrective and maximally forward-progressing:
// a failure on one transaction is tallied and the run continues.
type ReconciliationSync struct {
	db              *sql.DB
	locks           *AccountLocks
	cash            cashAppender
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	cashRepo        *repository.CashEntryRepository
}

// NewReconciliationSync creates a new ReconciliationSync with the provided dependencies.
func NewReconciliationSync(
	db *sql.DB,
	locks *AccountLocks,
	cash cashAppender,
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
	cashRepo *repository.CashEntryRepository,
) *ReconciliationSync {
	return &ReconciliationSync{
		db:              db,
		locks:           locks,
		cash:            cash,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		cashRepo:        cashRepo,
	}
}

// BackfillCashEntries synthesizes the missing cash entry for every stock
// transaction of the account that has none, in ascending trade-date order so
// the resulting balance-after sequence is correct. Amount signs follow the
// same rules the transaction ledger applies at commit time. Running it again
// creates zero new entries.
//
// Each entry commits in its own database transaction: one bad row must not
// abort the rest of the backfill.
func (s *ReconciliationSync) BackfillCashEntries(ctx context.Context, accountID string) (model.BackfillResult, error) {
	exists, err := s.accountRepo.AccountExists(ctx, accountID)
	if err != nil {
		return model.BackfillResult{}, err
	}
	if !exists {
		return model.BackfillResult{}, apperrors.ErrAccountNotFound
	}

	mu := s.locks.Get(accountID)
	mu.Lock()
	defer mu.Unlock()

	all, err := s.transactionRepo.GetTransactions(ctx, accountID, model.TransactionFilter{})
	if err != nil {
		return model.BackfillResult{}, err
	}

	unlinked, err := s.transactionRepo.GetUnlinkedTransactions(ctx, accountID)
	if err != nil {
		return model.BackfillResult{}, err
	}

	result := model.BackfillResult{Skipped: len(all) - len(unlinked)}

	for _, t := range unlinked {
		created, err := s.backfillOne(ctx, &t)
		switch {
		case err != nil:
			log.Printf("backfill: transaction %s: %v", t.ID, err)
			result.Failed++
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

func (s *ReconciliationSync) backfillOne(ctx context.Context, t *model.Transaction) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after commit

	// Double-check under the write transaction; the unlinked scan ran
	// outside it.
	linked, err := s.cashRepo.HasEntryForTransaction(ctx, dbTx, t.ID)
	if err != nil {
		return false, err
	}
	if linked {
		return false, nil
	}

	gross := t.Price.Mul(t.Quantity).Round()

	entryType := model.CashStockBuy
	amount := gross.Neg()
	if t.Side == model.SideSell {
		entryType = model.CashStockSell
		amount = gross
	}

	description := fmt.Sprintf("backfilled for %s %s %s", t.Side, t.Quantity, t.Symbol)
	if _, err := s.cash.Append(ctx, dbTx, t.AccountID, entryType, amount, t.ID, description); err != nil {
		return false, err
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
