package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/avermeer/stock-ledger-backend/internal/service"
)

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	return service.NewAccountService(repository.NewAccountRepository(db))
}

func NewTestLotMatcher(t *testing.T, db *sql.DB) *service.LotMatcher {
	t.Helper()

	return service.NewLotMatcher(repository.NewLotRepository(db))
}

func NewTestCashLedger(t *testing.T, db *sql.DB) *service.CashLedger {
	t.Helper()

	return service.NewCashLedger(db, repository.NewCashEntryRepository(db))
}

func NewTestTransactionLedger(t *testing.T, db *sql.DB) *service.TransactionLedger {
	t.Helper()

	lotRepo := repository.NewLotRepository(db)
	cashRepo := repository.NewCashEntryRepository(db)

	return service.NewTransactionLedger(
		db,
		service.NewAccountLocks(),
		service.NewLotMatcher(lotRepo),
		service.NewCashLedger(db, cashRepo),
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(repository.NewTransactionRepository(db))
}

func NewTestReconciliationSync(t *testing.T, db *sql.DB) *service.ReconciliationSync {
	t.Helper()

	cashRepo := repository.NewCashEntryRepository(db)

	return service.NewReconciliationSync(
		db,
		service.NewAccountLocks(),
		service.NewCashLedger(db, cashRepo),
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		cashRepo,
	)
}

func NewTestConsistencyValidator(t *testing.T, db *sql.DB) *service.ConsistencyValidator {
	t.Helper()

	return service.NewConsistencyValidator(
		service.NewAccountLocks(),
		repository.NewAccountRepository(db),
		repository.NewLotRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewCashEntryRepository(db),
	)
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}
