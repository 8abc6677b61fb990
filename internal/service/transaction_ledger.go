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

// lotMatcher is the slice of LotMatcher the transaction ledger drives.
type lotMatcher interface {
	ApplyBuy(ctx context.Context, dbtx repository.DBTX, accountID, symbol string, quantity money.Quantity, unitCost money.Money, date time.Time, sourceTransactionID string) (model.Lot, error)
	ApplySell(ctx context.Context, dbtx repository.DBTX, accountID, symbol string, quantity money.Quantity, salePrice money.Money, transactionID string) (SellMatch, error)
	OpenQuantity(ctx context.Context, dbtx repository.DBTX, accountID, symbol string) (money.Quantity, error)
}

// cashAppender is the slice of CashLedger the transaction ledger drives.
type cashAppender interface {
	Append(ctx context.Context, dbtx repository.DBTX, accountID, entryType string, amount money.Money, relatedTransactionID, description string) (model.CashEntry, error)
}

// TransactionLedger is the sole mutation entry point of the engine. Each
// call runs under the account's lock and inside one database transaction, so
// the lot mutation and the cash append commit or roll back as a unit.
type TransactionLedger struct {
	db              *sql.DB
	locks           *AccountLocks
	matcher         lotMatcher
	cash            cashAppender
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

// NewTransactionLedger creates a new TransactionLedger with the provided dependencies.
func NewTransactionLedger(
	db *sql.DB,
	locks *AccountLocks,
	matcher lotMatcher,
	cash cashAppender,
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
) *TransactionLedger {
	return &TransactionLedger{
		db:              db,
		locks:           locks,
		matcher:         matcher,
		cash:            cash,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// ApplyRequest is a transaction intent: a buy or sell to commit.
type ApplyRequest struct {
	AccountID string
	Symbol    string
	Side      string
	Quantity  money.Quantity
	Price     money.Money
	TradeDate time.Time
	Comment   string
}

// Apply commits one buy or sell transaction: lot mutation, transaction
// record, and the trade-driven cash entry, all-or-nothing. On any failure
// the database transaction rolls back and no partial state is visible.
func (s *TransactionLedger) Apply(ctx context.Context, req ApplyRequest) (model.TransactionResult, error) {
	if req.Side != model.SideBuy && req.Side != model.SideSell {
		return model.TransactionResult{}, fmt.Errorf("invalid side %q", req.Side)
	}
	if !req.Quantity.IsPositive() {
		return model.TransactionResult{}, apperrors.ErrInvalidQuantity
	}
	if !req.Price.IsPositive() {
		return model.TransactionResult{}, apperrors.ErrInvalidAmount
	}

	if err := s.requireAccount(ctx, req.AccountID); err != nil {
		return model.TransactionResult{}, err
	}

	mu := s.locks.Get(req.AccountID)
	mu.Lock()
	defer mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.TransactionResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after commit

	transactionID := uuid.New().String()
	gross := req.Price.Mul(req.Quantity).Round()

	transaction := model.Transaction{
		ID:        transactionID,
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		TradeDate: req.TradeDate,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	var realized money.Money
	var cashType string
	var cashAmount money.Money

	switch req.Side {
	case model.SideBuy:
		if _, err := s.matcher.ApplyBuy(ctx, dbTx, req.AccountID, req.Symbol, req.Quantity, req.Price, req.TradeDate, transactionID); err != nil {
			return model.TransactionResult{}, err
		}
		cashType = model.CashStockBuy
		cashAmount = gross.Neg()

	case model.SideSell:
		match, err := s.matcher.ApplySell(ctx, dbTx, req.AccountID, req.Symbol, req.Quantity, req.Price, transactionID)
		if err != nil {
			return model.TransactionResult{}, err
		}
		realized = match.RealizedGainLoss
		transaction.RealizedGainLoss = &match.RealizedGainLoss
		transaction.CostBasis = &match.CostBasis
		cashType = model.CashStockSell
		cashAmount = gross
	}

	remaining, err := s.matcher.OpenQuantity(ctx, dbTx, req.AccountID, req.Symbol)
	if err != nil {
		return model.TransactionResult{}, err
	}
	transaction.RemainingShares = remaining

	if err := s.transactionRepo.InsertTransaction(ctx, dbTx, &transaction); err != nil {
		return model.TransactionResult{}, err
	}

	entry, err := s.cash.Append(ctx, dbTx, req.AccountID, cashType, cashAmount, transactionID, req.Comment)
	if err != nil {
		return model.TransactionResult{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return model.TransactionResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return model.TransactionResult{
		Transaction:      transaction,
		CashEntry:        entry,
		RealizedGainLoss: realized,
	}, nil
}

// Deposit appends a positive cash entry without touching lots.
func (s *TransactionLedger) Deposit(ctx context.Context, accountID string, amount money.Money, description string) (model.CashEntry, error) {
	return s.directCashEntry(ctx, accountID, model.CashDeposit, amount, description)
}

// Withdraw appends a negative cash entry without touching lots. The balance
// may go negative; the ledger records truth and leaves limits to callers.
func (s *TransactionLedger) Withdraw(ctx context.Context, accountID string, amount money.Money, description string) (model.CashEntry, error) {
	return s.directCashEntry(ctx, accountID, model.CashWithdrawal, amount, description)
}

func (s *TransactionLedger) directCashEntry(ctx context.Context, accountID, entryType string, amount money.Money, description string) (model.CashEntry, error) {
	if !amount.IsPositive() {
		return model.CashEntry{}, apperrors.ErrInvalidAmount
	}

	if err := s.requireAccount(ctx, accountID); err != nil {
		return model.CashEntry{}, err
	}

	signed := amount
	if entryType == model.CashWithdrawal {
		signed = amount.Neg()
	}

	mu := s.locks.Get(accountID)
	mu.Lock()
	defer mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.CashEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after commit

	entry, err := s.cash.Append(ctx, dbTx, accountID, entryType, signed, "", description)
	if err != nil {
		return model.CashEntry{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return model.CashEntry{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

func (s *TransactionLedger) requireAccount(ctx context.Context, accountID string) error {
	exists, err := s.accountRepo.AccountExists(ctx, accountID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
