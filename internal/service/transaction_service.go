package service

import (
	"context"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
)

// TransactionService handles read access to committed transaction history.
// All mutation goes through the TransactionLedger.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependency.
func NewTransactionService(transactionRepo *repository.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

// GetTransactionHistory retrieves the transaction history of an account in
// trade-date order, narrowed by the filter.
func (s *TransactionService) GetTransactionHistory(ctx context.Context, accountID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactions(ctx, accountID, filter)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}
