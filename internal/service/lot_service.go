package service

import (
	"context"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
)

// LotService handles read access to share lots.
type LotService struct {
	lotRepo *repository.LotRepository
}

// NewLotService creates a new LotService with the provided repository dependency.
func NewLotService(lotRepo *repository.LotRepository) *LotService {
	return &LotService{lotRepo: lotRepo}
}

// GetLots retrieves the lots of an account in FIFO order, optionally
// filtered by symbol. Closed lots are included for audit history; callers
// that only want holdings filter on remaining quantity.
func (s *LotService) GetLots(ctx context.Context, accountID, symbol string) ([]model.Lot, error) {
	return s.lotRepo.GetLots(ctx, accountID, symbol)
}

// GetOpenLots retrieves only the lots with remaining shares.
func (s *LotService) GetOpenLots(ctx context.Context, accountID, symbol string) ([]model.Lot, error) {
	lots, err := s.lotRepo.GetLots(ctx, accountID, symbol)
	if err != nil {
		return nil, err
	}

	open := []model.Lot{}
	for _, lot := range lots {
		if !lot.Closed() {
			open = append(open, lot)
		}
	}
	return open, nil
}

// GetConsumptions retrieves the lot-consumption records of a SELL transaction.
func (s *LotService) GetConsumptions(ctx context.Context, transactionID string) ([]model.LotConsumption, error) {
	return s.lotRepo.GetConsumptions(ctx, transactionID)
}
