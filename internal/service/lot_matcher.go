package service

import (
	"context"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/google/uuid"
)

// LotMatcher opens lots for buys and consumes them FIFO for sells. All of
// its methods run inside a caller-owned database transaction; the matcher
// never commits.
type LotMatcher struct {
	lotRepo *repository.LotRepository
}

// NewLotMatcher creates a new LotMatcher with the provided repository dependency.
func NewLotMatcher(lotRepo *repository.LotRepository) *LotMatcher {
	return &LotMatcher{lotRepo: lotRepo}
}

// SellMatch is the outcome of a FIFO sell: the realized gain/loss and cost
// basis (both rounded half-even once, at the end), and the per-lot
// consumption records written for the audit trail.
type SellMatch struct {
	RealizedGainLoss money.Money
	CostBasis        money.Money
	Consumed         []model.LotConsumption
}

// ApplyBuy creates and persists a new open lot for the transaction.
func (m *LotMatcher) ApplyBuy(ctx context.Context, dbtx repository.DBTX, accountID, symbol string, quantity money.Quantity, unitCost money.Money, date time.Time, sourceTransactionID string) (model.Lot, error) {
	if !quantity.IsPositive() {
		return model.Lot{}, apperrors.ErrInvalidQuantity
	}

	lot := model.Lot{
		ID:                  uuid.New().String(),
		AccountID:           accountID,
		Symbol:              symbol,
		OpenedAt:            date,
		OriginalQuantity:    quantity,
		RemainingQuantity:   quantity,
		UnitCost:            unitCost,
		SourceTransactionID: sourceTransactionID,
		CreatedAt:           time.Now().UTC(),
	}

	if err := m.lotRepo.InsertLot(ctx, dbtx, &lot); err != nil {
		return model.Lot{}, err
	}

	return lot, nil
}

// ApplySell consumes open lots for (account, symbol) earliest-opened first,
// tie-broken by source transaction ID. The availability check happens before
// any mutation, so an insufficient sell leaves every lot untouched.
//
// Realized gain/loss is the sum over consumed lots of
// quantityConsumed x (salePrice - lotUnitCost), computed exactly and rounded
// half-even once after summation.
func (m *LotMatcher) ApplySell(ctx context.Context, dbtx repository.DBTX, accountID, symbol string, quantity money.Quantity, salePrice money.Money, transactionID string) (SellMatch, error) {
	if !quantity.IsPositive() {
		return SellMatch{}, apperrors.ErrInvalidQuantity
	}

	openLots, err := m.lotRepo.GetOpenLots(ctx, dbtx, accountID, symbol)
	if err != nil {
		return SellMatch{}, err
	}

	available := money.ZeroQuantity
	for _, lot := range openLots {
		available = available.Add(lot.RemainingQuantity)
	}
	if available.LessThan(quantity) {
		return SellMatch{}, &apperrors.SharesShortfallError{
			Symbol:    symbol,
			Requested: quantity,
			Available: available,
		}
	}

	var (
		gainLoss  money.Money
		costBasis money.Money
		consumed  []model.LotConsumption
		toSell    = quantity
	)

	for _, lot := range openLots {
		if toSell.IsZero() {
			break
		}

		consume := lot.RemainingQuantity.Min(toSell)
		// Exact decimal arithmetic; rounding happens once, below.
		gainLoss = gainLoss.Add(salePrice.Sub(lot.UnitCost).Mul(consume))
		costBasis = costBasis.Add(lot.UnitCost.Mul(consume))

		remaining := lot.RemainingQuantity.Sub(consume)
		if err := m.lotRepo.UpdateRemainingQuantity(ctx, dbtx, lot.ID, remaining); err != nil {
			return SellMatch{}, err
		}

		record := model.LotConsumption{
			ID:            uuid.New().String(),
			TransactionID: transactionID,
			LotID:         lot.ID,
			Quantity:      consume,
			CostBasis:     lot.UnitCost.Mul(consume).Round(),
			CreatedAt:     time.Now().UTC(),
		}
		if err := m.lotRepo.InsertConsumption(ctx, dbtx, &record); err != nil {
			return SellMatch{}, err
		}

		consumed = append(consumed, record)
		toSell = toSell.Sub(consume)
	}

	return SellMatch{
		RealizedGainLoss: gainLoss.Round(),
		CostBasis:        costBasis.Round(),
		Consumed:         consumed,
	}, nil
}

// OpenQuantity returns the total remaining quantity across open lots for
// (account, symbol) within the caller's transaction scope.
func (m *LotMatcher) OpenQuantity(ctx context.Context, dbtx repository.DBTX, accountID, symbol string) (money.Quantity, error) {
	openLots, err := m.lotRepo.GetOpenLots(ctx, dbtx, accountID, symbol)
	if err != nil {
		return money.ZeroQuantity, err
	}

	total := money.ZeroQuantity
	for _, lot := range openLots {
		total = total.Add(lot.RemainingQuantity)
	}
	return total, nil
}
