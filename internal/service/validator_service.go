package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ConsistencyValidator is the read-only invariant checker. It returns
// findings instead of failing, so it serves both as a test oracle and as a
// periodic health probe. It never alters ledger state; it holds the account
// lock only while snapshotting the three tables so a concurrent mutation
// cannot land between reads and make a healthy account look torn.
type ConsistencyValidator struct {
	locks           *AccountLocks
	accountRepo     *repository.AccountRepository
	lotRepo         *repository.LotRepository
	transactionRepo *repository.TransactionRepository
	cashRepo        *repository.CashEntryRepository
}

// NewConsistencyValidator creates a new ConsistencyValidator with the provided lock registry and repository dependencies.
func NewConsistencyValidator(
	locks *AccountLocks,
	accountRepo *repository.AccountRepository,
	lotRepo *repository.LotRepository,
	transactionRepo *repository.TransactionRepository,
	cashRepo *repository.CashEntryRepository,
) *ConsistencyValidator {
	return &ConsistencyValidator{
		locks:           locks,
		accountRepo:     accountRepo,
		lotRepo:         lotRepo,
		transactionRepo: transactionRepo,
		cashRepo:        cashRepo,
	}
}

// Validate checks the account's ledger invariants:
//
//	(a) per symbol, open-lot remaining quantities sum to the net BUY-SELL
//	    share count derivable from transactions
//	(b) the cash balance-after chain is arithmetically consistent end to end
//	(c) every SELL transaction has realized gain/loss populated
//	(d) every transaction has exactly one linked cash entry
func (s *ConsistencyValidator) Validate(ctx context.Context, accountID string) ([]model.Violation, error) {
	violations := []model.Violation{}

	transactions, lots, entries, err := s.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	violations = append(violations, s.checkShareConservation(accountID, transactions, lots)...)
	violations = append(violations, s.checkBalanceChain(accountID, entries)...)
	violations = append(violations, s.checkRealizedGainLoss(accountID, transactions)...)
	violations = append(violations, s.checkCashLinks(accountID, transactions, entries)...)

	return violations, nil
}

// snapshot reads transactions, lots, and cash entries under the account
// lock. The checks compare the three tables against each other, so the
// reads must all see the same committed state.
func (s *ConsistencyValidator) snapshot(ctx context.Context, accountID string) ([]model.Transaction, []model.Lot, []model.CashEntry, error) {
	lock := s.locks.Get(accountID)
	lock.Lock()
	defer lock.Unlock()

	transactions, err := s.transactionRepo.GetTransactions(ctx, accountID, model.TransactionFilter{})
	if err != nil {
		return nil, nil, nil, err
	}

	lots, err := s.lotRepo.GetLots(ctx, accountID, "")
	if err != nil {
		return nil, nil, nil, err
	}

	entries, err := s.cashRepo.GetEntries(ctx, accountID)
	if err != nil {
		return nil, nil, nil, err
	}

	return transactions, lots, entries, nil
}

// ValidateAll runs Validate for every account. The per-account lock covers
// the snapshot reads, so accounts are checked in parallel.
func (s *ConsistencyValidator) ValidateAll(ctx context.Context) (map[string][]model.Violation, error) {
	accounts, err := s.accountRepo.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string][]model.Violation, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			violations, err := s.Validate(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("account %s: %w", account.ID, err)
			}
			mu.Lock()
			results[account.ID] = violations
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *ConsistencyValidator) checkShareConservation(accountID string, transactions []model.Transaction, lots []model.Lot) []model.Violation {
	violations := []model.Violation{}

	net := map[string]money.Quantity{}
	for _, t := range transactions {
		switch t.Side {
		case model.SideBuy:
			net[t.Symbol] = net[t.Symbol].Add(t.Quantity)
		case model.SideSell:
			net[t.Symbol] = net[t.Symbol].Sub(t.Quantity)
		}
	}

	open := map[string]money.Quantity{}
	for _, l := range lots {
		open[l.Symbol] = open[l.Symbol].Add(l.RemainingQuantity)
	}

	symbols := map[string]bool{}
	for symbol := range net {
		symbols[symbol] = true
	}
	for symbol := range open {
		symbols[symbol] = true
	}

	for symbol := range symbols {
		if !open[symbol].Equal(net[symbol]) {
			violations = append(violations, model.Violation{
				AccountID: accountID,
				Code:      model.ViolationShareMismatch,
				Symbol:    symbol,
				Message: fmt.Sprintf("open lots hold %s shares but transactions net to %s",
					open[symbol], net[symbol]),
			})
		}
	}

	return violations
}

func (s *ConsistencyValidator) checkBalanceChain(accountID string, entries []model.CashEntry) []model.Violation {
	violations := []model.Violation{}

	running := money.Zero
	for _, e := range entries {
		expected := running.Add(e.Amount)
		if !e.BalanceAfter.Equal(expected) {
			violations = append(violations, model.Violation{
				AccountID: accountID,
				Code:      model.ViolationBalanceChain,
				EntityID:  e.ID,
				Message: fmt.Sprintf("entry %d has balance-after %s, expected %s",
					e.Seq, e.BalanceAfter, expected),
			})
		}
		// Continue from the persisted snapshot so one bad entry is
		// reported once instead of cascading down the chain.
		running = e.BalanceAfter
	}

	return violations
}

func (s *ConsistencyValidator) checkRealizedGainLoss(accountID string, transactions []model.Transaction) []model.Violation {
	violations := []model.Violation{}

	for _, t := range transactions {
		if t.Side == model.SideSell && t.RealizedGainLoss == nil {
			violations = append(violations, model.Violation{
				AccountID: accountID,
				Code:      model.ViolationMissingGainLoss,
				Symbol:    t.Symbol,
				EntityID:  t.ID,
				Message:   fmt.Sprintf("sell transaction %s has no realized gain/loss", t.ID),
			})
		}
	}

	return violations
}

func (s *ConsistencyValidator) checkCashLinks(accountID string, transactions []model.Transaction, entries []model.CashEntry) []model.Violation {
	violations := []model.Violation{}

	linked := map[string]int{}
	for _, e := range entries {
		if e.TransactionID != "" {
			linked[e.TransactionID]++
		}
	}

	for _, t := range transactions {
		if n := linked[t.ID]; n != 1 {
			violations = append(violations, model.Violation{
				AccountID: accountID,
				Code:      model.ViolationCashLink,
				Symbol:    t.Symbol,
				EntityID:  t.ID,
				Message:   fmt.Sprintf("transaction %s has %d linked cash entries, expected 1", t.ID, n),
			})
		}
	}

	return violations
}
