package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/avermeer/stock-ledger-backend/internal/testutil"
)

// TestLotMatcher_ApplyBuy tests lot creation for buy transactions.
//
// WHY: Every buy must open exactly one lot whose remaining quantity starts
// equal to its original quantity. Sells can only ever consume what a buy
// opened, so this is the foundation of share conservation.
func TestLotMatcher_ApplyBuy(t *testing.T) {
	t.Run("creates an open lot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")
		buy := testutil.NewTransaction(account.ID).Build(t, db)

		// Execute
		lot, err := matcher.ApplyBuy(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("10"), money.MustMoney("100.00"), buy.TradeDate, buy.ID)

		// Assert
		if err != nil {
			t.Fatalf("ApplyBuy() returned unexpected error: %v", err)
		}
		if !lot.OriginalQuantity.Equal(money.MustQuantity("10")) {
			t.Errorf("Expected original quantity 10, got %s", lot.OriginalQuantity)
		}
		if !lot.RemainingQuantity.Equal(lot.OriginalQuantity) {
			t.Errorf("Expected remaining == original, got %s", lot.RemainingQuantity)
		}
		if lot.SourceTransactionID != buy.ID {
			t.Errorf("Expected source transaction %s, got %s", buy.ID, lot.SourceTransactionID)
		}
		testutil.AssertRowCount(t, db, "lot", 1)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		_, err := matcher.ApplyBuy(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("0"), money.MustMoney("100.00"), time.Now(), testutil.MakeID())

		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
		testutil.AssertRowCount(t, db, "lot", 0)
	})
}

// TestLotMatcher_ApplySell tests FIFO lot consumption.
//
// WHY: Realized gain/loss is only correct if sells consume the earliest
// lots first and the arithmetic stays exact until the final rounding. This
// covers the canonical partial-consumption case: two lots of 10 at 100 and
// 120, sell 15 at 150, expect 650 realized and 5 shares left in the second
// lot.
func TestLotMatcher_ApplySell(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("consumes lots earliest first across a lot boundary", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).WithTradeDate(jan1).Build(t, db)
		t2 := testutil.NewTransaction(account.ID).WithTradeDate(jan2).WithPrice("120.00").Build(t, db)
		testutil.NewLot(account.ID, t1.ID).WithOpenedAt(jan1).Build(t, db)
		lot2 := testutil.NewLot(account.ID, t2.ID).WithOpenedAt(jan2).WithUnitCost("120.00").Build(t, db)

		sell := testutil.NewTransaction(account.ID).WithSide(model.SideSell).
			WithQuantity("15").WithPrice("150.00").WithTradeDate(jan2).Build(t, db)

		// Execute
		match, err := matcher.ApplySell(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("15"), money.MustMoney("150.00"), sell.ID)

		// Assert
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}

		// 10 x (150-100) + 5 x (150-120) = 650
		if !match.RealizedGainLoss.Equal(money.MustMoney("650.00")) {
			t.Errorf("Expected realized gain 650.00, got %s", match.RealizedGainLoss)
		}
		// 10 x 100 + 5 x 120 = 1600
		if !match.CostBasis.Equal(money.MustMoney("1600.00")) {
			t.Errorf("Expected cost basis 1600.00, got %s", match.CostBasis)
		}
		if len(match.Consumed) != 2 {
			t.Fatalf("Expected 2 consumption records, got %d", len(match.Consumed))
		}
		if !match.Consumed[0].Quantity.Equal(money.MustQuantity("10")) {
			t.Errorf("Expected first consumption of 10, got %s", match.Consumed[0].Quantity)
		}
		if !match.Consumed[1].Quantity.Equal(money.MustQuantity("5")) {
			t.Errorf("Expected second consumption of 5, got %s", match.Consumed[1].Quantity)
		}

		// The first lot is closed; the second has 5 shares left.
		lotRepo := repository.NewLotRepository(db)
		open, err := lotRepo.GetOpenLots(context.Background(), db, account.ID, "ACME")
		if err != nil {
			t.Fatalf("GetOpenLots() returned unexpected error: %v", err)
		}
		if len(open) != 1 {
			t.Fatalf("Expected 1 open lot, got %d", len(open))
		}
		if open[0].ID != lot2.ID {
			t.Errorf("Expected lot %s to remain open, got %s", lot2.ID, open[0].ID)
		}
		if !open[0].RemainingQuantity.Equal(money.MustQuantity("5")) {
			t.Errorf("Expected 5 shares remaining, got %s", open[0].RemainingQuantity)
		}
	})

	t.Run("closes all lots on an exact full sell", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).WithTradeDate(jan1).Build(t, db)
		testutil.NewLot(account.ID, t1.ID).WithOpenedAt(jan1).Build(t, db)
		sell := testutil.NewTransaction(account.ID).WithSide(model.SideSell).
			WithQuantity("10").WithPrice("100.00").Build(t, db)

		match, err := matcher.ApplySell(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("10"), money.MustMoney("100.00"), sell.ID)
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}
		if !match.RealizedGainLoss.Equal(money.Zero) {
			t.Errorf("Expected zero realized gain, got %s", match.RealizedGainLoss)
		}

		remaining, err := matcher.OpenQuantity(context.Background(), db, account.ID, "ACME")
		if err != nil {
			t.Fatalf("OpenQuantity() returned unexpected error: %v", err)
		}
		if !remaining.IsZero() {
			t.Errorf("Expected 0 shares remaining, got %s", remaining)
		}

		// Closed lots are retained, not deleted.
		testutil.AssertRowCount(t, db, "lot", 1)
	})

	t.Run("rejects oversell without touching any lot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).WithTradeDate(jan1).Build(t, db)
		testutil.NewLot(account.ID, t1.ID).WithOpenedAt(jan1).Build(t, db)

		// Execute: 10 shares available, try to sell 10.0001
		_, err := matcher.ApplySell(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("10.0001"), money.MustMoney("100.00"), testutil.MakeID())

		// Assert
		var shortfall *apperrors.SharesShortfallError
		if !errors.As(err, &shortfall) {
			t.Fatalf("Expected SharesShortfallError, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Error("Expected error to unwrap to ErrInsufficientShares")
		}
		if !shortfall.Requested.Equal(money.MustQuantity("10.0001")) {
			t.Errorf("Expected requested 10.0001, got %s", shortfall.Requested)
		}
		if !shortfall.Available.Equal(money.MustQuantity("10")) {
			t.Errorf("Expected available 10, got %s", shortfall.Available)
		}

		// Lot state is untouched.
		lotRepo := repository.NewLotRepository(db)
		open, _ := lotRepo.GetOpenLots(context.Background(), db, account.ID, "ACME")
		if len(open) != 1 || !open[0].RemainingQuantity.Equal(money.MustQuantity("10")) {
			t.Error("Expected lot to remain fully open after rejected sell")
		}
		testutil.AssertRowCount(t, db, "lot_consumption", 0)
	})

	t.Run("breaks same-date ties by source transaction ID", func(t *testing.T) {
		// Setup: two lots opened on the same date with controlled source IDs
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		first := testutil.NewTransaction(account.ID).
			WithID("11111111-0000-0000-0000-000000000000").WithTradeDate(jan1).Build(t, db)
		second := testutil.NewTransaction(account.ID).
			WithID("22222222-0000-0000-0000-000000000000").WithTradeDate(jan1).WithPrice("120.00").Build(t, db)
		lotA := testutil.NewLot(account.ID, first.ID).WithOpenedAt(jan1).Build(t, db)
		testutil.NewLot(account.ID, second.ID).WithOpenedAt(jan1).WithUnitCost("120.00").Build(t, db)

		sell := testutil.NewTransaction(account.ID).WithSide(model.SideSell).
			WithQuantity("5").WithPrice("150.00").Build(t, db)

		// Execute
		match, err := matcher.ApplySell(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("5"), money.MustMoney("150.00"), sell.ID)

		// Assert: the lot sourced from the smaller transaction ID went first
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}
		if len(match.Consumed) != 1 {
			t.Fatalf("Expected 1 consumption record, got %d", len(match.Consumed))
		}
		if match.Consumed[0].LotID != lotA.ID {
			t.Errorf("Expected lot %s consumed first, got %s", lotA.ID, match.Consumed[0].LotID)
		}
		// 5 x (150-100) = 250
		if !match.RealizedGainLoss.Equal(money.MustMoney("250.00")) {
			t.Errorf("Expected realized gain 250.00, got %s", match.RealizedGainLoss)
		}
	})

	t.Run("rounds realized gain half-even once after summation", func(t *testing.T) {
		// Setup: fractional quantities produce sub-cent intermediate values
		db := testutil.SetupTestDB(t)
		matcher := testutil.NewTestLotMatcher(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).WithQuantity("0.5").WithPrice("100.01").WithTradeDate(jan1).Build(t, db)
		testutil.NewLot(account.ID, t1.ID).WithOpenedAt(jan1).
			WithQuantities("0.5", "0.5").WithUnitCost("100.01").Build(t, db)

		sell := testutil.NewTransaction(account.ID).WithSide(model.SideSell).
			WithQuantity("0.5").WithPrice("100.10").Build(t, db)

		// Execute: 0.5 x (100.10 - 100.01) = 0.045, half-even to 0.04
		match, err := matcher.ApplySell(context.Background(), db, account.ID, "ACME",
			money.MustQuantity("0.5"), money.MustMoney("100.10"), sell.ID)

		// Assert
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}
		if !match.RealizedGainLoss.Equal(money.MustMoney("0.04")) {
			t.Errorf("Expected realized gain 0.04, got %s", match.RealizedGainLoss)
		}
	})
}
