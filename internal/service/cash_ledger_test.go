package service_test

import (
	"context"
	"testing"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
	"github.com/avermeer/stock-ledger-backend/internal/testutil"
)

// TestCashLedger_Append tests the append-only balance chain.
//
// WHY: Every entry's balance-after snapshot must equal the previous snapshot
// plus its amount, in sequence order. The snapshot is what balance reads
// return, so a broken chain means wrong balances everywhere downstream.
func TestCashLedger_Append(t *testing.T) {
	t.Run("chains balance snapshots in sequence order", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")
		ctx := context.Background()

		// Execute
		first, err := ledger.Append(ctx, db, account.ID, model.CashDeposit,
			money.MustMoney("1000.00"), "", "initial funding")
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}
		second, err := ledger.Append(ctx, db, account.ID, model.CashWithdrawal,
			money.MustMoney("-250.50"), "", "")
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}

		// Assert
		if first.Seq != 1 || second.Seq != 2 {
			t.Errorf("Expected sequences 1 and 2, got %d and %d", first.Seq, second.Seq)
		}
		if !first.BalanceAfter.Equal(money.MustMoney("1000.00")) {
			t.Errorf("Expected first balance 1000.00, got %s", first.BalanceAfter)
		}
		if !second.BalanceAfter.Equal(money.MustMoney("749.50")) {
			t.Errorf("Expected second balance 749.50, got %s", second.BalanceAfter)
		}
	})

	t.Run("allows the balance to go negative", func(t *testing.T) {
		// The ledger records truth; overdraft rejection is caller policy.
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")
		ctx := context.Background()

		entry, err := ledger.Append(ctx, db, account.ID, model.CashStockBuy,
			money.MustMoney("-500.00"), "", "")
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}
		if !entry.BalanceAfter.Equal(money.MustMoney("-500.00")) {
			t.Errorf("Expected balance -500.00, got %s", entry.BalanceAfter)
		}
	})

	t.Run("sequences are independent per account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		a := testutil.CreateAccount(t, db, "First")
		b := testutil.CreateAccount(t, db, "Second")
		ctx := context.Background()

		if _, err := ledger.Append(ctx, db, a.ID, model.CashDeposit, money.MustMoney("10.00"), "", ""); err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}
		entry, err := ledger.Append(ctx, db, b.ID, model.CashDeposit, money.MustMoney("20.00"), "", "")
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}

		if entry.Seq != 1 {
			t.Errorf("Expected second account to start at seq 1, got %d", entry.Seq)
		}
		if !entry.BalanceAfter.Equal(money.MustMoney("20.00")) {
			t.Errorf("Expected balance 20.00, got %s", entry.BalanceAfter)
		}
	})
}

// TestCashLedger_GetBalance tests balance reads.
//
// WHY: Balance is served from the latest snapshot, never recomputed by
// summation, so it must be exact and must default to zero for an account
// with no entries.
func TestCashLedger_GetBalance(t *testing.T) {
	t.Run("returns zero for an empty ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")

		balance, err := ledger.GetBalance(context.Background(), account.ID)
		if err != nil {
			t.Fatalf("GetBalance() returned unexpected error: %v", err)
		}
		if !balance.IsZero() {
			t.Errorf("Expected zero balance, got %s", balance)
		}
	})

	t.Run("returns the latest snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")
		ctx := context.Background()

		amounts := []string{"100.00", "-30.25", "0.01"}
		types := []string{model.CashDeposit, model.CashWithdrawal, model.CashDeposit}
		for i := range amounts {
			if _, err := ledger.Append(ctx, db, account.ID, types[i], money.MustMoney(amounts[i]), "", ""); err != nil {
				t.Fatalf("Append() returned unexpected error: %v", err)
			}
		}

		balance, err := ledger.GetBalance(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetBalance() returned unexpected error: %v", err)
		}
		if !balance.Equal(money.MustMoney("69.76")) {
			t.Errorf("Expected balance 69.76, got %s", balance)
		}
	})
}

// TestCashLedger_GetEntries tests ledger reads.
func TestCashLedger_GetEntries(t *testing.T) {
	t.Run("returns entries in append order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestCashLedger(t, db)
		account := testutil.CreateAccount(t, db, "Brokerage")
		ctx := context.Background()

		for _, amount := range []string{"1.00", "2.00", "3.00"} {
			if _, err := ledger.Append(ctx, db, account.ID, model.CashDeposit, money.MustMoney(amount), "", ""); err != nil {
				t.Fatalf("Append() returned unexpected error: %v", err)
			}
		}

		entries, err := ledger.GetEntries(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetEntries() returned unexpected error: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(entries))
		}
		for i, e := range entries {
			if e.Seq != int64(i+1) {
				t.Errorf("Expected seq %d at position %d, got %d", i+1, i, e.Seq)
			}
		}
	})
}
