package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().WithName("Brokerage").Build(t, db)
type AccountBuilder struct {
	ID   string
	Name string
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:   MakeID(),
		Name: "Test Account",
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	query := `INSERT INTO account (id, name, created_at) VALUES (?, ?, ?)`

	now := time.Now().UTC()
	_, err := db.Exec(query, b.ID, b.Name, now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: now,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transaction rows directly, bypassing the transaction ledger. Use it for
// repository and validator tests where the engine must be fed specific
// (sometimes inconsistent) stored state.
type TransactionBuilder struct {
	ID               string
	AccountID        string
	Symbol           string
	Side             string
	Quantity         money.Quantity
	Price            money.Money
	TradeDate        time.Time
	Comment          string
	CostBasis        *money.Money
	RealizedGainLoss *money.Money
	RemainingShares  money.Quantity
}

// NewTransaction creates a TransactionBuilder with sensible defaults: a BUY
// of 10 shares of ACME at 100.00.
func NewTransaction(accountID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:              MakeID(),
		AccountID:       accountID,
		Symbol:          "ACME",
		Side:            model.SideBuy,
		Quantity:        money.MustQuantity("10"),
		Price:           money.MustMoney("100.00"),
		TradeDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RemainingShares: money.MustQuantity("10"),
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithSide sets the transaction side.
func (b *TransactionBuilder) WithSide(side string) *TransactionBuilder {
	b.Side = side
	return b
}

// WithQuantity sets the share quantity.
func (b *TransactionBuilder) WithQuantity(q string) *TransactionBuilder {
	b.Quantity = money.MustQuantity(q)
	return b
}

// WithPrice sets the per-share price.
func (b *TransactionBuilder) WithPrice(p string) *TransactionBuilder {
	b.Price = money.MustMoney(p)
	return b
}

// WithTradeDate sets the trade date.
func (b *TransactionBuilder) WithTradeDate(d time.Time) *TransactionBuilder {
	b.TradeDate = d
	return b
}

// WithRealizedGainLoss sets the realized gain/loss and cost basis.
func (b *TransactionBuilder) WithRealizedGainLoss(gainLoss, costBasis string) *TransactionBuilder {
	g := money.MustMoney(gainLoss)
	c := money.MustMoney(costBasis)
	b.RealizedGainLoss = &g
	b.CostBasis = &c
	return b
}

// WithRemainingShares sets the remaining-shares snapshot.
func (b *TransactionBuilder) WithRemainingShares(q string) *TransactionBuilder {
	b.RemainingShares = money.MustQuantity(q)
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, account_id, symbol, side, quantity, price,
			trade_date, comment, cost_basis, realized_gain_loss, remaining_shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var costBasis, realized any
	if b.CostBasis != nil {
		costBasis = *b.CostBasis
	}
	if b.RealizedGainLoss != nil {
		realized = *b.RealizedGainLoss
	}

	now := time.Now().UTC()
	_, err := db.Exec(query,
		b.ID, b.AccountID, b.Symbol, b.Side, b.Quantity, b.Price,
		b.TradeDate.Format("2006-01-02"), b.Comment, costBasis, realized,
		b.RemainingShares, now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:               b.ID,
		AccountID:        b.AccountID,
		Symbol:           b.Symbol,
		Side:             b.Side,
		Quantity:         b.Quantity,
		Price:            b.Price,
		TradeDate:        b.TradeDate,
		Comment:          b.Comment,
		CostBasis:        b.CostBasis,
		RealizedGainLoss: b.RealizedGainLoss,
		RemainingShares:  b.RemainingShares,
		CreatedAt:        now,
	}
}

// LotBuilder provides a fluent interface for creating test lots.
type LotBuilder struct {
	ID                  string
	AccountID           string
	Symbol              string
	OpenedAt            time.Time
	OriginalQuantity    money.Quantity
	RemainingQuantity   money.Quantity
	UnitCost            money.Money
	SourceTransactionID string
}

// NewLot creates a LotBuilder with sensible defaults: an open lot of 10
// shares of ACME at a unit cost of 100.00, sourced from the given
// transaction.
func NewLot(accountID, sourceTransactionID string) *LotBuilder {
	return &LotBuilder{
		ID:                  MakeID(),
		AccountID:           accountID,
		Symbol:              "ACME",
		OpenedAt:            time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		OriginalQuantity:    money.MustQuantity("10"),
		RemainingQuantity:   money.MustQuantity("10"),
		UnitCost:            money.MustMoney("100.00"),
		SourceTransactionID: sourceTransactionID,
	}
}

// WithSymbol sets a custom symbol.
func (b *LotBuilder) WithSymbol(symbol string) *LotBuilder {
	b.Symbol = symbol
	return b
}

// WithOpenedAt sets the open date.
func (b *LotBuilder) WithOpenedAt(d time.Time) *LotBuilder {
	b.OpenedAt = d
	return b
}

// WithQuantities sets the original and remaining quantities.
func (b *LotBuilder) WithQuantities(original, remaining string) *LotBuilder {
	b.OriginalQuantity = money.MustQuantity(original)
	b.RemainingQuantity = money.MustQuantity(remaining)
	return b
}

// WithUnitCost sets the per-share cost.
func (b *LotBuilder) WithUnitCost(c string) *LotBuilder {
	b.UnitCost = money.MustMoney(c)
	return b
}

// Build creates the lot in the database and returns it.
func (b *LotBuilder) Build(t *testing.T, db *sql.DB) model.Lot {
	t.Helper()

	query := `
		INSERT INTO lot (id, account_id, symbol, opened_at, original_quantity,
			remaining_quantity, unit_cost, source_transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err := db.Exec(query,
		b.ID, b.AccountID, b.Symbol, b.OpenedAt.Format("2006-01-02"),
		b.OriginalQuantity, b.RemainingQuantity, b.UnitCost,
		b.SourceTransactionID, now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}

	return model.Lot{
		ID:                  b.ID,
		AccountID:           b.AccountID,
		Symbol:              b.Symbol,
		OpenedAt:            b.OpenedAt,
		OriginalQuantity:    b.OriginalQuantity,
		RemainingQuantity:   b.RemainingQuantity,
		UnitCost:            b.UnitCost,
		SourceTransactionID: b.SourceTransactionID,
		CreatedAt:           now,
	}
}

// CashEntryBuilder provides a fluent interface for creating raw cash entry
// rows, bypassing the cash ledger's chaining logic. Validator tests use it
// to construct broken balance chains.
type CashEntryBuilder struct {
	ID            string
	AccountID     string
	Seq           int64
	Type          string
	Amount        money.Money
	BalanceAfter  money.Money
	TransactionID string
	Description   string
}

// NewCashEntry creates a CashEntryBuilder with sensible defaults: a deposit
// of 1000.00 at sequence 1.
func NewCashEntry(accountID string) *CashEntryBuilder {
	return &CashEntryBuilder{
		ID:           MakeID(),
		AccountID:    accountID,
		Seq:          1,
		Type:         model.CashDeposit,
		Amount:       money.MustMoney("1000.00"),
		BalanceAfter: money.MustMoney("1000.00"),
	}
}

// WithSeq sets the sequence number.
func (b *CashEntryBuilder) WithSeq(seq int64) *CashEntryBuilder {
	b.Seq = seq
	return b
}

// WithType sets the entry type.
func (b *CashEntryBuilder) WithType(entryType string) *CashEntryBuilder {
	b.Type = entryType
	return b
}

// WithAmounts sets the amount and balance-after snapshot.
func (b *CashEntryBuilder) WithAmounts(amount, balanceAfter string) *CashEntryBuilder {
	b.Amount = money.MustMoney(amount)
	b.BalanceAfter = money.MustMoney(balanceAfter)
	return b
}

// WithTransactionID links the entry to a stock transaction.
func (b *CashEntryBuilder) WithTransactionID(id string) *CashEntryBuilder {
	b.TransactionID = id
	return b
}

// Build creates the cash entry in the database and returns it.
func (b *CashEntryBuilder) Build(t *testing.T, db *sql.DB) model.CashEntry {
	t.Helper()

	query := `
		INSERT INTO cash_entry (id, account_id, seq, type, amount, balance_after,
			transaction_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var transactionID any
	if b.TransactionID != "" {
		transactionID = b.TransactionID
	}

	now := time.Now().UTC()
	_, err := db.Exec(query,
		b.ID, b.AccountID, b.Seq, b.Type, b.Amount, b.BalanceAfter,
		transactionID, b.Description, now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test cash entry: %v", err)
	}

	return model.CashEntry{
		ID:            b.ID,
		AccountID:     b.AccountID,
		Seq:           b.Seq,
		Type:          b.Type,
		Amount:        b.Amount,
		BalanceAfter:  b.BalanceAfter,
		TransactionID: b.TransactionID,
		Description:   b.Description,
		CreatedAt:     now,
	}
}

// Convenience functions

// CreateAccount creates an account with the given name and default values.
//
// Example usage:
//
//	account := testutil.CreateAccount(t, db, "Brokerage")
func CreateAccount(t *testing.T, db *sql.DB, name string) model.Account {
	t.Helper()
	return NewAccount().WithName(name).Build(t, db)
}
