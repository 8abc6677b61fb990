package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// TransactionRepository provides data access methods for the transaction
// table. Committed transactions are immutable financial history: there is no
// update path, only inserts and reads.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// InsertTransaction persists a committed transaction inside the caller's
// transaction scope.
func (s *TransactionRepository) InsertTransaction(ctx context.Context, dbtx DBTX, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, account_id, symbol, side, quantity, price,
			trade_date, comment, cost_basis, realized_gain_loss, remaining_shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var costBasis, realizedGainLoss any
	if t.CostBasis != nil {
		costBasis = *t.CostBasis
	}
	if t.RealizedGainLoss != nil {
		realizedGainLoss = *t.RealizedGainLoss
	}

	_, err := dbtx.ExecContext(ctx, query,
		t.ID,
		t.AccountID,
		t.Symbol,
		t.Side,
		t.Quantity,
		t.Price,
		t.TradeDate.Format(dateLayout),
		t.Comment,
		costBasis,
		realizedGainLoss,
		t.RemainingShares,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no row exists.
func (s *TransactionRepository) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	query := transactionSelect + `
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, transactionID)

	t, err := scanTransactionRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// GetTransactions retrieves the transaction history of an account, filtered
// and ordered by trade date ascending with the transaction ID as tie-break.
// The same ordering drives FIFO matching and reconciliation replay.
func (s *TransactionRepository) GetTransactions(ctx context.Context, accountID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := transactionSelect + `
		WHERE account_id = ?
	`
	args := []any{accountID}

	if filter.Symbol != "" {
		query += `
		AND symbol = ?
		`
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		query += `
		AND side = ?
		`
		args = append(args, filter.Side)
	}
	if !filter.StartDate.IsZero() {
		query += `
		AND trade_date >= ?
		`
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if !filter.EndDate.IsZero() {
		query += `
		AND trade_date <= ?
		`
		args = append(args, filter.EndDate.Format(dateLayout))
	}

	query += `
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetUnlinkedTransactions retrieves transactions that have no linked cash
// entry, in trade-date order, so reconciliation can replay them in the order
// their cash effects should have occurred.
func (s *TransactionRepository) GetUnlinkedTransactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	query := transactionSelect + `
		WHERE account_id = ?
		AND id NOT IN (
			SELECT transaction_id FROM cash_entry WHERE transaction_id IS NOT NULL
		)
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

const transactionSelect = `
		SELECT id, account_id, symbol, side, quantity, price, trade_date,
			comment, cost_basis, realized_gain_loss, remaining_shares, created_at
		FROM "transaction"
`

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	transactions := []model.Transaction{}

	for rows.Next() {
		t, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

func scanTransactionRow(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var tradeDateStr, createdAtStr string
	var comment, costBasisStr, realizedStr sql.NullString

	err := scan(
		&t.ID,
		&t.AccountID,
		&t.Symbol,
		&t.Side,
		&t.Quantity,
		&t.Price,
		&tradeDateStr,
		&comment,
		&costBasisStr,
		&realizedStr,
		&t.RemainingShares,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.TradeDate, err = ParseTime(tradeDateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if comment.Valid {
		t.Comment = comment.String
	}
	if costBasisStr.Valid {
		m, err := money.ParseMoney(costBasisStr.String)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("failed to parse cost basis: %w", err)
		}
		t.CostBasis = &m
	}
	if realizedStr.Valid {
		m, err := money.ParseMoney(realizedStr.String)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("failed to parse realized gain/loss: %w", err)
		}
		t.RealizedGainLoss = &m
	}

	return t, nil
}
