package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/model"
)

// CashEntryRepository provides data access methods for the cash_entry table.
// The table is append-only; there is no update or delete path.
type CashEntryRepository struct {
	db *sql.DB
}

// NewCashEntryRepository creates a new CashEntryRepository with the provided database connection.
func NewCashEntryRepository(db *sql.DB) *CashEntryRepository {
	return &CashEntryRepository{db: db}
}

// InsertCashEntry appends one entry inside the caller's transaction scope.
// The UNIQUE(account_id, seq) constraint rejects concurrent appends that
// would fork the balance chain.
func (s *CashEntryRepository) InsertCashEntry(ctx context.Context, dbtx DBTX, e *model.CashEntry) error {
	query := `
		INSERT INTO cash_entry (id, account_id, seq, type, amount, balance_after,
			transaction_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var transactionID any
	if e.TransactionID != "" {
		transactionID = e.TransactionID
	}

	_, err := dbtx.ExecContext(ctx, query,
		e.ID,
		e.AccountID,
		e.Seq,
		e.Type,
		e.Amount,
		e.BalanceAfter,
		transactionID,
		e.Description,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cash entry: %w", err)
	}

	return nil
}

// GetLastEntry retrieves the most recently appended entry for an account,
// by sequence number, within the caller's transaction scope. The second
// return value is false when the account has no entries yet.
func (s *CashEntryRepository) GetLastEntry(ctx context.Context, dbtx DBTX, accountID string) (model.CashEntry, bool, error) {
	query := cashEntrySelect + `
		WHERE account_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`

	row := dbtx.QueryRowContext(ctx, query, accountID)

	e, err := scanCashEntryRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.CashEntry{}, false, nil
	}
	if err != nil {
		return model.CashEntry{}, false, err
	}

	return e, true, nil
}

// GetEntries retrieves the full cash ledger of an account in append order.
func (s *CashEntryRepository) GetEntries(ctx context.Context, accountID string) ([]model.CashEntry, error) {
	query := cashEntrySelect + `
		WHERE account_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.CashEntry{}

	for rows.Next() {
		e, err := scanCashEntryRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash_entry table: %w", err)
	}

	return entries, nil
}

// HasEntryForTransaction reports whether a cash entry linked to the given
// transaction already exists. Reconciliation uses this to stay idempotent.
func (s *CashEntryRepository) HasEntryForTransaction(ctx context.Context, dbtx DBTX, transactionID string) (bool, error) {
	query := `SELECT 1 FROM cash_entry WHERE transaction_id = ? LIMIT 1`

	var exists int
	err := dbtx.QueryRowContext(ctx, query, transactionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query cash_entry table: %w", err)
	}

	return true, nil
}

const cashEntrySelect = `
		SELECT id, account_id, seq, type, amount, balance_after,
			transaction_id, description, created_at
		FROM cash_entry
`

func scanCashEntryRow(scan func(dest ...any) error) (model.CashEntry, error) {
	var e model.CashEntry
	var createdAtStr string
	var transactionID, description sql.NullString

	err := scan(
		&e.ID,
		&e.AccountID,
		&e.Seq,
		&e.Type,
		&e.Amount,
		&e.BalanceAfter,
		&transactionID,
		&description,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.CashEntry{}, err
	}
	if err != nil {
		return model.CashEntry{}, fmt.Errorf("failed to scan cash_entry table results: %w", err)
	}

	e.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.CashEntry{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if transactionID.Valid {
		e.TransactionID = transactionID.String
	}
	if description.Valid {
		e.Description = description.String
	}

	return e, nil
}
