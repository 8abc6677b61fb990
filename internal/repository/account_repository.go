package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avermeer/stock-ledger-backend/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// InsertAccount persists a new account.
func (s *AccountRepository) InsertAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO account (id, name, created_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetAccount retrieves a single account by ID.
// Returns apperrors.ErrAccountNotFound if no row exists.
func (s *AccountRepository) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	query := `
		SELECT id, name, created_at
		FROM account
		WHERE id = ?
	`

	var a model.Account
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&a.ID, &a.Name, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return a, nil
}

// GetAccounts retrieves all accounts ordered by creation time.
func (s *AccountRepository) GetAccounts(ctx context.Context) ([]model.Account, error) {
	query := `
		SELECT id, name, created_at
		FROM account
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}

	for rows.Next() {
		var a model.Account
		var createdAtStr string

		if err := rows.Scan(&a.ID, &a.Name, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}

		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// AccountExists reports whether an account with the given ID exists.
func (s *AccountRepository) AccountExists(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT 1 FROM account WHERE id = ? LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query account table: %w", err)
	}

	return true, nil
}
