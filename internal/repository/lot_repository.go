package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/money"
)

// LotRepository provides data access methods for the lot and lot_consumption
// tables. Quantities and costs round-trip as exact decimal text.
type LotRepository struct {
	db *sql.DB
}

// NewLotRepository creates a new LotRepository with the provided database connection.
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// InsertLot persists a new lot inside the caller's transaction scope.
func (s *LotRepository) InsertLot(ctx context.Context, dbtx DBTX, lot *model.Lot) error {
	query := `
		INSERT INTO lot (id, account_id, symbol, opened_at, original_quantity,
			remaining_quantity, unit_cost, source_transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dbtx.ExecContext(ctx, query,
		lot.ID,
		lot.AccountID,
		lot.Symbol,
		lot.OpenedAt.Format(dateLayout),
		lot.OriginalQuantity,
		lot.RemainingQuantity,
		lot.UnitCost,
		lot.SourceTransactionID,
		lot.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}

	return nil
}

// GetOpenLots retrieves lots with remaining shares for (account, symbol) in
// FIFO order: opened date ascending, tie-break by source transaction ID.
// Runs against dbtx so a sell sees the same snapshot it mutates.
func (s *LotRepository) GetOpenLots(ctx context.Context, dbtx DBTX, accountID, symbol string) ([]model.Lot, error) {
	query := `
		SELECT id, account_id, symbol, opened_at, original_quantity,
			remaining_quantity, unit_cost, source_transaction_id, created_at
		FROM lot
		WHERE account_id = ?
		AND symbol = ?
		AND remaining_quantity != '0'
		ORDER BY opened_at ASC, source_transaction_id ASC
	`

	rows, err := dbtx.QueryContext(ctx, query, accountID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// GetLots retrieves all lots for an account, optionally filtered by symbol,
// in FIFO order. Closed lots are included; they carry the audit history.
func (s *LotRepository) GetLots(ctx context.Context, accountID, symbol string) ([]model.Lot, error) {
	query := `
		SELECT id, account_id, symbol, opened_at, original_quantity,
			remaining_quantity, unit_cost, source_transaction_id, created_at
		FROM lot
		WHERE account_id = ?
	`

	args := []any{accountID}

	if symbol != "" {
		query += `
		AND symbol = ?
		`
		args = append(args, symbol)
	}

	query += `
		ORDER BY opened_at ASC, source_transaction_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// UpdateRemainingQuantity decrements a consumed lot inside the caller's
// transaction scope. Lots are never deleted; zero remaining means closed.
func (s *LotRepository) UpdateRemainingQuantity(ctx context.Context, dbtx DBTX, lotID string, remaining money.Quantity) error {
	query := `
		UPDATE lot
		SET remaining_quantity = ?
		WHERE id = ?
	`

	result, err := dbtx.ExecContext(ctx, query, remaining, lotID)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update lot %s: no such row", lotID)
	}

	return nil
}

// InsertConsumption persists one lot-consumption record inside the caller's
// transaction scope.
func (s *LotRepository) InsertConsumption(ctx context.Context, dbtx DBTX, c *model.LotConsumption) error {
	query := `
		INSERT INTO lot_consumption (id, transaction_id, lot_id, quantity, cost_basis, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := dbtx.ExecContext(ctx, query,
		c.ID,
		c.TransactionID,
		c.LotID,
		c.Quantity,
		c.CostBasis,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot consumption: %w", err)
	}

	return nil
}

// GetConsumptions retrieves the consumption records of one SELL transaction.
func (s *LotRepository) GetConsumptions(ctx context.Context, transactionID string) ([]model.LotConsumption, error) {
	query := `
		SELECT id, transaction_id, lot_id, quantity, cost_basis, created_at
		FROM lot_consumption
		WHERE transaction_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot_consumption table: %w", err)
	}
	defer rows.Close()

	consumptions := []model.LotConsumption{}

	for rows.Next() {
		var c model.LotConsumption
		var createdAtStr string

		err := rows.Scan(
			&c.ID,
			&c.TransactionID,
			&c.LotID,
			&c.Quantity,
			&c.CostBasis,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot_consumption table results: %w", err)
		}

		c.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		consumptions = append(consumptions, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot_consumption table: %w", err)
	}

	return consumptions, nil
}

func scanLots(rows *sql.Rows) ([]model.Lot, error) {
	lots := []model.Lot{}

	for rows.Next() {
		var l model.Lot
		var openedAtStr, createdAtStr string

		err := rows.Scan(
			&l.ID,
			&l.AccountID,
			&l.Symbol,
			&openedAtStr,
			&l.OriginalQuantity,
			&l.RemainingQuantity,
			&l.UnitCost,
			&l.SourceTransactionID,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot table results: %w", err)
		}

		l.OpenedAt, err = ParseTime(openedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		l.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		lots = append(lots, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}
