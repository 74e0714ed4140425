package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/ledger"
)

const (
	createTransactionSQL = `WITH t AS (
			INSERT INTO transactions (user_id, product_id, price) VALUES ($1, $2, $3)
			RETURNING id, user_id, product_id, price, created_at
		)
		SELECT t.id, t.user_id, t.product_id, p.name, t.price, t.created_at
		FROM t JOIN products p ON p.id = t.product_id`

	recentTransactionsSQL = `SELECT t.id, t.user_id, t.product_id, p.name, t.price, t.created_at
		FROM transactions t JOIN products p ON p.id = t.product_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2`

	deleteTransactionSQL = `DELETE FROM transactions t USING products p
		WHERE t.id = $1 AND t.user_id = $2 AND p.id = t.product_id
		RETURNING t.id, t.user_id, t.product_id, p.name, t.price, t.created_at`
)

var _ ledger.Repository = (*LedgerRepository)(nil)

// LedgerRepository implements ledger.Repository backed by PostgreSQL.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository returns a LedgerRepository that uses db.
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create inserts a transaction for the given price snapshot.
func (r *LedgerRepository) Create(ctx context.Context, userID, productID int64, price decimal.Decimal) (*ledger.Transaction, error) {
	rows, err := r.db.conn(ctx).Query(ctx, createTransactionSQL, userID, productID, price)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return &t, nil
}

// Recent returns up to limit transactions of the user, newest first.
func (r *LedgerRepository) Recent(ctx context.Context, userID int64, limit int) ([]ledger.Transaction, error) {
	rows, err := r.db.conn(ctx).Query(ctx, recentTransactionsSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions of user %d: %w", userID, err)
	}
	txs, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("listing transactions of user %d: %w", userID, err)
	}
	return txs, nil
}

// Delete removes the user's transaction and returns the removed row.
func (r *LedgerRepository) Delete(ctx context.Context, id, userID int64) (*ledger.Transaction, error) {
	rows, err := r.db.conn(ctx).Query(ctx, deleteTransactionSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTransaction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return &t, nil
}

func scanTransaction(row pgx.CollectableRow) (ledger.Transaction, error) {
	var t ledger.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.ProductID, &t.ProductName, &t.Price, &t.CreatedAt)
	return t, err
}
