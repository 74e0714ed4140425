package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/wallet"
)

const (
	ensureProfileSQL = `INSERT INTO wallet_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	getProfileSQL = `SELECT user_id, balance, avatar_url, updated_at FROM wallet_profiles WHERE user_id = $1`

	creditSQL = `UPDATE wallet_profiles SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1 RETURNING balance`

	// The guard keeps concurrent debits from overdrawing.
	debitSQL = `UPDATE wallet_profiles SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2 RETURNING balance`

	setAvatarSQL = `UPDATE wallet_profiles SET avatar_url = $2, updated_at = now() WHERE user_id = $1`
)

var _ wallet.Repository = (*WalletRepository)(nil)

// WalletRepository implements wallet.Repository backed by PostgreSQL.
type WalletRepository struct {
	db *DB
}

// NewWalletRepository returns a WalletRepository that uses db.
func NewWalletRepository(db *DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate upserts an empty profile and returns the stored one.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID int64) (*wallet.Profile, error) {
	q := r.db.conn(ctx)
	if _, err := q.Exec(ctx, ensureProfileSQL, userID); err != nil {
		return nil, fmt.Errorf("creating profile for user %d: %w", userID, err)
	}

	var p wallet.Profile
	err := q.QueryRow(ctx, getProfileSQL, userID).Scan(&p.UserID, &p.Balance, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting profile for user %d: %w", userID, err)
	}
	return &p, nil
}

// Credit adds amount and returns the new balance.
func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.conn(ctx).QueryRow(ctx, creditSQL, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, wallet.ErrProfileNotFound
		}
		return decimal.Zero, fmt.Errorf("crediting user %d: %w", userID, err)
	}
	return balance, nil
}

// Debit subtracts amount when the balance covers it and returns the new
// balance. ErrBalanceTooLow is returned when the guard rejects the update.
func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.conn(ctx).QueryRow(ctx, debitSQL, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, wallet.ErrBalanceTooLow
		}
		return decimal.Zero, fmt.Errorf("debiting user %d: %w", userID, err)
	}
	return balance, nil
}

// SetAvatar stores the avatar reference.
func (r *WalletRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	tag, err := r.db.conn(ctx).Exec(ctx, setAvatarSQL, userID, avatarURL)
	if err != nil {
		return fmt.Errorf("setting avatar for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return wallet.ErrProfileNotFound
	}
	return nil
}
