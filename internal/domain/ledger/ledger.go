// Package ledger records completed purchases. Each record keeps the price
// paid at checkout and can be voided exactly once by a refund.
package ledger

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// RecentLimit caps the number of transactions returned by Recent.
const RecentLimit = 10

var (
	// ErrNotFound is returned when a transaction does not exist or belongs
	// to another user.
	ErrNotFound = errors.New("transaction not found")
	// ErrNegativePrice is returned when recording a purchase below zero.
	ErrNegativePrice = errors.New("price must not be negative")
)

// Transaction is a completed purchase of one product. Price is a snapshot
// taken at checkout and does not follow later catalog changes.
type Transaction struct {
	ID          int64
	UserID      int64
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	CreatedAt   time.Time
}

// Repository persists transactions. Delete removes the transaction matching
// both id and userID and returns it, or ErrNotFound.
type Repository interface {
	Create(ctx context.Context, userID, productID int64, price decimal.Decimal) (*Transaction, error)
	Recent(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	Delete(ctx context.Context, id, userID int64) (*Transaction, error)
}

// Service implements ledger operations.
type Service struct {
	txs Repository
}

// NewService creates a ledger Service.
func NewService(txs Repository) *Service {
	return &Service{txs: txs}
}

// Record appends a purchase at the given price.
func (s *Service) Record(ctx context.Context, userID, productID int64, price decimal.Decimal) (*Transaction, error) {
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	t, err := s.txs.Create(ctx, userID, productID, price.Round(2))
	if err != nil {
		return nil, errors.Wrap(err, "create transaction")
	}
	return t, nil
}

// Recent returns the user's latest transactions, newest first. Limits
// outside 1..RecentLimit are clamped to RecentLimit.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	txs, err := s.txs.Recent(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "recent transactions")
	}
	return txs, nil
}

// Void deletes the user's transaction and returns it so the caller can
// reverse it. A voided transaction is gone; voiding it again yields
// ErrNotFound.
func (s *Service) Void(ctx context.Context, userID, id int64) (*Transaction, error) {
	t, err := s.txs.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "delete transaction")
	}
	return t, nil
}
