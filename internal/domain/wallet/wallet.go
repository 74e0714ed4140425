// Package wallet manages the internal spendable balance and avatar of each
// user. A profile is created on first access with a zero balance.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for non-positive credits, negative debits
	// and top-ups outside the preset denominations.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds is matched by every *InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceTooLow is returned by Repository.Debit when the conditional
	// update did not apply.
	ErrBalanceTooLow = errors.New("balance too low")
	// ErrProfileNotFound is returned by repositories when no profile row exists.
	ErrProfileNotFound = errors.New("wallet profile not found")
)

// InsufficientFundsError reports a debit that would take the balance below
// zero.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Required  decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s more", e.Shortfall.StringFixed(2))
}

// Unwrap makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// Profile is a user's wallet. Balance is never negative.
type Profile struct {
	UserID    int64
	Balance   decimal.Decimal
	AvatarURL string
	UpdatedAt time.Time
}

// Repository persists wallet profiles. Credit and Debit are single atomic
// updates; Debit applies only when the balance covers the amount and
// returns ErrBalanceTooLow otherwise.
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*Profile, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	SetAvatar(ctx context.Context, userID int64, avatarURL string) error
}

// TopUpPresets are the only amounts accepted by Service.TopUp.
var TopUpPresets = []decimal.Decimal{
	decimal.NewFromInt(200),
	decimal.NewFromInt(400),
	decimal.NewFromInt(1000),
	decimal.NewFromInt(2000),
	decimal.NewFromInt(4000),
}

// IsTopUpPreset reports whether amount equals one of TopUpPresets.
func IsTopUpPreset(amount decimal.Decimal) bool {
	for _, p := range TopUpPresets {
		if p.Equal(amount) {
			return true
		}
	}
	return false
}
