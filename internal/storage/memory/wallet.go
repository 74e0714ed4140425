package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/wallet"
)

var _ wallet.Repository = (*WalletRepository)(nil)

// WalletRepository stores wallet profiles in a Store.
type WalletRepository struct {
	s *Store
}

// SetBalance overwrites the user's balance, creating the profile if needed.
func (r *WalletRepository) SetBalance(userID int64, balance decimal.Decimal) {
	defer r.s.lock(context.Background())()
	p := r.getOrCreate(userID)
	p.Balance = balance
	p.UpdatedAt = r.s.now()
	r.s.st.profiles[userID] = p
}

// getOrCreate must be called with mu held.
func (r *WalletRepository) getOrCreate(userID int64) wallet.Profile {
	p, ok := r.s.st.profiles[userID]
	if !ok {
		p = wallet.Profile{UserID: userID, Balance: decimal.Zero, UpdatedAt: r.s.now()}
		r.s.st.profiles[userID] = p
	}
	return p
}

func (r *WalletRepository) GetOrCreate(ctx context.Context, userID int64) (*wallet.Profile, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wallet.GetOrCreate"); err != nil {
		return nil, err
	}
	p := r.getOrCreate(userID)
	return &p, nil
}

func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wallet.Credit"); err != nil {
		return decimal.Zero, err
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return decimal.Zero, wallet.ErrProfileNotFound
	}
	p.Balance = p.Balance.Add(amount)
	p.UpdatedAt = r.s.now()
	r.s.st.profiles[userID] = p
	return p.Balance, nil
}

func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wallet.Debit"); err != nil {
		return decimal.Zero, err
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return decimal.Zero, wallet.ErrProfileNotFound
	}
	if p.Balance.LessThan(amount) {
		return decimal.Zero, wallet.ErrBalanceTooLow
	}
	p.Balance = p.Balance.Sub(amount)
	p.UpdatedAt = r.s.now()
	r.s.st.profiles[userID] = p
	return p.Balance, nil
}

func (r *WalletRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wallet.SetAvatar"); err != nil {
		return err
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return wallet.ErrProfileNotFound
	}
	p.AvatarURL = avatarURL
	p.UpdatedAt = r.s.now()
	r.s.st.profiles[userID] = p
	return nil
}
