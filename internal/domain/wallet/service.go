package wallet

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Option configures a Service.
type Option func(*Service)

// WithMeterProvider records top-ups on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		if mp != nil {
			s.meter = mp.Meter("github.com/xenking/gamestore/internal/domain/wallet")
		}
	}
}

// Service implements wallet operations on top of a Repository. Every method
// upserts the profile before touching it.
type Service struct {
	profiles Repository

	meter  metric.Meter
	topUps metric.Int64Counter
}

// NewService creates a wallet Service.
func NewService(profiles Repository, opts ...Option) (*Service, error) {
	s := &Service{
		profiles: profiles,
		meter:    metricnoop.NewMeterProvider().Meter(""),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.topUps, err = s.meter.Int64Counter("store.topups",
		metric.WithDescription("Completed wallet top-ups"),
	); err != nil {
		return nil, errors.Wrap(err, "topups counter")
	}
	return s, nil
}

// Profile returns the user's profile, creating it with a zero balance if
// absent.
func (s *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get or create profile")
	}
	return p, nil
}

// Credit adds amount to the balance and returns the new balance. Amount must
// be positive.
func (s *Service) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	balance, err := s.profiles.Credit(ctx, userID, amount.Round(2))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "credit")
	}
	return balance, nil
}

// Debit subtracts amount from the balance and returns the new balance. When
// the balance does not cover amount nothing changes and an
// *InsufficientFundsError carrying the shortfall is returned.
func (s *Service) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	amount = amount.Round(2)

	p, err := s.Profile(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if p.Balance.LessThan(amount) {
		return decimal.Zero, insufficient(p.Balance, amount)
	}

	balance, err := s.profiles.Debit(ctx, userID, amount)
	if errors.Is(err, ErrBalanceTooLow) {
		// Balance moved between the read and the update.
		p, rerr := s.profiles.GetOrCreate(ctx, userID)
		if rerr != nil {
			return decimal.Zero, errors.Wrap(rerr, "reload profile")
		}
		return decimal.Zero, insufficient(p.Balance, amount)
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "debit")
	}
	return balance, nil
}

// TopUp credits one of the fixed preset amounts.
func (s *Service) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !IsTopUpPreset(amount) {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "top-up of %s is not a preset", amount.String())
	}
	balance, err := s.Credit(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}
	s.topUps.Add(ctx, 1, metric.WithAttributes(attribute.String("amount", amount.StringFixed(0))))
	return balance, nil
}

// SetAvatar stores a reference to the user's avatar image and returns the
// updated profile.
func (s *Service) SetAvatar(ctx context.Context, userID int64, avatarURL string) (*Profile, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.profiles.SetAvatar(ctx, userID, avatarURL); err != nil {
		return nil, errors.Wrap(err, "set avatar")
	}
	return s.Profile(ctx, userID)
}

func insufficient(balance, required decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{
		Balance:   balance,
		Required:  required,
		Shortfall: required.Sub(balance),
	}
}
