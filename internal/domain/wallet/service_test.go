package wallet

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// mockRepo keeps profiles in a map. racer, when set, runs between the
// balance read and the conditional debit.
type mockRepo struct {
	profiles map[int64]*Profile
	racer    func()
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: make(map[int64]*Profile)}
}

func (m *mockRepo) GetOrCreate(_ context.Context, userID int64) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID}
		m.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Credit(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return decimal.Zero, ErrProfileNotFound
	}
	p.Balance = p.Balance.Add(amount)
	return p.Balance, nil
}

func (m *mockRepo) Debit(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if m.racer != nil {
		m.racer()
	}
	p, ok := m.profiles[userID]
	if !ok {
		return decimal.Zero, ErrProfileNotFound
	}
	if p.Balance.LessThan(amount) {
		return decimal.Zero, ErrBalanceTooLow
	}
	p.Balance = p.Balance.Sub(amount)
	return p.Balance, nil
}

func (m *mockRepo) SetAvatar(_ context.Context, userID int64, avatarURL string) error {
	p, ok := m.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.AvatarURL = avatarURL
	return nil
}

// failingMeter refuses to create counters.
type failingMeter struct {
	metricnoop.Meter
}

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("meter closed")
}

type failingMeterProvider struct {
	metricnoop.MeterProvider
}

func (failingMeterProvider) Meter(string, ...metric.MeterOption) metric.Meter {
	return failingMeter{}
}

func newService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewService_CounterError(t *testing.T) {
	_, err := NewService(newMockRepo(), WithMeterProvider(failingMeterProvider{}))
	require.ErrorContains(t, err, "topups counter")

	svc, err := NewService(newMockRepo(), WithMeterProvider(metricnoop.NewMeterProvider()))
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestProfile_CreatesEmpty(t *testing.T) {
	svc := newService(t, newMockRepo())

	p, err := svc.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, p.Balance.IsZero())
	assert.Equal(t, int64(1), p.UserID)
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, newMockRepo())

	balance, err := svc.Credit(ctx, 1, d("10.005"))
	require.NoError(t, err)
	assert.Equal(t, "10.01", balance.StringFixed(2))

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.Credit(ctx, 1, d(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}
}

func TestDebit(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		svc := newService(t, newMockRepo())
		_, err := svc.Credit(ctx, 1, d("1200"))
		require.NoError(t, err)

		balance, err := svc.Debit(ctx, 1, d("1100"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(d("100")))
	})

	t.Run("Zero", func(t *testing.T) {
		svc := newService(t, newMockRepo())
		balance, err := svc.Debit(ctx, 1, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("Negative", func(t *testing.T) {
		svc := newService(t, newMockRepo())
		_, err := svc.Debit(ctx, 1, d("-1"))
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Insufficient", func(t *testing.T) {
		repo := newMockRepo()
		svc := newService(t, repo)
		_, err := svc.Credit(ctx, 1, d("1000"))
		require.NoError(t, err)

		_, err = svc.Debit(ctx, 1, d("1100"))
		require.ErrorIs(t, err, ErrInsufficientFunds)

		var ife *InsufficientFundsError
		require.True(t, errors.As(err, &ife))
		assert.True(t, ife.Shortfall.Equal(d("100")))
		assert.True(t, ife.Balance.Equal(d("1000")))
		assert.True(t, ife.Required.Equal(d("1100")))
		assert.Contains(t, err.Error(), "100")
		assert.True(t, repo.profiles[1].Balance.Equal(d("1000")), "balance must not change")
	})

	t.Run("ConcurrentDrain", func(t *testing.T) {
		repo := newMockRepo()
		svc := newService(t, repo)
		_, err := svc.Credit(ctx, 1, d("500"))
		require.NoError(t, err)

		// Another purchase lands after the pre-check.
		repo.racer = func() { repo.profiles[1].Balance = d("50") }

		_, err = svc.Debit(ctx, 1, d("300"))
		var ife *InsufficientFundsError
		require.True(t, errors.As(err, &ife))
		assert.True(t, ife.Shortfall.Equal(d("250")))
		assert.True(t, repo.profiles[1].Balance.Equal(d("50")))
	})
}

func TestTopUp(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, newMockRepo())

	balance, err := svc.TopUp(ctx, 1, d("400"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("400")))

	for _, amount := range []string{"0", "150", "-200", "10000"} {
		_, err := svc.TopUp(ctx, 1, d(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}

	p, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Balance.Equal(d("400")))
}

func TestSetAvatar(t *testing.T) {
	svc := newService(t, newMockRepo())

	p, err := svc.SetAvatar(context.Background(), 2, "avatars/2.png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/2.png", p.AvatarURL)
}
