package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	txs       []Transaction
	lastLimit int
}

func (m *mockRepo) Create(_ context.Context, userID, productID int64, price decimal.Decimal) (*Transaction, error) {
	t := Transaction{ID: int64(len(m.txs) + 1), UserID: userID, ProductID: productID, Price: price}
	m.txs = append(m.txs, t)
	return &t, nil
}

func (m *mockRepo) Recent(_ context.Context, userID int64, limit int) ([]Transaction, error) {
	m.lastLimit = limit
	var out []Transaction
	for i := len(m.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.txs[i].UserID == userID {
			out = append(out, m.txs[i])
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id, userID int64) (*Transaction, error) {
	for i, t := range m.txs {
		if t.ID == id && t.UserID == userID {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func TestRecord(t *testing.T) {
	svc := NewService(&mockRepo{})

	tx, err := svc.Record(context.Background(), 1, 5, decimal.RequireFromString("59.999"))
	require.NoError(t, err)
	assert.Equal(t, "60.00", tx.Price.StringFixed(2))

	_, err = svc.Record(context.Background(), 1, 5, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestRecent_Limit(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := NewService(repo)
	for i := range 15 {
		_, err := svc.Record(ctx, 1, int64(i), decimal.NewFromInt(1))
		require.NoError(t, err)
	}

	for _, tc := range []struct {
		limit int
		want  int
	}{
		{0, RecentLimit},
		{-3, RecentLimit},
		{50, RecentLimit},
		{3, 3},
	} {
		txs, err := svc.Recent(ctx, 1, tc.limit)
		require.NoError(t, err)
		assert.Len(t, txs, tc.want)
		assert.Equal(t, tc.want, repo.lastLimit)
		assert.Equal(t, int64(15), txs[0].ID, "newest first")
	}
}

func TestVoid(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockRepo{})

	tx, err := svc.Record(ctx, 1, 5, decimal.NewFromInt(600))
	require.NoError(t, err)

	_, err = svc.Void(ctx, 2, tx.ID)
	require.ErrorIs(t, err, ErrNotFound, "other users cannot void")

	voided, err := svc.Void(ctx, 1, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, voided.ID)

	_, err = svc.Void(ctx, 1, tx.ID)
	require.ErrorIs(t, err, ErrNotFound, "voiding twice")
}
