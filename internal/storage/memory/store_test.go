package memory

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/ledger"
)

func TestWithinTx_Rollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Wallets().SetBalance(1, decimal.NewFromInt(100))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Wallets().Debit(ctx, 1, decimal.NewFromInt(40)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Wallets().GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(100)))
}

func TestWithinTx_NestedRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Wallets().SetBalance(1, decimal.NewFromInt(100))

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Wallets().Debit(ctx, 1, decimal.NewFromInt(10)); err != nil {
			return err
		}
		inner := s.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.Wallets().Debit(ctx, 1, decimal.NewFromInt(20)); err != nil {
				return err
			}
			return errors.New("inner")
		})
		require.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	p, err := s.Wallets().GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(90)))
}

func TestWithinTx_RollbackKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Wallets().SetBalance(1, decimal.NewFromInt(100))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.Wallets().Debit(ctx, 1, decimal.NewFromInt(40)); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("rollback")
		})
	}()
	<-started

	credited := make(chan error, 1)
	go func() {
		_, err := s.Wallets().Credit(ctx, 1, decimal.NewFromInt(5))
		credited <- err
	}()

	select {
	case <-credited:
		t.Fatal("credit ran inside a foreign transaction")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-done)
	require.NoError(t, <-credited)

	p, err := s.Wallets().GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(105)), p.Balance.String())
}

func TestInjectError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	s.InjectError("ledger.Create", boom)
	_, err := s.Ledger().Create(ctx, 1, 1, decimal.NewFromInt(1))
	require.ErrorIs(t, err, boom)

	s.InjectError("ledger.Create", nil)
	_, err = s.Ledger().Create(ctx, 1, 1, decimal.NewFromInt(1))
	require.NoError(t, err)
}

func TestCatalog_List(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := s.Catalog()
	doom := c.AddProduct(catalog.Product{Name: "Doom", Description: "demons", Category: catalog.CategoryFPS, Active: true, Featured: true})
	c.AddProduct(catalog.Product{Name: "Skyrim", Description: "dragons", Category: catalog.CategoryRPG, Active: true})
	c.AddProduct(catalog.Product{Name: "Quake", Category: catalog.CategoryFPS})

	all, err := c.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "inactive products are hidden")

	byText, err := c.List(ctx, catalog.Filter{Query: "DRAGON"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "Skyrim", byText[0].Name)

	byLabel, err := c.List(ctx, catalog.Filter{Query: "shooter", QueryCategories: []catalog.Category{catalog.CategoryFPS}})
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, doom.ID, byLabel[0].ID)

	featured, err := c.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, doom.ID, featured.ID)

	_, err = c.ActiveBanner(ctx)
	require.ErrorIs(t, err, catalog.ErrNoBanner)
	c.AddBanner(catalog.Banner{Title: "Old", Active: true})
	c.AddBanner(catalog.Banner{Title: "New", Active: true})
	c.AddBanner(catalog.Banner{Title: "Off"})
	b, err := c.ActiveBanner(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", b.Title)
}

func TestLedger_DeleteScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, err := s.Ledger().Create(ctx, 1, 1, decimal.NewFromInt(5))
	require.NoError(t, err)

	_, err = s.Ledger().Delete(ctx, tx.ID, 2)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	got, err := s.Ledger().Delete(ctx, tx.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}
