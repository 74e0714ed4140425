package cart_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *cart.Service
	a, b  catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	products := store.Catalog()
	return &fixture{
		store: store,
		svc:   cart.NewService(store, store.Carts(), products, store.Library()),
		a:     products.AddProduct(catalog.Product{Name: "A", Price: decimal.NewFromInt(600), Category: catalog.CategoryFPS, Active: true}),
		b:     products.AddProduct(catalog.Product{Name: "B", Price: decimal.NewFromInt(500), Category: catalog.CategoryRPG, Active: true}),
	}
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.svc.AddItem(ctx, 1, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, f.a.ID, item.Product.ID)

	_, err = f.svc.AddItem(ctx, 1, f.b.ID)
	require.NoError(t, err)

	c, err := f.svc.View(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, f.a.ID, c.Items[0].Product.ID)
	assert.Equal(t, "1100.00", c.Total().StringFixed(2))

	total, err := f.svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1100)))
}

func TestAddItem_AlreadyInCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddItem(ctx, 1, f.a.ID)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, 1, f.a.ID)
	require.ErrorIs(t, err, cart.ErrAlreadyInCart)

	c, err := f.svc.View(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestAddItem_AlreadyOwned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Library().Grant(ctx, 1, f.a.ID))

	_, err := f.svc.AddItem(ctx, 1, f.a.ID)
	require.ErrorIs(t, err, cart.ErrAlreadyOwned)

	var owned *cart.AlreadyOwnedError
	require.True(t, errors.As(err, &owned))
	assert.Equal(t, f.a.ID, owned.ProductID)

	c, err := f.svc.View(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hidden := f.store.Catalog().AddProduct(catalog.Product{Name: "Hidden", Price: decimal.NewFromInt(1)})

	for _, id := range []int64{999, hidden.ID} {
		_, err := f.svc.AddItem(ctx, 1, id)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	}
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.svc.AddItem(ctx, 1, f.a.ID)
	require.NoError(t, err)

	t.Run("OtherUser", func(t *testing.T) {
		err := f.svc.RemoveItem(ctx, 2, item.ID)
		require.ErrorIs(t, err, cart.ErrForbidden)

		c, err := f.svc.View(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, c.Items, 1)
	})

	t.Run("Missing", func(t *testing.T) {
		err := f.svc.RemoveItem(ctx, 1, 999)
		require.ErrorIs(t, err, cart.ErrItemNotFound)
	})

	t.Run("Owner", func(t *testing.T) {
		require.NoError(t, f.svc.RemoveItem(ctx, 1, item.ID))

		c, err := f.svc.View(ctx, 1)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
	})
}

func TestTotal_LivePrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddItem(ctx, 1, f.a.ID)
	require.NoError(t, err)

	repriced := f.a
	repriced.Price = decimal.RequireFromString("450.50")
	f.store.Catalog().AddProduct(repriced)

	total, err := f.svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "450.50", total.StringFixed(2))
}

func TestLockForCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddItem(ctx, 1, f.b.ID)
	require.NoError(t, err)

	err = f.store.WithinTx(ctx, func(ctx context.Context) error {
		c, err := f.svc.LockForCheckout(ctx, 1)
		if err != nil {
			return err
		}
		assert.Len(t, c.Items, 1)
		return f.svc.Clear(ctx, c.ID)
	})
	require.NoError(t, err)

	c, err := f.svc.View(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
