package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	products  []Product
	banner    *Banner
	bannerErr error
	featured  *Product
	listErr   error

	lastFilter Filter
}

func (m *mockRepo) List(_ context.Context, f Filter) ([]Product, error) {
	m.lastFilter = f
	return m.products, m.listErr
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByIDs(_ context.Context, _ []int64) ([]Product, error) {
	return m.products, nil
}

func (m *mockRepo) Featured(_ context.Context) (*Product, error) {
	if m.featured == nil {
		return nil, ErrNotFound
	}
	return m.featured, nil
}

func (m *mockRepo) ActiveBanner(_ context.Context) (*Banner, error) {
	if m.bannerErr != nil {
		return nil, m.bannerErr
	}
	if m.banner == nil {
		return nil, ErrNoBanner
	}
	return m.banner, nil
}

func TestBrowse(t *testing.T) {
	ctx := context.Background()
	doom := Product{ID: 1, Name: "Doom", Price: decimal.NewFromInt(600), Category: CategoryFPS, Active: true, Featured: true}

	t.Run("Query", func(t *testing.T) {
		repo := &mockRepo{products: []Product{doom}, featured: &doom, banner: &Banner{ID: 3, Title: "Sale", Active: true}}
		svc := NewService(repo)

		l, err := svc.Browse(ctx, BrowseRequest{Query: "  shooter ", Category: "fps"})
		require.NoError(t, err)
		assert.Len(t, l.Products, 1)
		require.NotNil(t, l.Banner)
		assert.Equal(t, "Sale", l.Banner.Title)
		require.NotNil(t, l.Featured)
		assert.Equal(t, int64(1), l.Featured.ID)

		assert.Equal(t, Filter{
			Query:           "shooter",
			QueryCategories: []Category{CategoryFPS},
			Category:        CategoryFPS,
		}, repo.lastFilter)
	})

	t.Run("NoBannerNoFeatured", func(t *testing.T) {
		svc := NewService(&mockRepo{})
		l, err := svc.Browse(ctx, BrowseRequest{})
		require.NoError(t, err)
		assert.Nil(t, l.Banner)
		assert.Nil(t, l.Featured)
		assert.Empty(t, l.Products)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		repo := &mockRepo{}
		_, err := NewService(repo).Browse(ctx, BrowseRequest{Category: "racing"})
		require.ErrorIs(t, err, ErrUnknownCategory)
		assert.Equal(t, Filter{}, repo.lastFilter)
	})

	t.Run("BannerError", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewService(&mockRepo{bannerErr: boom}).Browse(ctx, BrowseRequest{})
		require.ErrorIs(t, err, boom)
	})

	t.Run("ListError", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewService(&mockRepo{listErr: boom}).Browse(ctx, BrowseRequest{})
		require.ErrorIs(t, err, boom)
	})
}

func TestProduct(t *testing.T) {
	svc := NewService(&mockRepo{products: []Product{{ID: 7, Name: "Hades", Active: true}}})

	p, err := svc.Product(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Hades", p.Name)

	_, err = svc.Product(context.Background(), 8)
	require.ErrorIs(t, err, ErrNotFound)
}
