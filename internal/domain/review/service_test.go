package review_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/storage/memory"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := store.Catalog().AddProduct(catalog.Product{Name: "Hades", Price: decimal.NewFromInt(25), Active: true})
	svc := review.NewService(store.Reviews(), store.Catalog(), store.Library())

	owner := auth.Identity{UserID: 1, Username: "zagreus"}
	stranger := auth.Identity{UserID: 2, Username: "hermes"}
	require.NoError(t, store.Library().Grant(ctx, owner.UserID, p.ID))

	t.Run("NotOwned", func(t *testing.T) {
		_, err := svc.Create(ctx, stranger, p.ID, review.CreateRequest{Rating: 4, Comment: "nice"})
		require.ErrorIs(t, err, review.ErrNotOwned)
	})

	t.Run("NotOwnedBeforeValidation", func(t *testing.T) {
		for _, req := range []review.CreateRequest{
			{Rating: 9, Comment: "nice"},
			{Rating: 4, Comment: "<b></b>"},
		} {
			_, err := svc.Create(ctx, stranger, p.ID, req)
			require.ErrorIs(t, err, review.ErrNotOwned)
		}
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, 999, review.CreateRequest{Rating: 4, Comment: "nice"})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("InvalidRating", func(t *testing.T) {
		for _, rating := range []int{-1, 6} {
			_, err := svc.Create(ctx, owner, p.ID, review.CreateRequest{Rating: rating, Comment: "nice"})
			assert.ErrorIs(t, err, review.ErrInvalidRating)
		}
	})

	t.Run("EmptyComment", func(t *testing.T) {
		for _, comment := range []string{"", "   ", "<script>alert(1)</script>"} {
			_, err := svc.Create(ctx, owner, p.ID, review.CreateRequest{Rating: 3, Comment: comment})
			assert.ErrorIs(t, err, review.ErrEmptyComment, comment)
		}
	})

	t.Run("DefaultRatingAndSanitize", func(t *testing.T) {
		r, err := svc.Create(ctx, owner, p.ID, review.CreateRequest{Comment: "<b>Great</b> game & fun"})
		require.NoError(t, err)
		assert.Equal(t, review.DefaultRating, r.Rating)
		assert.Equal(t, "Great game & fun", r.Comment)
		assert.Equal(t, "zagreus", r.Username)
		assert.NotZero(t, r.ID)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, p.ID, review.CreateRequest{Rating: 2, Comment: "changed my mind"})
		require.NoError(t, err)

		reviews, err := svc.List(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, "changed my mind", reviews[0].Comment)
		assert.Equal(t, 2, reviews[0].Rating)
	})
}
