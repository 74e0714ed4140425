// Package wishlist keeps a per-user set of products the user is interested
// in. It does not interact with the cart or library.
package wishlist

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/gamestore/internal/domain/catalog"
)

// Entry is a wishlisted product.
type Entry struct {
	Product catalog.Product
	AddedAt time.Time
}

// Repository persists wishlists. Add and Remove are idempotent.
type Repository interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	Contains(ctx context.Context, userID, productID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]Entry, error)
}

// Service implements wishlist operations.
type Service struct {
	entries  Repository
	products catalog.Repository
}

// NewService creates a wishlist Service.
func NewService(entries Repository, products catalog.Repository) *Service {
	return &Service{entries: entries, products: products}
}

// Add puts an existing product on the user's wishlist.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	if err := s.entries.Add(ctx, userID, productID); err != nil {
		return errors.Wrap(err, "add to wishlist")
	}
	return nil
}

// Remove takes a product off the user's wishlist. Removing a product that
// is not there succeeds.
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	if err := s.entries.Remove(ctx, userID, productID); err != nil {
		return errors.Wrap(err, "remove from wishlist")
	}
	return nil
}

// Contains reports whether productID is on the user's wishlist.
func (s *Service) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	ok, err := s.entries.Contains(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "wishlist lookup")
	}
	return ok, nil
}

// List returns the user's wishlist, most recently added first.
func (s *Service) List(ctx context.Context, userID int64) ([]Entry, error) {
	entries, err := s.entries.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	return entries, nil
}
