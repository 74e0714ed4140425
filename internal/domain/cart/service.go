package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/txn"
)

// Ownership answers whether a user already owns a product.
type Ownership interface {
	Owns(ctx context.Context, userID, productID int64) (bool, error)
}

// Service implements cart operations.
type Service struct {
	tx       txn.Transactor
	carts    Repository
	products catalog.Repository
	owned    Ownership
}

// NewService creates a cart Service.
func NewService(
	tx txn.Transactor,
	carts Repository,
	products catalog.Repository,
	owned Ownership,
) *Service {
	return &Service{
		tx:       tx,
		carts:    carts,
		products: products,
		owned:    owned,
	}
}

// View returns the user's cart, creating an empty one if absent.
func (s *Service) View(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get or create cart")
	}
	return c, nil
}

// AddItem puts productID into the user's cart with quantity 1. Ownership is
// checked before any cart mutation; a product already in the cart yields
// ErrAlreadyInCart and leaves the existing line untouched.
func (s *Service) AddItem(ctx context.Context, userID, productID int64) (*Item, error) {
	var out *Item
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			return err
		}

		owns, err := s.owned.Owns(ctx, userID, productID)
		if err != nil {
			return errors.Wrap(err, "check ownership")
		}
		if owns {
			return &AlreadyOwnedError{ProductID: productID}
		}

		c, err := s.carts.GetOrCreate(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "get or create cart")
		}

		item, created, err := s.carts.AddItem(ctx, c.ID, productID)
		if err != nil {
			return errors.Wrap(err, "add item")
		}
		if !created {
			return ErrAlreadyInCart
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem deletes a cart line owned by userID. Lines of other users are
// never deleted.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := s.carts.ItemOwner(ctx, itemID)
		if err != nil {
			return err
		}
		if owner != userID {
			return ErrForbidden
		}
		if err := s.carts.RemoveItem(ctx, itemID); err != nil {
			return errors.Wrap(err, "remove item")
		}
		return nil
	})
}

// Total returns the live-priced total of the user's cart. It can change
// between calls when catalog prices change.
func (s *Service) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	c, err := s.View(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Total(), nil
}

// LockForCheckout loads the user's cart under a row lock so concurrent
// checkouts of the same cart serialize. It must run inside a transaction.
func (s *Service) LockForCheckout(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get or create cart")
	}
	if err := s.carts.Lock(ctx, c.ID); err != nil {
		return nil, errors.Wrap(err, "lock cart")
	}
	// Reload so the items reflect any write committed before the lock.
	c, err = s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "reload cart")
	}
	return c, nil
}

// Clear removes every line from the cart.
func (s *Service) Clear(ctx context.Context, cartID int64) error {
	if err := s.carts.Clear(ctx, cartID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
