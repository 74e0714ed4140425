// Package cart holds each user's pending purchases.
package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/catalog"
)

var (
	// ErrAlreadyInCart signals a repeated add of the same product. Duplicate
	// adds are rejected rather than accumulated into the quantity.
	ErrAlreadyInCart = errors.New("product already in cart")
	// ErrAlreadyOwned is matched by every *AlreadyOwnedError.
	ErrAlreadyOwned = errors.New("product already owned")
	// ErrItemNotFound is returned when a cart item does not exist.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrForbidden is returned when a cart item belongs to another user.
	ErrForbidden = errors.New("cart item belongs to another user")
)

// AlreadyOwnedError reports a product that is already in the user's library.
type AlreadyOwnedError struct {
	ProductID int64
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("product %d already owned", e.ProductID)
}

// Unwrap makes errors.Is(err, ErrAlreadyOwned) hold.
func (e *AlreadyOwnedError) Unwrap() error {
	return ErrAlreadyOwned
}

// Item is a cart line. Product carries live catalog data, so prices reflect
// the current catalog price rather than the price at the time of adding.
type Item struct {
	ID       int64
	CartID   int64
	Product  catalog.Product
	Quantity int
}

// Subtotal returns unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a user's cart with its items in insertion order.
type Cart struct {
	ID     int64
	UserID int64
	Items  []Item
}

// Total sums the item subtotals at live prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(2)
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Repository persists carts. AddItem inserts a quantity-1 line unless one
// already exists for the product, reporting created=false in that case.
// Lock takes a row lock on the cart for the rest of the transaction.
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*Cart, error)
	Lock(ctx context.Context, cartID int64) error
	AddItem(ctx context.Context, cartID, productID int64) (item *Item, created bool, err error)
	ItemOwner(ctx context.Context, itemID int64) (userID int64, err error)
	RemoveItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context, cartID int64) error
}
