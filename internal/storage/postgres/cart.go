package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
)

const (
	ensureCartSQL = `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	getCartSQL = `SELECT id FROM carts WHERE user_id = $1`

	lockCartSQL = `SELECT id FROM carts WHERE id = $1 FOR UPDATE`

	cartItemColumns = `ci.id, ci.cart_id, ci.quantity, ` + productColumns

	listCartItemsSQL = `SELECT ` + cartItemColumns + `
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 ORDER BY ci.id`

	getCartItemSQL = `SELECT ` + cartItemColumns + `
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND ci.product_id = $2`

	insertCartItemSQL = `INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, 1)
		ON CONFLICT (cart_id, product_id) DO NOTHING`

	cartItemOwnerSQL = `SELECT c.user_id FROM cart_items ci JOIN carts c ON c.id = ci.cart_id WHERE ci.id = $1`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	db *DB
}

// NewCartRepository returns a CartRepository that uses db.
func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreate upserts the user's cart and returns it with its items joined
// to live product data.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	q := r.db.conn(ctx)
	if _, err := q.Exec(ctx, ensureCartSQL, userID); err != nil {
		return nil, fmt.Errorf("creating cart for user %d: %w", userID, err)
	}

	c := &cart.Cart{UserID: userID}
	if err := q.QueryRow(ctx, getCartSQL, userID).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("getting cart for user %d: %w", userID, err)
	}

	rows, err := q.Query(ctx, listCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing cart %d items: %w", c.ID, err)
	}
	c.Items, err = pgx.CollectRows(rows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("listing cart %d items: %w", c.ID, err)
	}
	return c, nil
}

// Lock takes a row lock on the cart until the surrounding transaction ends.
func (r *CartRepository) Lock(ctx context.Context, cartID int64) error {
	var id int64
	if err := r.db.conn(ctx).QueryRow(ctx, lockCartSQL, cartID).Scan(&id); err != nil {
		return fmt.Errorf("locking cart %d: %w", cartID, err)
	}
	return nil
}

// AddItem inserts a quantity-1 line unless the product is already in the
// cart, in which case the existing line is returned with created=false.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64) (*cart.Item, bool, error) {
	q := r.db.conn(ctx)
	tag, err := q.Exec(ctx, insertCartItemSQL, cartID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("adding product %d to cart %d: %w", productID, cartID, err)
	}

	rows, err := q.Query(ctx, getCartItemSQL, cartID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("getting cart %d item: %w", cartID, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		return nil, false, fmt.Errorf("getting cart %d item: %w", cartID, err)
	}
	return &item, tag.RowsAffected() == 1, nil
}

// ItemOwner returns the user whose cart holds itemID.
func (r *CartRepository) ItemOwner(ctx context.Context, itemID int64) (int64, error) {
	var userID int64
	if err := r.db.conn(ctx).QueryRow(ctx, cartItemOwnerSQL, itemID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, cart.ErrItemNotFound
		}
		return 0, fmt.Errorf("getting owner of cart item %d: %w", itemID, err)
	}
	return userID, nil
}

// RemoveItem deletes a cart line.
func (r *CartRepository) RemoveItem(ctx context.Context, itemID int64) error {
	tag, err := r.db.conn(ctx).Exec(ctx, deleteCartItemSQL, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear deletes every line of the cart.
func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.db.conn(ctx).Exec(ctx, clearCartSQL, cartID); err != nil {
		return fmt.Errorf("clearing cart %d: %w", cartID, err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var (
		it       cart.Item
		category string
	)
	err := row.Scan(
		&it.ID, &it.CartID, &it.Quantity,
		&it.Product.ID, &it.Product.Name, &it.Product.Description, &it.Product.Price, &category,
		&it.Product.ImageURL, &it.Product.Active, &it.Product.Featured,
	)
	it.Product.Category = catalog.Category(category)
	return it, err
}
