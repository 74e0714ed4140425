package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/library"
	"github.com/xenking/gamestore/internal/domain/wishlist"
)

const (
	ownsSQL   = `SELECT EXISTS (SELECT 1 FROM library_entries WHERE user_id = $1 AND product_id = $2)`
	grantSQL  = `INSERT INTO library_entries (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	revokeSQL = `DELETE FROM library_entries WHERE user_id = $1 AND product_id = $2`

	listLibrarySQL = `SELECT l.acquired_at, ` + productColumns + `
		FROM library_entries l JOIN products p ON p.id = l.product_id
		WHERE l.user_id = $1 ORDER BY l.acquired_at DESC, p.id`

	wishlistAddSQL      = `INSERT INTO wishlist_entries (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	wishlistRemoveSQL   = `DELETE FROM wishlist_entries WHERE user_id = $1 AND product_id = $2`
	wishlistContainsSQL = `SELECT EXISTS (SELECT 1 FROM wishlist_entries WHERE user_id = $1 AND product_id = $2)`

	listWishlistSQL = `SELECT w.added_at, ` + productColumns + `
		FROM wishlist_entries w JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1 AND p.is_active ORDER BY w.added_at DESC, p.id`
)

var (
	_ library.Repository  = (*LibraryRepository)(nil)
	_ wishlist.Repository = (*WishlistRepository)(nil)
)

// LibraryRepository implements library.Repository backed by PostgreSQL.
type LibraryRepository struct {
	db *DB
}

// NewLibraryRepository returns a LibraryRepository that uses db.
func NewLibraryRepository(db *DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (r *LibraryRepository) Owns(ctx context.Context, userID, productID int64) (bool, error) {
	return exists(ctx, r.db.conn(ctx), ownsSQL, userID, productID)
}

func (r *LibraryRepository) Grant(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.conn(ctx).Exec(ctx, grantSQL, userID, productID); err != nil {
		return fmt.Errorf("granting product %d to user %d: %w", productID, userID, err)
	}
	return nil
}

func (r *LibraryRepository) Revoke(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.conn(ctx).Exec(ctx, revokeSQL, userID, productID); err != nil {
		return fmt.Errorf("revoking product %d from user %d: %w", productID, userID, err)
	}
	return nil
}

// List returns owned products, most recently acquired first.
func (r *LibraryRepository) List(ctx context.Context, userID int64) ([]library.Entry, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listLibrarySQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing library of user %d: %w", userID, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (library.Entry, error) {
		at, p, err := scanTimedProduct(row)
		return library.Entry{Product: p, AcquiredAt: at}, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing library of user %d: %w", userID, err)
	}
	return entries, nil
}

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
type WishlistRepository struct {
	db *DB
}

// NewWishlistRepository returns a WishlistRepository that uses db.
func NewWishlistRepository(db *DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) Add(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.conn(ctx).Exec(ctx, wishlistAddSQL, userID, productID); err != nil {
		return fmt.Errorf("wishlisting product %d for user %d: %w", productID, userID, err)
	}
	return nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.conn(ctx).Exec(ctx, wishlistRemoveSQL, userID, productID); err != nil {
		return fmt.Errorf("unwishlisting product %d for user %d: %w", productID, userID, err)
	}
	return nil
}

func (r *WishlistRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	return exists(ctx, r.db.conn(ctx), wishlistContainsSQL, userID, productID)
}

// List returns wishlisted active products, most recently added first.
func (r *WishlistRepository) List(ctx context.Context, userID int64) ([]wishlist.Entry, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist of user %d: %w", userID, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wishlist.Entry, error) {
		at, p, err := scanTimedProduct(row)
		return wishlist.Entry{Product: p, AddedAt: at}, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing wishlist of user %d: %w", userID, err)
	}
	return entries, nil
}

func exists(ctx context.Context, q querier, sql string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return ok, nil
}

// scanTimedProduct reads a timestamp followed by the productColumns
// projection.
func scanTimedProduct(row pgx.CollectableRow) (time.Time, catalog.Product, error) {
	var (
		at       time.Time
		p        catalog.Product
		category string
	)
	err := row.Scan(
		&at,
		&p.ID, &p.Name, &p.Description, &p.Price, &category,
		&p.ImageURL, &p.Active, &p.Featured,
	)
	p.Category = catalog.Category(category)
	return at, p, err
}
