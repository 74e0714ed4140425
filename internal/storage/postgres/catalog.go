package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/gamestore/internal/domain/catalog"
)

const (
	productColumns = `p.id, p.name, p.description, p.price, p.category, p.image_url, p.is_active, p.is_featured`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products p
		WHERE p.is_active
		  AND ($1::text = '' OR p.category = $1)
		  AND ($2::text = '' OR p.name ILIKE $2 OR p.description ILIKE $2 OR p.category = ANY($3::text[]))
		ORDER BY p.id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 AND p.is_active`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1) AND p.is_active ORDER BY p.id`

	featuredProductSQL = `SELECT ` + productColumns + `
		FROM products p WHERE p.is_active AND p.is_featured ORDER BY p.id LIMIT 1`

	activeBannerSQL = `SELECT id, title, image_url, is_active
		FROM banners WHERE is_active ORDER BY created_at DESC, id DESC LIMIT 1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository returns a CatalogRepository that uses db.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns the active products matching f ordered by ID.
func (r *CatalogRepository) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	var pattern string
	if f.Query != "" {
		pattern = "%" + escapeLike(f.Query) + "%"
	}
	cats := make([]string, len(f.QueryCategories))
	for i, c := range f.QueryCategories {
		cats[i] = string(c)
	}

	rows, err := r.db.conn(ctx).Query(ctx, listProductsSQL, string(f.Category), pattern, cats)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single active product.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns the active products among ids.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return products, nil
}

// Featured returns the first active featured product.
func (r *CatalogRepository) Featured(ctx context.Context) (*catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, featuredProductSQL)
	if err != nil {
		return nil, fmt.Errorf("getting featured product: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting featured product: %w", err)
	}
	return &p, nil
}

// ActiveBanner returns the most recently created active banner.
func (r *CatalogRepository) ActiveBanner(ctx context.Context) (*catalog.Banner, error) {
	var b catalog.Banner
	err := r.db.conn(ctx).QueryRow(ctx, activeBannerSQL).Scan(&b.ID, &b.Title, &b.ImageURL, &b.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNoBanner
		}
		return nil, fmt.Errorf("getting active banner: %w", err)
	}
	return &b, nil
}

// scanProduct reads the productColumns projection.
func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p        catalog.Product
		category string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &category,
		&p.ImageURL, &p.Active, &p.Featured,
	)
	p.Category = catalog.Category(category)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
