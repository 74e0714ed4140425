// Package catalog is the read model of purchasable products, promotional
// banners and the featured product.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a product does not exist or is inactive.
	ErrNotFound = errors.New("product not found")
	// ErrNoBanner is returned when no banner is currently active.
	ErrNoBanner = errors.New("no active banner")
)

// Product is a catalog item available for purchase. Products are managed
// outside the storefront and are immutable from its point of view.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	ImageURL    string
	Active      bool
	Featured    bool
}

// Banner is a promotional banner shown above the catalog listing.
type Banner struct {
	ID       int64
	Title    string
	ImageURL string
	Active   bool
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	// Query matches name or description case-insensitively.
	Query string
	// QueryCategories are additional categories matched by Query.
	QueryCategories []Category
	// Category restricts the listing to a single category.
	Category Category
}

// Repository defines read operations for the catalog. Only active products
// are ever returned.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Featured(ctx context.Context) (*Product, error)
	ActiveBanner(ctx context.Context) (*Banner, error)
}
