package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Listing is the storefront landing view: the filtered products plus the
// active banner and featured product, either of which may be nil.
type Listing struct {
	Products []Product
	Banner   *Banner
	Featured *Product
}

// BrowseRequest holds the optional search inputs of a listing.
type BrowseRequest struct {
	Query    string
	Category string
}

// Service answers catalog queries.
type Service struct {
	products Repository
}

// NewService creates a catalog Service over the given repository.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Browse returns the catalog listing for req. A free-text query matches
// product names and descriptions as well as every category whose label
// contains it, so "shooter" finds all FPS titles.
func (s *Service) Browse(ctx context.Context, req BrowseRequest) (*Listing, error) {
	f := Filter{Query: strings.TrimSpace(req.Query)}
	if f.Query != "" {
		f.QueryCategories = MatchCategories(f.Query)
	}
	if req.Category != "" {
		c, err := ParseCategory(req.Category)
		if err != nil {
			return nil, err
		}
		f.Category = c
	}

	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	out := &Listing{Products: products}

	banner, err := s.products.ActiveBanner(ctx)
	switch {
	case err == nil:
		out.Banner = banner
	case !errors.Is(err, ErrNoBanner):
		return nil, errors.Wrap(err, "active banner")
	}

	featured, err := s.products.Featured(ctx)
	switch {
	case err == nil:
		out.Featured = featured
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "featured product")
	}

	return out, nil
}

// Product returns a single active product.
func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	return s.products.GetByID(ctx, id)
}
