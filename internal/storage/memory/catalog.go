package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/xenking/gamestore/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository serves products and banners from a Store.
type CatalogRepository struct {
	s *Store
}

// AddProduct stores p, assigning an ID when p.ID is zero, and returns it.
func (r *CatalogRepository) AddProduct(p catalog.Product) catalog.Product {
	defer r.s.lock(context.Background())()
	if p.ID == 0 {
		p.ID = r.s.id()
	} else if p.ID > r.s.nextID {
		r.s.nextID = p.ID
	}
	r.s.st.products[p.ID] = p
	return p
}

// AddBanner stores b, assigning an ID when b.ID is zero, and returns it.
func (r *CatalogRepository) AddBanner(b catalog.Banner) catalog.Banner {
	defer r.s.lock(context.Background())()
	if b.ID == 0 {
		b.ID = r.s.id()
	}
	r.s.st.banners = append(r.s.st.banners, b)
	return b
}

func matches(p catalog.Product, f catalog.Filter) bool {
	if !p.Active {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	return slices.Contains(f.QueryCategories, p.Category)
}

// sortedProducts must be called with mu held.
func (r *CatalogRepository) sortedProducts() []catalog.Product {
	out := make([]catalog.Product, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b catalog.Product) int { return compareID(a.ID, b.ID) })
	return out
}

func (r *CatalogRepository) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("catalog.List"); err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range r.sortedProducts() {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("catalog.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.st.products[id]
	if !ok || !p.Active {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("catalog.GetByIDs"); err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range r.sortedProducts() {
		if p.Active && slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *CatalogRepository) Featured(ctx context.Context) (*catalog.Product, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("catalog.Featured"); err != nil {
		return nil, err
	}
	for _, p := range r.sortedProducts() {
		if p.Active && p.Featured {
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r *CatalogRepository) ActiveBanner(ctx context.Context) (*catalog.Banner, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("catalog.ActiveBanner"); err != nil {
		return nil, err
	}
	var latest *catalog.Banner
	for i := range r.s.st.banners {
		b := r.s.st.banners[i]
		if b.Active && (latest == nil || b.ID > latest.ID) {
			latest = &b
		}
	}
	if latest == nil {
		return nil, catalog.ErrNoBanner
	}
	return latest, nil
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
