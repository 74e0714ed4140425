package memory

import (
	"context"
	"slices"

	"github.com/xenking/gamestore/internal/domain/library"
	"github.com/xenking/gamestore/internal/domain/wishlist"
)

var (
	_ library.Repository  = (*LibraryRepository)(nil)
	_ wishlist.Repository = (*WishlistRepository)(nil)
)

// LibraryRepository stores product ownership in a Store.
type LibraryRepository struct {
	s *Store
}

func (r *LibraryRepository) Owns(ctx context.Context, userID, productID int64) (bool, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("library.Owns"); err != nil {
		return false, err
	}
	_, ok := r.s.st.library[pair{userID, productID}]
	return ok, nil
}

func (r *LibraryRepository) Grant(ctx context.Context, userID, productID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("library.Grant"); err != nil {
		return err
	}
	k := pair{userID, productID}
	if _, ok := r.s.st.library[k]; !ok {
		r.s.st.library[k] = r.s.now()
	}
	return nil
}

func (r *LibraryRepository) Revoke(ctx context.Context, userID, productID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("library.Revoke"); err != nil {
		return err
	}
	delete(r.s.st.library, pair{userID, productID})
	return nil
}

func (r *LibraryRepository) List(ctx context.Context, userID int64) ([]library.Entry, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("library.List"); err != nil {
		return nil, err
	}
	var out []library.Entry
	for k, at := range r.s.st.library {
		if k.userID == userID {
			out = append(out, library.Entry{Product: r.s.st.products[k.productID], AcquiredAt: at})
		}
	}
	slices.SortFunc(out, func(a, b library.Entry) int { return b.AcquiredAt.Compare(a.AcquiredAt) })
	return out, nil
}

// WishlistRepository stores wishlists in a Store.
type WishlistRepository struct {
	s *Store
}

func (r *WishlistRepository) Add(ctx context.Context, userID, productID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wishlist.Add"); err != nil {
		return err
	}
	k := pair{userID, productID}
	if _, ok := r.s.st.wishlist[k]; !ok {
		r.s.st.wishlist[k] = r.s.now()
	}
	return nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wishlist.Remove"); err != nil {
		return err
	}
	delete(r.s.st.wishlist, pair{userID, productID})
	return nil
}

func (r *WishlistRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wishlist.Contains"); err != nil {
		return false, err
	}
	_, ok := r.s.st.wishlist[pair{userID, productID}]
	return ok, nil
}

func (r *WishlistRepository) List(ctx context.Context, userID int64) ([]wishlist.Entry, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("wishlist.List"); err != nil {
		return nil, err
	}
	var out []wishlist.Entry
	for k, at := range r.s.st.wishlist {
		p, ok := r.s.st.products[k.productID]
		if k.userID == userID && ok && p.Active {
			out = append(out, wishlist.Entry{Product: p, AddedAt: at})
		}
	}
	slices.SortFunc(out, func(a, b wishlist.Entry) int { return b.AddedAt.Compare(a.AddedAt) })
	return out, nil
}

