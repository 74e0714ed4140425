package memory

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/review"
)

var (
	_ ledger.Repository = (*LedgerRepository)(nil)
	_ review.Repository = (*ReviewRepository)(nil)
	_ auth.Repository   = (*APIKeyRepository)(nil)
)

// LedgerRepository stores purchase transactions in a Store.
type LedgerRepository struct {
	s *Store
}

func (r *LedgerRepository) Create(ctx context.Context, userID, productID int64, price decimal.Decimal) (*ledger.Transaction, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("ledger.Create"); err != nil {
		return nil, err
	}
	t := ledger.Transaction{
		ID:          r.s.id(),
		UserID:      userID,
		ProductID:   productID,
		ProductName: r.s.st.products[productID].Name,
		Price:       price,
		CreatedAt:   r.s.now(),
	}
	r.s.st.transactions[t.ID] = t
	return &t, nil
}

func (r *LedgerRepository) Recent(ctx context.Context, userID int64, limit int) ([]ledger.Transaction, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("ledger.Recent"); err != nil {
		return nil, err
	}
	var out []ledger.Transaction
	for _, t := range r.s.st.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b ledger.Transaction) int { return compareID(b.ID, a.ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LedgerRepository) Delete(ctx context.Context, id, userID int64) (*ledger.Transaction, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("ledger.Delete"); err != nil {
		return nil, err
	}
	t, ok := r.s.st.transactions[id]
	if !ok || t.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	delete(r.s.st.transactions, id)
	return &t, nil
}

// ReviewRepository stores reviews in a Store.
type ReviewRepository struct {
	s *Store
}

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("review.Create"); err != nil {
		return err
	}
	rv.ID = r.s.id()
	rv.CreatedAt = r.s.now()
	r.s.st.reviews = append(r.s.st.reviews, *rv)
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, productID int64) ([]review.Review, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("review.List"); err != nil {
		return nil, err
	}
	var out []review.Review
	for _, rv := range slices.Backward(r.s.st.reviews) {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

// APIKeyRepository stores API keys in a Store.
type APIKeyRepository struct {
	s *Store
}

// Add stores info keyed by its hash.
func (r *APIKeyRepository) Add(info auth.APIKeyInfo) {
	defer r.s.lock(context.Background())()
	r.s.st.apikeys[info.KeyHash] = info
}

func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("apikey.FindByHash"); err != nil {
		return nil, err
	}
	info, ok := r.s.st.apikeys[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return &info, nil
}
