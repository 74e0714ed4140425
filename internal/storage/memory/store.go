// Package memory implements every storage port in process memory. It backs
// unit and handler tests: transactions are serialized and roll back by
// restoring a snapshot, and individual operations can be made to fail.
// Writes made outside a transaction wait until the running one finishes, so
// a rollback never erases them.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/domain/txn"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

var _ txn.Transactor = (*Store)(nil)

type pair struct {
	userID    int64
	productID int64
}

type cartRow struct {
	ID     int64
	UserID int64
}

type itemRow struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
}

// state is everything a rollback restores.
type state struct {
	products     map[int64]catalog.Product
	banners      []catalog.Banner
	profiles     map[int64]wallet.Profile
	carts        map[int64]cartRow
	cartByUser   map[int64]int64
	items        map[int64]itemRow
	library      map[pair]time.Time
	wishlist     map[pair]time.Time
	transactions map[int64]ledger.Transaction
	reviews      []review.Review
	apikeys      map[string]auth.APIKeyInfo
}

func newState() state {
	return state{
		products:     make(map[int64]catalog.Product),
		profiles:     make(map[int64]wallet.Profile),
		carts:        make(map[int64]cartRow),
		cartByUser:   make(map[int64]int64),
		items:        make(map[int64]itemRow),
		library:      make(map[pair]time.Time),
		wishlist:     make(map[pair]time.Time),
		transactions: make(map[int64]ledger.Transaction),
		apikeys:      make(map[string]auth.APIKeyInfo),
	}
}

func (st state) clone() state {
	return state{
		products:     maps.Clone(st.products),
		banners:      slices.Clone(st.banners),
		profiles:     maps.Clone(st.profiles),
		carts:        maps.Clone(st.carts),
		cartByUser:   maps.Clone(st.cartByUser),
		items:        maps.Clone(st.items),
		library:      maps.Clone(st.library),
		wishlist:     maps.Clone(st.wishlist),
		transactions: maps.Clone(st.transactions),
		reviews:      slices.Clone(st.reviews),
		apikeys:      maps.Clone(st.apikeys),
	}
}

// Store is an in-memory database. The zero value is not usable; call New.
type Store struct {
	txMu sync.Mutex // held by the outermost WithinTx

	mu     sync.Mutex
	st     state
	nextID int64
	ticks  int64
	epoch  time.Time
	faults map[string]error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		st:     newState(),
		epoch:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		faults: make(map[string]error),
	}
}

type txKey struct{}

// WithinTx runs fn with all-or-nothing semantics. Transactions are fully
// serialized; a nested call restores only its own writes on error. Only
// repository calls made with the ctx passed to fn run inside the
// transaction; any other call blocks until it ends.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
		ctx = context.WithValue(ctx, txKey{}, struct{}{})
	}

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock guards one repository call. Outside a transaction it also waits for
// the running one, whose rollback would otherwise discard the call's writes.
func (s *Store) lock(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// InjectError makes every later call of op fail with err until cleared with
// a nil err. Operation names are "<repository>.<Method>", for example
// "ledger.Create".
func (s *Store) InjectError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// fault must be called with mu held.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

// id must be called with mu held. Identifiers are never reused, even after
// a rollback.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// now must be called with mu held. Every call returns a strictly later time
// so orderings by timestamp are deterministic.
func (s *Store) now() time.Time {
	s.ticks++
	return s.epoch.Add(time.Duration(s.ticks) * time.Second)
}

// Catalog returns the catalog repository.
func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{s: s} }

// Wallets returns the wallet profile repository.
func (s *Store) Wallets() *WalletRepository { return &WalletRepository{s: s} }

// Carts returns the cart repository.
func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

// Library returns the ownership repository.
func (s *Store) Library() *LibraryRepository { return &LibraryRepository{s: s} }

// Ledger returns the transaction repository.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

// Wishlist returns the wishlist repository.
func (s *Store) Wishlist() *WishlistRepository { return &WishlistRepository{s: s} }

// Reviews returns the review repository.
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s: s} }

// APIKeys returns the API key repository.
func (s *Store) APIKeys() *APIKeyRepository { return &APIKeyRepository{s: s} }
