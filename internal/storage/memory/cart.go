package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/xenking/gamestore/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository stores carts and cart lines in a Store.
type CartRepository struct {
	s *Store
}

// load must be called with mu held.
func (r *CartRepository) load(cartID int64) *cart.Cart {
	row := r.s.st.carts[cartID]
	c := &cart.Cart{ID: row.ID, UserID: row.UserID}

	rows := make([]itemRow, 0)
	for _, it := range r.s.st.items {
		if it.CartID == cartID {
			rows = append(rows, it)
		}
	}
	slices.SortFunc(rows, func(a, b itemRow) int { return compareID(a.ID, b.ID) })

	for _, it := range rows {
		c.Items = append(c.Items, r.item(it))
	}
	return c
}

// item must be called with mu held.
func (r *CartRepository) item(it itemRow) cart.Item {
	return cart.Item{
		ID:       it.ID,
		CartID:   it.CartID,
		Product:  r.s.st.products[it.ProductID],
		Quantity: it.Quantity,
	}
}

func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.GetOrCreate"); err != nil {
		return nil, err
	}
	id, ok := r.s.st.cartByUser[userID]
	if !ok {
		id = r.s.id()
		r.s.st.carts[id] = cartRow{ID: id, UserID: userID}
		r.s.st.cartByUser[userID] = id
	}
	return r.load(id), nil
}

// Lock is a no-op: WithinTx already serializes transactions.
func (r *CartRepository) Lock(ctx context.Context, cartID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.Lock"); err != nil {
		return err
	}
	if _, ok := r.s.st.carts[cartID]; !ok {
		return fmt.Errorf("cart %d not found", cartID)
	}
	return nil
}

func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64) (*cart.Item, bool, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.AddItem"); err != nil {
		return nil, false, err
	}
	for _, it := range r.s.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			item := r.item(it)
			return &item, false, nil
		}
	}
	it := itemRow{ID: r.s.id(), CartID: cartID, ProductID: productID, Quantity: 1}
	r.s.st.items[it.ID] = it
	item := r.item(it)
	return &item, true, nil
}

func (r *CartRepository) ItemOwner(ctx context.Context, itemID int64) (int64, error) {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.ItemOwner"); err != nil {
		return 0, err
	}
	it, ok := r.s.st.items[itemID]
	if !ok {
		return 0, cart.ErrItemNotFound
	}
	return r.s.st.carts[it.CartID].UserID, nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, itemID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.RemoveItem"); err != nil {
		return err
	}
	if _, ok := r.s.st.items[itemID]; !ok {
		return cart.ErrItemNotFound
	}
	delete(r.s.st.items, itemID)
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.fault("cart.Clear"); err != nil {
		return err
	}
	maps.DeleteFunc(r.s.st.items, func(_ int64, it itemRow) bool { return it.CartID == cartID })
	return nil
}
