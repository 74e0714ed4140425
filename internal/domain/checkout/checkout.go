// Package checkout turns a user's cart into owned products and ledger
// records, and reverses single purchases through refunds. Every operation
// runs in one storage transaction, so a failure leaves wallet, cart,
// library and ledger exactly as they were.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

// ErrEmptyCart is returned when checking out a cart without items.
var ErrEmptyCart = errors.New("cart is empty")

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Total        decimal.Decimal
	Balance      decimal.Decimal
	Transactions []ledger.Transaction
}

// RefundResult is the outcome of a successful refund.
type RefundResult struct {
	Transaction ledger.Transaction
	Balance     decimal.Decimal
}

// Carts is the part of the cart service used by checkout.
type Carts interface {
	LockForCheckout(ctx context.Context, userID int64) (*cart.Cart, error)
	Clear(ctx context.Context, cartID int64) error
}

// Wallets is the part of the wallet service used by checkout.
type Wallets interface {
	Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Profile(ctx context.Context, userID int64) (*wallet.Profile, error)
}

// Library grants and revokes ownership.
type Library interface {
	Owns(ctx context.Context, userID, productID int64) (bool, error)
	Grant(ctx context.Context, userID, productID int64) error
	Revoke(ctx context.Context, userID, productID int64) error
}

// Ledger records and voids purchases.
type Ledger interface {
	Record(ctx context.Context, userID, productID int64, price decimal.Decimal) (*ledger.Transaction, error)
	Void(ctx context.Context, userID, id int64) (*ledger.Transaction, error)
}
