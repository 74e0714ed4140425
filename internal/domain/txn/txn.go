// Package txn defines the storage transaction boundary shared by the domain
// services.
package txn

import "context"

// Transactor runs fn inside a single storage transaction. The transaction is
// carried on the context passed to fn, so repository calls made with that
// context participate in it. If fn returns an error every write is rolled
// back. Calling WithinTx with a context that already carries a transaction
// opens a nested savepoint.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Func adapts an ordinary function to the Transactor interface.
type Func func(ctx context.Context, fn func(ctx context.Context) error) error

// WithinTx calls f(ctx, fn).
func (f Func) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Passthrough runs fn directly without any transaction. It is meant for
// tests that exercise services over stateless mocks.
var Passthrough Transactor = Func(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
