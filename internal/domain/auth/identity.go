// Package auth holds the caller identity passed into every storefront
// operation and the API key contract used to resolve it.
package auth

import "context"

// Identity is an authenticated storefront user. Credentials and password
// storage live outside this service; only the resolved identity flows in.
type Identity struct {
	UserID   int64
	Username string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
