// Package library tracks which products each user owns. Ownership is a
// boolean per (user, product); there are no quantities.
package library

import (
	"context"
	"time"

	"github.com/xenking/gamestore/internal/domain/catalog"
)

// Entry is an owned product together with the time it was acquired.
type Entry struct {
	Product    catalog.Product
	AcquiredAt time.Time
}

// Repository persists ownership. Grant and Revoke are idempotent.
type Repository interface {
	Owns(ctx context.Context, userID, productID int64) (bool, error)
	Grant(ctx context.Context, userID, productID int64) error
	Revoke(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]Entry, error)
}
