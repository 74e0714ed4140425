// Package review stores product reviews. Only owners of a product may
// review it; a user may post any number of reviews.
package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Rating bounds. A zero rating is treated as DefaultRating.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

var (
	// ErrNotOwned is returned when the author does not own the product.
	ErrNotOwned = errors.New("only owners can review this product")
	// ErrInvalidRating is returned for ratings outside MinRating..MaxRating.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyComment is returned when the comment is blank after sanitizing.
	ErrEmptyComment = errors.New("comment must not be empty")
)

// Review is a user's rating and comment on a product.
type Review struct {
	ID        int64
	ProductID int64
	UserID    int64
	Username  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Repository persists reviews. List returns newest first.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	List(ctx context.Context, productID int64) ([]Review, error)
}
