package review

import (
	"context"
	"html"
	"strings"

	"github.com/go-faster/errors"
	"github.com/microcosm-cc/bluemonday"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
)

// Ownership answers whether a user owns a product.
type Ownership interface {
	Owns(ctx context.Context, userID, productID int64) (bool, error)
}

// CreateRequest holds the author-provided part of a review.
type CreateRequest struct {
	Rating  int
	Comment string
}

// Service implements review operations.
type Service struct {
	reviews  Repository
	products catalog.Repository
	owned    Ownership
	policy   *bluemonday.Policy
}

// NewService creates a review Service. Comments are stripped of all markup.
func NewService(reviews Repository, products catalog.Repository, owned Ownership) *Service {
	return &Service{
		reviews:  reviews,
		products: products,
		owned:    owned,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Create posts a review of productID by author. The author must own the
// product; ownership is checked before the rating and comment.
func (s *Service) Create(ctx context.Context, author auth.Identity, productID int64, req CreateRequest) (*Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	owns, err := s.owned.Owns(ctx, author.UserID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "check ownership")
	}
	if !owns {
		return nil, ErrNotOwned
	}

	rating := req.Rating
	if rating == 0 {
		rating = DefaultRating
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}

	// StrictPolicy escapes entities; store the plain text.
	comment := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(req.Comment)))
	if comment == "" {
		return nil, ErrEmptyComment
	}

	r := &Review{
		ProductID: productID,
		UserID:    author.UserID,
		Username:  author.Username,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create review")
	}
	return r, nil
}

// List returns the reviews of a product, newest first.
func (s *Service) List(ctx context.Context, productID int64) ([]Review, error) {
	reviews, err := s.reviews.List(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return reviews, nil
}
