package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/gamestore/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO reviews (product_id, user_id, username, rating, comment)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	listReviewsSQL = `SELECT id, product_id, user_id, username, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository returns a ReviewRepository that uses db.
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts rv and fills in its ID and creation time.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	err := r.db.conn(ctx).QueryRow(ctx, createReviewSQL,
		rv.ProductID, rv.UserID, rv.Username, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating review of product %d: %w", rv.ProductID, err)
	}
	return nil
}

// List returns the product's reviews, newest first.
func (r *ReviewRepository) List(ctx context.Context, productID int64) ([]review.Review, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listReviewsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews of product %d: %w", productID, err)
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (review.Review, error) {
		var rv review.Review
		err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Username, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}
