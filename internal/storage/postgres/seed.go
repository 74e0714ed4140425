package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
)

const (
	upsertProductSQL = `INSERT INTO products (name, description, price, category, image_url, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			category    = EXCLUDED.category,
			image_url   = EXCLUDED.image_url,
			is_active   = EXCLUDED.is_active,
			is_featured = EXCLUDED.is_featured
		RETURNING id`

	upsertBannerSQL = `INSERT INTO banners (title, image_url, is_active) VALUES ($1, $2, $3)
		ON CONFLICT (title) DO UPDATE SET image_url = EXCLUDED.image_url, is_active = EXCLUDED.is_active
		RETURNING id`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, user_id, username) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key_hash) DO UPDATE SET
			name      = EXCLUDED.name,
			user_id   = EXCLUDED.user_id,
			username  = EXCLUDED.username,
			is_active = TRUE`
)

// Seeder writes catalog data and API keys. Products are keyed by name and
// banners by title, so seeding the same input twice is a no-op.
type Seeder struct {
	db *DB
}

// NewSeeder returns a Seeder that uses db.
func NewSeeder(db *DB) *Seeder {
	return &Seeder{db: db}
}

// UpsertProduct inserts or updates p and returns its ID.
func (s *Seeder) UpsertProduct(ctx context.Context, p catalog.Product) (int64, error) {
	var id int64
	err := s.db.conn(ctx).QueryRow(ctx, upsertProductSQL,
		p.Name, p.Description, p.Price, string(p.Category), p.ImageURL, p.Active, p.Featured,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting product %q: %w", p.Name, err)
	}
	return id, nil
}

// UpsertBanner inserts or updates b and returns its ID.
func (s *Seeder) UpsertBanner(ctx context.Context, b catalog.Banner) (int64, error) {
	var id int64
	err := s.db.conn(ctx).QueryRow(ctx, upsertBannerSQL, b.Title, b.ImageURL, b.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting banner %q: %w", b.Title, err)
	}
	return id, nil
}

// UpsertAPIKey stores an active key. info.KeyHash must already be hashed
// with auth.HashKey.
func (s *Seeder) UpsertAPIKey(ctx context.Context, info auth.APIKeyInfo) error {
	id := uuid.New()
	if info.ID != "" {
		parsed, err := uuid.Parse(info.ID)
		if err != nil {
			return fmt.Errorf("parsing api key id %q: %w", info.ID, err)
		}
		id = parsed
	}
	_, err := s.db.conn(ctx).Exec(ctx, upsertAPIKeySQL, id, info.KeyHash, info.Name, info.UserID, info.Username)
	if err != nil {
		return fmt.Errorf("upserting api key %q: %w", info.Name, err)
	}
	return nil
}
