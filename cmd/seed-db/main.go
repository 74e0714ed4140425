// Command seed-db loads the product catalog, banners and API keys into the
// storefront database. Seeding is idempotent.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/gamestore/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		catalogFile string
		pepper      string
		keys        []keySpec
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog", "", "catalog JSON file, optionally .gz compressed (default: embedded catalog)")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Func("key", "API key as secret:userID:username, repeatable", func(s string) error {
		k, err := parseKeySpec(s)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		return nil
	})
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if pepper == "" {
		pepper = os.Getenv("STORE_API_KEY_PEPPER")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	if len(keys) > 0 && pepper == "" {
		lg.Fatal("API key pepper is required to seed keys")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, catalogFile, []byte(pepper), keys); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, catalogFile string, pepper []byte, keys []keySpec) error {
	seed, err := loadSeed(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}
	lg.Info("Catalog loaded",
		zap.String("path", catalogFile),
		zap.Int("products", len(seed.Products)),
		zap.Int("banners", len(seed.Banners)),
	)

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	db := postgres.New(pool)
	seeder := postgres.NewSeeder(db)
	return db.WithinTx(ctx, func(ctx context.Context) error {
		for _, p := range seed.Products {
			id, err := seeder.UpsertProduct(ctx, p)
			if err != nil {
				return err
			}
			lg.Debug("Upserted product", zap.Int64("id", id), zap.String("name", p.Name))
		}
		for _, b := range seed.Banners {
			id, err := seeder.UpsertBanner(ctx, b)
			if err != nil {
				return err
			}
			lg.Debug("Upserted banner", zap.Int64("id", id), zap.String("title", b.Title))
		}
		for _, k := range keys {
			if err := seeder.UpsertAPIKey(ctx, k.info(pepper)); err != nil {
				return err
			}
			lg.Info("Upserted API key", zap.Int64("user_id", k.UserID), zap.String("username", k.Username))
		}
		return nil
	})
}
