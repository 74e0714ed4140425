package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/checkout"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/domain/wallet"
	"github.com/xenking/gamestore/internal/domain/wishlist"
	"github.com/xenking/gamestore/internal/handler"
	"github.com/xenking/gamestore/internal/storage/postgres"
	"github.com/xenking/gamestore/pkg/health"
	"github.com/xenking/gamestore/pkg/httpmiddleware"
)

const serviceName = "store-api"

// Run creates all dependencies, serves HTTP and shuts down gracefully when
// ctx is cancelled. It is the single wiring point for the server.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	db := postgres.New(pool)

	probes := health.New()
	probes.Add(health.Check{
		Name:    "postgres",
		Kind:    health.Readiness,
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(db),
	})
	probes.Add(health.Check{
		Name: "goroutines",
		Kind: health.Liveness,
		Func: health.GoroutineCountCheck(cfg.Health.MaxGoroutines),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", probes.LiveHandler)
	mux.HandleFunc("GET /readyz", probes.ReadyHandler)

	h, err := newHandler(db, m, cfg)
	if err != nil {
		return err
	}
	h.Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	middlewares := []httpmiddleware.Middleware{
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "Authorization", "api_key", httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.RateLimit.Requests > 0 {
		limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		})
		middlewares = append(middlewares, httpmiddleware.RateLimit(limiter))
		g.Go(func() error { return limiter.Run(ctx) })
	}
	middlewares = append(middlewares,
		httpmiddleware.Instrument(serviceName, routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           httpmiddleware.Wrap(mux, middlewares...),
	}

	g.Go(func() error {
		return probes.Run(ctx, cfg.Health.Interval)
	})
	g.Go(func() error {
		probes.SetReady(true)
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		probes.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}

// newHandler builds repositories and domain services on top of db.
func newHandler(db *postgres.DB, m *app.Telemetry, cfg *Config) (*handler.Handler, error) {
	var (
		products  = postgres.NewCatalogRepository(db)
		carts     = postgres.NewCartRepository(db)
		profiles  = postgres.NewWalletRepository(db)
		libraries = postgres.NewLibraryRepository(db)
		txs       = postgres.NewLedgerRepository(db)
		wishlists = postgres.NewWishlistRepository(db)
		reviews   = postgres.NewReviewRepository(db)
		apikeys   = postgres.NewAPIKeyRepository(db)
	)

	cartSvc := cart.NewService(db, carts, products, libraries)
	walletSvc, err := wallet.NewService(profiles, wallet.WithMeterProvider(m.MeterProvider()))
	if err != nil {
		return nil, errors.Wrap(err, "create wallet service")
	}
	ledgerSvc := ledger.NewService(txs)
	checkoutSvc, err := checkout.NewService(db, cartSvc, walletSvc, libraries, ledgerSvc,
		checkout.WithTracerProvider(m.TracerProvider()),
		checkout.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout service")
	}

	return handler.NewHandler(
		handler.HandlerConfig{ImageBaseURL: cfg.ImageBaseURL},
		handler.Services{
			Catalog:  catalog.NewService(products),
			Carts:    cartSvc,
			Wallets:  walletSvc,
			Library:  libraries,
			Ledger:   ledgerSvc,
			Checkout: checkoutSvc,
			Wishlist: wishlist.NewService(wishlists, products),
			Reviews:  review.NewService(reviews, products, libraries),
		},
		handler.NewSecurityHandler(apikeys, []byte(cfg.APIKeyPepper)),
	), nil
}
