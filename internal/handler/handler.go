// Package handler exposes the storefront over a JSON HTTP API. Bodies are
// encoded with go-faster/jx; routes use net/http method patterns.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/checkout"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/library"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/domain/wallet"
	"github.com/xenking/gamestore/internal/domain/wishlist"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image and avatar paths in
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Services are the domain services the Handler delegates to.
type Services struct {
	Catalog  *catalog.Service
	Carts    *cart.Service
	Wallets  *wallet.Service
	Library  library.Repository
	Ledger   *ledger.Service
	Checkout *checkout.Service
	Wishlist *wishlist.Service
	Reviews  *review.Service
}

// Handler serves the /api routes.
type Handler struct {
	svc          Services
	security     *SecurityHandler
	validate     *validator.Validate
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cfg HandlerConfig, svc Services, security *SecurityHandler) *Handler {
	return &Handler{
		svc:          svc,
		security:     security,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/products", h.optional(h.listProducts))
	mux.Handle("GET /api/products/{id}", h.optional(h.getProduct))
	mux.Handle("POST /api/products/{id}/reviews", h.required(h.createReview))

	mux.Handle("GET /api/cart", h.required(h.getCart))
	mux.Handle("POST /api/cart/items", h.required(h.addCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", h.required(h.removeCartItem))
	mux.Handle("POST /api/checkout", h.required(h.checkout))

	mux.Handle("GET /api/profile", h.required(h.getProfile))
	mux.Handle("PUT /api/profile/avatar", h.required(h.setAvatar))
	mux.Handle("POST /api/wallet/topup", h.required(h.topUp))
	mux.Handle("GET /api/library", h.required(h.getLibrary))
	mux.Handle("POST /api/transactions/{id}/refund", h.required(h.refund))

	mux.Handle("GET /api/wishlist", h.required(h.getWishlist))
	mux.Handle("POST /api/wishlist/{productId}", h.required(h.addToWishlist))
	mux.Handle("DELETE /api/wishlist/{productId}", h.required(h.removeFromWishlist))
}

// handlerFunc is an HTTP handler that reports failures as errors, which
// are rendered by writeError.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) serve(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	})
}

func (h *Handler) required(fn handlerFunc) http.Handler {
	return h.security.Require(h.serve(fn))
}

func (h *Handler) optional(fn handlerFunc) http.Handler {
	return h.security.Optional(h.serve(fn))
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" ||
		strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return h.imageBaseURL + path
}
