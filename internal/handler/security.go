package handler

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/gamestore/internal/domain/auth"
)

// ErrUnauthorized is returned for missing or unknown API keys.
var ErrUnauthorized = errors.New("unauthorized")

// SecurityHandler authenticates API requests via HMAC-SHA256 hashed API
// keys.
type SecurityHandler struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurityHandler creates a SecurityHandler with the given API key
// repository and HMAC pepper.
func NewSecurityHandler(apikeys auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Authenticate resolves an API key to the identity it belongs to. The stored
// hash is compared in constant time with the computed one.
func (s *SecurityHandler) Authenticate(ctx context.Context, key string) (auth.Identity, error) {
	if key == "" {
		return auth.Identity{}, ErrUnauthorized
	}
	hexHash := auth.HashKey(s.pepper, key)

	info, err := s.apikeys.FindByHash(ctx, hexHash)
	if err != nil {
		if !errors.Is(err, auth.ErrKeyNotFound) {
			zctx.From(ctx).Warn("API key lookup failed", zap.Error(err))
		}
		return auth.Identity{}, ErrUnauthorized
	}

	hash, err := hex.DecodeString(hexHash)
	if err != nil {
		return auth.Identity{}, ErrUnauthorized
	}
	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return auth.Identity{}, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return auth.Identity{}, ErrUnauthorized
	}

	return info.Identity(), nil
}

// Require rejects requests without a valid key with 401.
func (s *SecurityHandler) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Authenticate(r.Context(), apiKey(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when a valid key is present and serves the
// request anonymously otherwise. A key that is present but invalid is still
// rejected.
func (s *SecurityHandler) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := apiKey(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := s.Authenticate(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// apiKey reads the key from the api_key header or a bearer token.
func apiKey(r *http.Request) string {
	if key := r.Header.Get("api_key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
