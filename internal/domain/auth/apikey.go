package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned by Repository.FindByHash when no active key has
// the given hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and metadata bound to a stored API key.
type APIKeyInfo struct {
	ID       string
	KeyHash  string
	Name     string
	UserID   int64
	Username string
}

// Identity returns the user identity the key authenticates.
func (i *APIKeyInfo) Identity() Identity {
	return Identity{UserID: i.UserID, Username: i.Username}
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashKey returns the hex-encoded HMAC-SHA256 of key under pepper. Stored key
// hashes and lookups both go through this function.
func HashKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
