package httpmiddleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/jx"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	// Requests is the bucket capacity; the bucket refills fully over Window.
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Enabled reports whether limiting is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.Requests > 0 && c.Window > 0
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// Limiter is a keyed token bucket limiter. Clients are identified by
// ClientKey unless KeyFunc is set.
type Limiter struct {
	cfg  RateLimitConfig
	rate float64 // tokens per second

	// KeyFunc overrides client identification.
	KeyFunc func(r *http.Request) string

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a limiter. cfg must be Enabled.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	return &Limiter{
		cfg:     cfg,
		rate:    float64(cfg.Requests) / cfg.Window.Seconds(),
		KeyFunc: ClientKey,
		buckets: make(map[string]*bucket),
	}
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Allow takes one token from the bucket of key.
func (l *Limiter) Allow(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := float64(l.cfg.Requests)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*l.rate)
	}
	b.seen = now

	if b.tokens < 1 {
		wait := (1 - b.tokens) / l.rate
		return Decision{RetryAfter: time.Duration(wait * float64(time.Second))}
	}
	b.tokens--
	return Decision{Allowed: true, Remaining: int(b.tokens)}
}

// Evict removes buckets idle long enough to have refilled completely.
func (l *Limiter) Evict(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for key, b := range l.buckets {
		if now.Sub(b.seen) >= l.cfg.Window {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Run evicts idle buckets every window until ctx is done.
func (l *Limiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			l.Evict(now)
		}
	}
}

// RateLimit rejects requests over the limit with 429 and a JSON error.
func RateLimit(l *Limiter) Middleware {
	limit := strconv.Itoa(l.cfg.Requests)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Allow(l.KeyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				seconds := int64(math.Ceil(d.RetryAfter.Seconds()))
				h.Set("Retry-After", strconv.FormatInt(seconds, 10))
				writeProblem(w, http.StatusTooManyRequests, "rate limit exceeded", func(e *jx.Encoder) {
					e.FieldStart("retryAfter")
					e.Int64(seconds)
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by API key when one is presented and by
// client IP otherwise. Keys are hashed so raw secrets are never retained.
func ClientKey(r *http.Request) string {
	key := r.Header.Get("api_key")
	if key == "" {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			key = strings.TrimSpace(token)
		}
	}
	if key != "" {
		sum := sha256.Sum256([]byte(key))
		return "key:" + hex.EncodeToString(sum[:12])
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the remote
// address host.
//
// Both headers are trusted as sent. Deploy behind a proxy that overwrites
// them; a client reaching the server directly can otherwise pick its own
// rate limit bucket.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
