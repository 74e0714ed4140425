package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Requests: 2, Window: 10 * time.Second})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	d := l.Allow("a", now)
	require.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d = l.Allow("a", now)
	require.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d = l.Allow("a", now)
	require.False(t, d.Allowed)
	assert.InDelta(t, float64(5*time.Second), float64(d.RetryAfter), float64(time.Millisecond))

	// Other clients have their own bucket.
	assert.True(t, l.Allow("b", now).Allowed)

	// One token refills every five seconds.
	d = l.Allow("a", now.Add(5*time.Second))
	assert.True(t, d.Allowed)
	assert.False(t, l.Allow("a", now.Add(5*time.Second)).Allowed)
}

func TestLimiterEvict(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
	now := time.Now()
	l.Allow("old", now.Add(-2*time.Minute))
	l.Allow("fresh", now)

	assert.Equal(t, 1, l.Evict(now))
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "fresh")
}

func TestRateLimit(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
	h := RateLimit(l)(okHandler())

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := do("10.0.0.1:1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do("10.0.0.1:2000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var (
		code       int
		message    string
		retryAfter int64
	)
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = d.Int()
		case "message":
			message, err = d.Str()
		case "retryAfter":
			retryAfter, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	}))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", message)
	assert.Equal(t, int64(60), retryAfter)

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code)
}

func TestClientKey(t *testing.T) {
	for _, tt := range []struct {
		name    string
		headers map[string]string
		remote  string
		same    string
	}{
		{name: "APIKeyHeader", headers: map[string]string{"api_key": "secret"}, same: "Bearer secret"},
		{name: "Bearer", headers: map[string]string{"Authorization": "Bearer secret"}, same: "Bearer secret"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			other := httptest.NewRequest(http.MethodGet, "/", nil)
			other.Header.Set("Authorization", tt.same)

			key := ClientKey(req)
			assert.Equal(t, ClientKey(other), key)
			assert.NotContains(t, key, "secret")
			assert.Contains(t, key, "key:")
		})
	}

	t.Run("IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		assert.Equal(t, "ip:192.0.2.7", ClientKey(req))
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:80"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", ClientIP(req))
}

func TestClientKey_ForwardedHeadersTrusted(t *testing.T) {
	direct := httptest.NewRequest(http.MethodGet, "/", nil)
	direct.RemoteAddr = "192.0.2.1:80"

	spoofed := httptest.NewRequest(http.MethodGet, "/", nil)
	spoofed.RemoteAddr = "192.0.2.1:80"
	spoofed.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "ip:192.0.2.1", ClientKey(direct))
	assert.Equal(t, "ip:203.0.113.9", ClientKey(spoofed))
}
