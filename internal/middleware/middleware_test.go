package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/clima-backend/internal/observability"
	"github.com/AnshRaj112/clima-backend/internal/services"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(ip, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":51234"
	return req
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://clima.example.edu"})(okHandler)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
		req.Header.Set("Origin", "https://clima.example.edu")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://clima.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, requestFrom("10.0.0.1", "/"))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestGlobalRateLimit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := GlobalRateLimit(NewGlobalRateLimiter(clock))(okHandler)

	for i := range GlobalRateLimitBurst {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/weather"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/weather"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please slow down.", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.2", "/api/weather"))
	assert.Equal(t, http.StatusOK, rec.Code, "other IPs keep their own bucket")

	clock.Advance(time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/weather"))
	assert.Equal(t, http.StatusOK, rec.Code, "one token refills per second")
}

func TestLoginRateLimit_OnlyLoginPaths(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := LoginRateLimit(NewLoginRateLimiter(clock))(okHandler)

	for range LoginRateLimitBurst {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/admin/login"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/admin/login"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	for range 5 {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/feedback"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	clock.Advance(LoginRateLimitEvery)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/api/admin/login"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewGlobalRateLimiter(clock)

	l.Allow("10.0.0.1")
	clock.Advance(20 * time.Minute)
	l.Allow("10.0.0.2")
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, l.Sweep(limiterTTL))
	assert.Equal(t, 0, l.Sweep(limiterTTL))
}

func TestIPRateLimiter_RunCleanupStops(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewGlobalRateLimiter(clock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.RunCleanup(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestProductionSecurity(t *testing.T) {
	clock := clockwork.NewFakeClock()
	chain := ProductionSecurity(NewGlobalRateLimiter(clock), NewLoginRateLimiter(clock))
	require.Len(t, chain, 3)

	var h http.Handler = okHandler
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1", "/health"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

// counterRedis implements the redis.Cmdable subset used by RedisRateLimiter.
type counterRedis struct {
	redis.Cmdable

	mu      sync.Mutex
	counts  map[string]int64
	values  map[string]string
	expires map[string]time.Duration
	err     error
}

func newCounterRedis() *counterRedis {
	return &counterRedis{
		counts:  map[string]int64{},
		values:  map[string]string{},
		expires: map[string]time.Duration{},
	}
}

func (c *counterRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewIntResult(0, c.err)
	}
	c.counts[key]++
	return redis.NewIntResult(c.counts[key], nil)
}

func (c *counterRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (c *counterRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key], _ = value.(string)
	c.expires[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (c *counterRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewIntResult(0, c.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *counterRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisRateLimiter_BlocksAfterLimit(t *testing.T) {
	store := newCounterRedis()
	limiter := NewRedisRateLimiter(store, observability.DiscardLogger())
	h := limiter.Middleware(okHandler)

	for i := 1; i <= RateLimitMaxRequests; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.9", "/api/feedback"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		if i == 1 {
			assert.Equal(t, RateLimitWindow, store.expires[RateLimitKeyPrefix+"10.0.0.9"])
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.9", "/api/feedback"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))
	assert.Equal(t, BlockedIPDuration, store.expires[BlockedIPKeyPrefix+"10.0.0.9"])

	blocked, err := limiter.IsBlocked(context.Background(), "10.0.0.9")
	require.NoError(t, err)
	assert.True(t, blocked)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.9", "/api/feedback"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "temporarily blocked")

	require.NoError(t, limiter.Unblock(context.Background(), "10.0.0.9"))
	blocked, err = limiter.IsBlocked(context.Background(), "10.0.0.9")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRedisRateLimiter_Headers(t *testing.T) {
	h := NewRedisRateLimiter(newCounterRedis(), observability.DiscardLogger()).Middleware(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.3", "/api/weather"))
	assert.Equal(t, "25", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "24", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	store := newCounterRedis()
	store.err = assert.AnError
	h := NewRedisRateLimiter(store, observability.DiscardLogger()).Middleware(okHandler)

	for range RateLimitMaxRequests + 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.4", "/api/weather"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	creds, err := services.NewAdminCredentials("coordinacion", "clave-segura")
	require.NoError(t, err)
	auth := services.NewSessionAuthority("test-secret", creds, clock, false)

	var seen *services.AdminClaims
	h := RequireAdmin(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminFromContext(r.Context())
		require.True(t, ok)
		seen = claims
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/feedback", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", errorMessage(t, rec))
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/feedback", nil)
		req.AddCookie(&http.Cookie{Name: services.AdminSessionCookie, Value: "not-a-token"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		token, err := auth.Issue("coordinacion")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/feedback", nil)
		req.AddCookie(auth.SessionCookie(token))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "coordinacion", seen.Username)
	})

	t.Run("expired session", func(t *testing.T) {
		token, err := auth.Issue("coordinacion")
		require.NoError(t, err)
		clock.Advance(services.AdminSessionDuration + time.Second)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/feedback", nil)
		req.AddCookie(auth.SessionCookie(token))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	r := chi.NewRouter()
	r.Use(RequestLogger(observability.DiscardLogger(), metrics))
	r.Get("/api/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPRequestDuration))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}
