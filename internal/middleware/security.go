package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/clima-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Global limit: 1 req/s per IP, burst 10. Login limit: 1 req/5s per IP, burst 2.
const (
	GlobalRateLimitRPS   = 1
	GlobalRateLimitBurst = 10
	LoginRateLimitEvery  = 5 * time.Second
	LoginRateLimitBurst  = 2

	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

var loginPaths = map[string]bool{
	"/api/admin/login": true,
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	clock   clockwork.Clock
}

// NewIPRateLimiter creates a per-IP limiter. A nil clock uses the real clock.
func NewIPRateLimiter(limit rate.Limit, burst int, clock clockwork.Clock) *IPRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		clock:   clock,
	}
}

// NewGlobalRateLimiter returns the production per-IP limiter.
func NewGlobalRateLimiter(clock clockwork.Clock) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(GlobalRateLimitRPS), GlobalRateLimitBurst, clock)
}

// NewLoginRateLimiter returns the stricter limiter for sign-in routes.
func NewLoginRateLimiter(clock clockwork.Clock) *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(LoginRateLimitEvery), LoginRateLimitBurst, clock)
}

// Allow reports whether ip may make a request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Sweep drops limiters idle for longer than ttl and returns how many were removed.
func (l *IPRateLimiter) Sweep(ttl time.Duration) int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > ttl {
			delete(l.entries, ip)
			removed++
		}
	}
	return removed
}

// RunCleanup sweeps idle limiters periodically until ctx is done.
func (l *IPRateLimiter) RunCleanup(ctx context.Context) {
	ticker := l.clock.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			l.Sweep(limiterTTL)
		}
	}
}

// GlobalRateLimit rejects requests over the per-IP limit with 429.
func GlobalRateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit applies l to sign-in routes only. Use after GlobalRateLimit.
func LoginRateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !loginPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(global, login *IPRateLimiter) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit(global),
		LoginRateLimit(login),
	}
}
