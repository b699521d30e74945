package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/serenify-care/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerReferrerPolicy, "no-referrer")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// KeyedLimiter holds one token bucket per key (client IP or user id) and forgets
// keys idle longer than ttl.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

func NewKeyedLimiter(limit rate.Limit, burst int, ttl time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
	}
}

// Allow consumes one token for key.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = time.Now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// Cleanup drops idle keys every interval until ctx ends.
func (l *KeyedLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(time.Now())
		}
	}
}

func (l *KeyedLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if now.Sub(e.lastUse) > l.ttl {
			delete(l.entries, k)
		}
	}
}

func (l *KeyedLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

const (
	globalRateLimitRPS   = 5
	globalRateLimitBurst = 20
	loginRateLimitEvery  = 5 * time.Second
	loginRateLimitBurst  = 3
	limiterTTL           = 30 * time.Minute
	limiterCleanup       = 5 * time.Minute
)

// IPRateLimit returns 429 with message once the client IP exceeds l.
func IPRateLimit(l *KeyedLimiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Limiters are the in-process per-IP limiters used in production.
type Limiters struct {
	Global *KeyedLimiter
	Login  *KeyedLimiter
}

// NewLimiters builds the global and login limiters and starts their cleanup loops.
func NewLimiters(ctx context.Context) *Limiters {
	l := &Limiters{
		Global: NewKeyedLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst, limiterTTL),
		Login:  NewKeyedLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst, limiterTTL),
	}
	go l.Global.Cleanup(ctx, limiterCleanup)
	go l.Login.Cleanup(ctx, limiterCleanup)
	return l
}

// GlobalRateLimit limits every request per client IP.
func (l *Limiters) GlobalRateLimit(next http.Handler) http.Handler {
	return IPRateLimit(l.Global, "Too many requests. Please slow down.")(next)
}

// LoginRateLimit is mounted on the login route only.
func (l *Limiters) LoginRateLimit(next http.Handler) http.Handler {
	return IPRateLimit(l.Login, "Too many login attempts. Please try again later.")(next)
}
