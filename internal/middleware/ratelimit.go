package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/pkg/clientip"
)

const (
	// RateLimitWindow is the fixed window for the shared Redis limit
	RateLimitWindow = time.Minute
	// RateLimitMaxRequests per IP per window across all instances
	RateLimitMaxRequests = 300
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding the window
	BlockedIPDuration = 10 * time.Minute
)

// RedisRateLimiter is a fixed-window per-IP limit shared by every instance through
// Redis. A nil client or any Redis failure lets the request through.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	block  time.Duration
	log    logrus.FieldLogger
}

func NewRedisRateLimiter(client *redis.Client, log logrus.FieldLogger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  RateLimitMaxRequests,
		window: RateLimitWindow,
		block:  BlockedIPDuration,
		log:    log,
	}
}

func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.client == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.RealClientIP(r)
		blockedKey := BlockedIPKeyPrefix + ip

		blocked, err := l.client.Exists(ctx, blockedKey).Result()
		if err != nil {
			l.log.WithError(err).Warn("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if blocked > 0 {
			writeError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		key := clientip.Key("global", r)
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.log.WithError(err).Warn("rate limit increment failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}
		if count > l.limit {
			if err := l.client.Set(ctx, blockedKey, "1", l.block).Err(); err != nil {
				l.log.WithError(err).Warn("failed to block ip")
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(l.block.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(l.limit-count, 10))
		next.ServeHTTP(w, r)
	})
}
