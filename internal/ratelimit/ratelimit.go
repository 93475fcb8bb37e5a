package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"charge-relay/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// slidingWindow counts requests per key in a redis sorted set.
const slidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, ttl)
	return 1
end
return 0
`

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisRateLimiter connects to redisURL and allows limit requests per key
// within window.
func NewRedisRateLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisRateLimiterWithClient(ctx, redis.NewClient(opt), limit, window)
}

// NewRedisRateLimiterWithClient wraps an existing client. The limiter owns
// the client and closes it on Close.
func NewRedisRateLimiterWithClient(ctx context.Context, client *redis.Client, limit int, window time.Duration) (RateLimiter, error) {
	if window <= 0 {
		window = time.Minute
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()
	ttl := int64(math.Ceil(r.window.Seconds()))

	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	result, err := r.client.Eval(ctx, slidingWindow, []string{"ratelimit:webhook:" + key}, now, windowStart, r.limit, ttl, member).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return result == 1, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter always allows requests.
type NoOpRateLimiter struct{}

func (NoOpRateLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (NoOpRateLimiter) Close() error { return nil }

// Middleware rejects requests over the limit with 429, keyed by client IP.
// Limiter failures let the request through.
func Middleware(limiter RateLimiter, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter unavailable, allowing request", "client", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimitHits.Inc()
				metrics.WebhooksTotal.WithLabelValues("rate_limited").Inc()
				logger.Warn("Webhook rate limit exceeded", "client", key)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
