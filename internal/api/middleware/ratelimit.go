package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"credit-system/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "credit-system:ratelimit:"

// limiter decides whether the client identified by key may proceed.
type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RateLimiterMiddleware struct {
	limiter limiter
	cfg     config.RateLimitConfig
	logger  *slog.Logger
}

// NewRateLimiterMiddleware counts requests in Redis when a client is given so that
// every replica shares one budget per IP. Without Redis each process keeps its own token buckets.
func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")
	rl := &RateLimiterMiddleware{cfg: cfg, logger: logger}

	switch {
	case !cfg.Enabled:
		logger.Info("Rate limiting is disabled via configuration.")
	case redisClient != nil:
		logger.Info("Rate limiter backed by Redis", "rps", cfg.RPS, "window", time.Second)
		rl.limiter = newRedisLimiter(redisClient, cfg, time.Second)
	default:
		logger.Info("Rate limiter backed by in-process token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
		rl.limiter = newLocalLimiter(cfg)
	}
	return rl
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled && rl.limiter != nil
}

// extractIP keys on RemoteAddr only. Proxy headers reach it solely through chi's
// RealIP, which the router mounts when server.trustProxyHeaders is set.
func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed, err := rl.limiter.Allow(r.Context(), ip)
		if err != nil {
			// Fail open when the counter is unavailable.
			rl.logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"title":  "Too many requests",
				"status": http.StatusTooManyRequests,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

type localLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
	return &localLimiter{limit: rate.Limit(cfg.RPS), burst: cfg.Burst}
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	return v.(*rate.Limiter).Allow(), nil
}

// prune drops buckets that have refilled completely.
func (l *localLimiter) prune() {
	l.limiters.Range(func(key, value interface{}) bool {
		lim := value.(*rate.Limiter)
		if lim.Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// StartCleanup prunes idle buckets until ctx is done.
func (rl *RateLimiterMiddleware) StartCleanup(ctx context.Context, every time.Duration) {
	local, ok := rl.limiter.(*localLimiter)
	if !ok {
		return
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				local.prune()
			}
		}
	}()
}

// redisLimiter is a fixed window counter: INCR the per-IP key and start its TTL on first hit.
type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func newRedisLimiter(client *redis.Client, cfg config.RateLimitConfig, window time.Duration) *redisLimiter {
	limit := int64(cfg.RPS * window.Seconds())
	if limit < 1 {
		limit = 1
	}
	return &redisLimiter{client: client, limit: limit, window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	ttlCmd := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline: %w", err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if ttl, err := ttlCmd.Result(); err == nil && ttl < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}

	return count <= l.limit, nil
}
