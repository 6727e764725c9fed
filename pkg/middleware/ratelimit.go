package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// visitor tracks a token bucket per client.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process per-client token bucket limiter. Stale
// visitors are evicted periodically until the context passed to
// NewLocalLimiter is cancelled.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      int
	burst    int
	ttl      time.Duration
	nowFunc  func() time.Time
}

// NewLocalLimiter creates a LocalLimiter allowing rps requests per second
// with the given burst per client.
func NewLocalLimiter(ctx context.Context, rps, burst int) *LocalLimiter {
	const cleanupInterval = 3 * time.Minute

	l := newLocalLimiter(rps, burst, cleanupInterval)
	go l.cleanupLoop(ctx)
	return l
}

func newLocalLimiter(rps, burst int, ttl time.Duration) *LocalLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

// Allow reports whether the client identified by key has a token available.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.getVisitor(key).Allow(), nil
}

func (l *LocalLimiter) getVisitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.nowFunc()
	return v.limiter
}

func (l *LocalLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup evicts visitors whose lastSeen is older than the TTL.
func (l *LocalLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}

func (l *LocalLimiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RedisLimiter is a fixed-window counter shared by every instance using the
// same Redis. Each window allows at most limit requests per key.
type RedisLimiter struct {
	client  *redis.Client
	limit   int64
	window  time.Duration
	prefix  string
	nowFunc func() time.Time
}

// NewRedisLimiter creates a RedisLimiter with a one second window.
func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RedisLimiter{
		client:  client,
		limit:   int64(limit),
		window:  time.Second,
		prefix:  "storefront:ratelimit",
		nowFunc: time.Now,
	}
}

// Allow increments the counter of the current window for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.nowFunc().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, 2*l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// RateLimit returns middleware that rejects requests over the limiter's
// budget with 429. Limiter failures let the request through.
func RateLimit(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					slog.String("ip", ip),
					slog.String("error", err.Error()),
				)
				allowed = true
			}

			if !allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, apperrors.RateLimited(), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client IP, preferring the first X-Forwarded-For
// entry, then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	return clientHost(r)
}
