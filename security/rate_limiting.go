package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// PurchaseRateLimit caps purchase-endpoint requests per client per window.
func (r *RateLimiter) PurchaseRateLimit(max int64, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.RealIP()
		if e.Auth != nil {
			id = fmt.Sprintf("user:%s", e.Auth.Id)
		}
		key := fmt.Sprintf("ratelimit:purchase:%s", id)

		if !r.allow(e.Request.Context(), key, max, window) {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return e.Next()
	}
}

// AntiBotMiddleware blocks obvious scraper user agents and throttles
// request bursts per IP.
func (r *RateLimiter) AntiBotMiddleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		userAgent := e.Request.Header.Get("User-Agent")
		if isSuspiciousUserAgent(userAgent) {
			return e.JSON(http.StatusForbidden, map[string]string{
				"error": "Access denied",
			})
		}

		ip := e.RealIP()
		key := fmt.Sprintf("antibot:%s", ip)

		// Max 30 requests per minute
		if !r.allow(e.Request.Context(), key, 30, time.Minute) {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests",
			})
		}

		return e.Next()
	}
}

// allow counts one request against key and reports whether the count is
// still within max for the window. Redis errors fail open.
func (r *RateLimiter) allow(ctx context.Context, key string, max int64, window time.Duration) bool {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}
	return count <= max
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
