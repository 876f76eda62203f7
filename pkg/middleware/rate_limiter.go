package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting per identity
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(key)
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Store(key, limiter)
	}
	return limiter.(*rate.Limiter)
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware returns an Echo middleware function for rate limiting.
// Authenticated requests are limited per provider uid, everything else per
// client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if uid := UIDFromContext(c); uid != "" {
				key = "user:" + uid
			}

			limiter := rl.getLimiter(key)

			// Check rate limit
			if !limiter.Allow() {
				// Add rate limit headers
				c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("Retry-After", "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			// Add rate limit headers for successful requests
			tokens := int(limiter.Tokens())
			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", tokens))

			return next(c)
		}
	}
}
