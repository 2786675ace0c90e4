package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/handlers"
)

// AttemptCounter counts attempts within a sliding window scoped by identifier.
type AttemptCounter interface {
	Hit(ctx context.Context, identifier string, window time.Duration, at time.Time) (int, error)
}

// RateLimitRule configures a sliding-window limit keyed by client IP.
type RateLimitRule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimiter enforces per-IP request limits backed by an AttemptCounter.
type RateLimiter struct {
	store  AttemptCounter
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store AttemptCounter, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock allows injection of a custom clock for testing.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// RateLimit returns a Gin middleware enforcing the provided rule. Store
// failures let the request through rather than blocking traffic.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || rule.Limit <= 0 || rule.Window <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", rule.Name, ip)
		count, err := rl.store.Hit(c.Request.Context(), key, rule.Window, rl.now())
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		if count > rule.Limit {
			retryAfter := int(rule.Window.Seconds())
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				handlers.NewErrorResponse(c, http.StatusTooManyRequests, "Too Many Requests",
					fmt.Sprintf("too many requests, try again in %d seconds", retryAfter)))
			return
		}

		c.Next()
	}
}
