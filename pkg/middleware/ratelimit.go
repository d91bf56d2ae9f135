package middleware

import (
	"math"
	"strconv"
	"time"

	"agent-falcon/internal/apperror"
	"agent-falcon/pkg/metrics"
	"agent-falcon/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	HeaderRateLimitLimit     = "RateLimit-Limit"
	HeaderRateLimitRemaining = "RateLimit-Remaining"
	HeaderRateLimitReset     = "RateLimit-Reset"
)

// KeyFunc picks the client identity a request is counted against.
type KeyFunc func(c *fiber.Ctx) string

// RateLimit counts every request against keyFunc(c). When the store fails
// the request is let through and the failure logged.
func RateLimit(limiter *ratelimit.Limiter, keyFunc KeyFunc, m *metrics.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFunc(c)

		res, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			m.IncLimiterError()
			logger.Error("Rate limiter unavailable, allowing request",
				zap.String("client", key),
				zap.Error(err),
			)
			return c.Next()
		}

		reset := resetSeconds(res.ResetAt, limiter.Window())
		c.Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
		c.Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
		c.Set(HeaderRateLimitReset, strconv.Itoa(reset))

		if !res.Allowed {
			m.IncRateLimited()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(reset))
			logger.Warn("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Path()),
				zap.Int("limit", res.Limit),
			)
			return apperror.RateLimited()
		}

		return c.Next()
	}
}

// resetSeconds is the whole number of seconds until resetAt, kept within
// [0, window].
func resetSeconds(resetAt time.Time, window time.Duration) int {
	secs := math.Ceil(time.Until(resetAt).Seconds())
	if secs < 0 {
		return 0
	}
	if limit := math.Ceil(window.Seconds()); secs > limit {
		return int(limit)
	}
	return int(secs)
}
