package middleware

import (
	"agent-falcon/internal/apperror"
	"agent-falcon/pkg/auth"
	"agent-falcon/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIKeyHeader carries the caller's key. Header lookup is case-insensitive.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose key does not match the configured one. With
// no key configured every request passes.
func APIKey(authenticator *auth.KeyAuthenticator, m *metrics.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(APIKeyHeader)

		if decision := authenticator.Check(provided); !decision.Allowed() {
			m.IncAuthFailure()
			logger.Warn("Rejected request with invalid API key",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Bool("key_present", provided != ""),
				zap.String("request_id", RequestID(c)),
			)
			return apperror.Unauthorized()
		}

		return c.Next()
	}
}
