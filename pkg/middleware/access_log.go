package middleware

import (
	"time"

	"agent-falcon/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDKey is where the requestid middleware stores the id.
const RequestIDKey = "requestid"

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDKey).(string)
	return id
}

// AccessLog writes one line per request and records request metrics. Errors
// from later handlers are rendered here through the app's ErrorHandler so the
// logged status is the one the client receives.
func AccessLog(logger *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := routeLabel(c, status)

		m.ObserveRequest(c.Method(), route, status, elapsed)

		logger.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
			zap.String("request_id", RequestID(c)),
		)

		return nil
	}
}

// routeLabel keeps metric cardinality bounded: unmatched paths share one
// label.
func routeLabel(c *fiber.Ctx, status int) string {
	r := c.Route()
	if status == fiber.StatusNotFound && r.Method == "USE" {
		return "unmatched"
	}
	return r.Path
}
