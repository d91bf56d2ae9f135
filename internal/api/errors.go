package api

import (
	"errors"

	"agent-falcon/internal/apperror"
	"agent-falcon/internal/dto"
	"agent-falcon/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the only place failure bodies are written. devMode adds the
// captured stack and, for non-validation errors, the cause text.
func ErrorHandler(logger *zap.Logger, devMode bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := apperror.FromError(err)

		body := dto.ErrorBody{
			Status:  appErr.Status,
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		if appErr.Details != nil {
			body.Details = appErr.Details
		}

		if devMode {
			body.Stack = appErr.Stack()
			if !appErr.IsValidation() {
				if cause := errors.Unwrap(appErr); cause != nil {
					body.Details = cause.Error()
				}
			}
		}

		fields := []zap.Field{
			zap.Int("status", appErr.Status),
			zap.String("message", appErr.Message),
			zap.String("code", appErr.Code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.RequestID(c)),
		}
		if appErr.Status >= fiber.StatusInternalServerError {
			logger.Error("Request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Warn("Request rejected", fields...)
		}

		return c.Status(appErr.Status).JSON(dto.ErrorEnvelope{Error: body})
	}
}
