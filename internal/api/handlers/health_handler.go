package handlers

import (
	"agent-falcon/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Health godoc
// @Summary Health check
// @Description Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /healthz [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok"})
}
