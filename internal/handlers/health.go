package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics/forecast"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().Format(time.RFC3339),
		Version:     h.info.Version,
		Queue:       h.info.Queue,
		GateStore:   h.info.GateStore,
		Forecasters: forecast.ListForecasters(),
	})
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error:   "Route not found",
		Code:    services.CodeNotFound,
		Details: map[string]interface{}{"path": c.Path()},
	})
}
