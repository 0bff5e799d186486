package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
	"github.com/anirame128/fortnite-insight-dashboard/internal/utils"
)

// Stats handles stats lookups
// GET /v1/stats?code=XXXX-XXXX-XXXX&method=holt_winters
// GET /api/fortnite?code=XXXX-XXXX-XXXX
func (h *Handler) Stats(c *fiber.Ctx) error {
	code := c.Query("code")
	method := c.Query("method")

	ctx := logging.WithMapCode(c.UserContext(), code)
	c.SetUserContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	resp, err := h.statsService.Execute(ctx, &services.StatsRequest{
		MapCode: code,
		Method:  method,
	})
	if err != nil {
		if services.StatusOf(err) >= fiber.StatusInternalServerError {
			logging.ErrorCtx(ctx, "Stats request failed", "error", err)
		}
		return h.respondError(c, err)
	}

	return c.JSON(resp)
}
