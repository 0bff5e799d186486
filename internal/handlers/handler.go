package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

// Info describes the running instance for the health endpoint
type Info struct {
	Version   string
	Queue     string // configured queue type, empty when publishing is off
	GateStore string // memory or redis, empty when the gate is off
}

// Handler contains all HTTP handlers
type Handler struct {
	logger       *logging.Logger
	statsService *services.StatsService
	info         Info
}

// New creates a new handler instance
func New(logger *logging.Logger, statsService *services.StatsService, info Info) *Handler {
	if logger == nil {
		logger = logging.Global()
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}
	return &Handler{
		logger:       logger,
		statsService: statsService,
		info:         info,
	}
}

// respondError renders err as an ErrorResponse. ServiceErrors keep their
// status and code; anything else is a 500 with a generic message.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return c.Status(services.StatusOf(svcErr)).JSON(models.ErrorResponse{
			Error:   svcErr.Message,
			Code:    svcErr.Code,
			Details: svcErr.Details,
		})
	}

	logging.FromContext(c.UserContext()).Error("Unhandled handler error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "Internal Server Error",
		Code:  services.CodeInternal,
	})
}
