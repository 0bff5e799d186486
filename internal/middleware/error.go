package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

// ErrorHandler returns a custom error handler middleware. ServiceErrors keep
// their status, code and message; fiber errors keep their status; anything
// else becomes a 500 without leaking the cause.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		resp := models.ErrorResponse{
			Error: "Internal Server Error",
			Code:  services.CodeInternal,
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			code = services.StatusOf(svcErr)
			resp = models.ErrorResponse{Error: svcErr.Message, Code: svcErr.Code, Details: svcErr.Details}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			resp = models.ErrorResponse{Error: fiberErr.Message, Code: codeForStatus(fiberErr.Code)}
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("Request error", fields...)
		} else {
			logger.Warn("Request error", fields...)
		}

		return c.Status(code).JSON(resp)
	}
}

// codeForStatus turns an HTTP status into an error code, e.g. 404 NOT_FOUND
func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
