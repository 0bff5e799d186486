package middleware

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/gate"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/metrics"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
	"github.com/anirame128/fortnite-insight-dashboard/internal/utils"
)

// Cooldown guards the wrapped routes with one gate per caller session. The
// session is the X-Session-ID header, or the client IP without it.
//
// A 5xx outcome counts as a failed fetch, a 2xx as a success; anything else
// (bad input, unknown method) leaves the failure count alone. When the store
// itself fails the request is let through.
func Cooldown(store gate.Store, logger *logging.Logger) fiber.Handler {
	if logger == nil {
		logger = logging.Global()
	}

	return func(c *fiber.Ctx) error {
		session := sessionKey(c)
		ctx := logging.WithSessionID(c.UserContext(), session)
		c.SetUserContext(ctx)

		if err := store.Begin(ctx, session); err != nil {
			var cd *gate.CooldownError
			switch {
			case errors.As(err, &cd):
				metrics.ObserveGateRejection("cooldown")
				c.Set(utils.RetryAfterHeader, strconv.Itoa(cd.RetryAfterSeconds()))
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error:   cd.Message,
					Code:    services.CodeCooldown,
					Details: map[string]interface{}{"retry_after_seconds": cd.RetryAfterSeconds()},
				})
			case errors.Is(err, gate.ErrFetchInFlight):
				metrics.ObserveGateRejection("in_flight")
				return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
					Error: "A request for this session is already in progress",
					Code:  services.CodeFetchInFlight,
				})
			default:
				logger.Warn("Gate store unavailable, allowing request", "session", session, "error", err)
				return c.Next()
			}
		}

		settled := false
		defer func() {
			// panics are recovered further out; release the session first
			if !settled {
				store.Cancel(ctx, session)
			}
		}()

		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}

		settled = true
		switch {
		case status >= fiber.StatusInternalServerError:
			outcome := err
			if outcome == nil {
				outcome = fmt.Errorf("request failed with status %d", status)
			}
			var cd *gate.CooldownError
			if endErr := store.End(ctx, session, outcome); errors.As(endErr, &cd) {
				c.Set(utils.RetryAfterHeader, strconv.Itoa(cd.RetryAfterSeconds()))
			}
		case status < fiber.StatusBadRequest:
			if endErr := store.End(ctx, session, nil); endErr != nil {
				logger.Warn("Failed to record gate success", "session", session, "error", endErr)
			}
		default:
			store.Cancel(ctx, session)
		}

		return err
	}
}

func sessionKey(c *fiber.Ctx) string {
	if s := c.Get(utils.SessionHeader); s != "" {
		return s
	}
	return c.IP()
}

func errorStatus(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return services.StatusOf(err)
}
