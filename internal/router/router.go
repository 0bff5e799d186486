package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/gate"
	"github.com/anirame128/fortnite-insight-dashboard/internal/handlers"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/metrics"
	"github.com/anirame128/fortnite-insight-dashboard/internal/middleware"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

// Deps are the collaborators the routes are built from. GateStore may be nil,
// which leaves the stats routes unguarded.
type Deps struct {
	Logger       *logging.Logger
	StatsService *services.StatsService
	GateStore    gate.Store
	Info         handlers.Info
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, deps Deps, cfg config.Config) *handlers.Handler {
	logger := deps.Logger

	// Create handler instance
	h := handlers.New(logger, deps.StatsService, deps.Info)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID,X-Session-ID",
		ExposeHeaders: "Retry-After,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))
	if cfg.Metrics.Enabled {
		app.Use(metrics.FiberMiddleware())
		app.Get(cfg.Metrics.Path, metrics.Handler())
	}

	// Health check
	app.Get("/health", h.Health)

	statsChain := []fiber.Handler{}
	if deps.GateStore != nil {
		statsChain = append(statsChain, middleware.Cooldown(deps.GateStore, logger))
	}
	statsChain = append(statsChain, h.Stats)

	// API v1 routes
	v1 := app.Group("/v1")
	v1.Get("/stats", statsChain...)

	// Path the dashboard front end calls
	app.Get("/api/fortnite", statsChain...)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(deps Deps, cfg config.Config) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = logging.Global()
	}

	app := fiber.New(fiber.Config{
		AppName:               "Fortnite Insight Stats",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(deps.Logger),
	})

	Setup(app, deps, cfg)

	return app
}
