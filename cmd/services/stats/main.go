package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/extraction"
	"github.com/anirame128/fortnite-insight-dashboard/internal/gate"
	"github.com/anirame128/fortnite-insight-dashboard/internal/handlers"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/queue"
	"github.com/anirame128/fortnite-insight-dashboard/internal/router"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
	"github.com/anirame128/fortnite-insight-dashboard/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Stats service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Create context for background services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Queue (optional, empty type disables event publishing)
	var events *queue.EventPublisher
	queueClient, err := queue.NewQueue(cfg.Queue)
	switch {
	case errors.Is(err, queue.ErrDisabled):
		logger.Info("Event publishing disabled")
	case err != nil:
		logger.Fatal("Failed to connect to Queue", "type", cfg.Queue.Type, "error", err)
	default:
		events = queue.NewEventPublisher(queueClient, cfg.Queue)
		defer func() { _ = events.Close() }()
		logger.Info("Queue connection established",
			"type", cfg.Queue.Type, "subject", cfg.Queue.Subject, "compress", cfg.Queue.Compress)
	}

	// Setup per-session cooldown gate
	var gateStore gate.Store
	gateStoreName := ""
	if cfg.Gate.Enabled {
		gateStore, err = gate.NewStore(cfg.Gate, logger)
		if err != nil {
			logger.Fatal("Failed to create gate store", "store", cfg.Gate.Store, "error", err)
		}
		defer func() { _ = gateStore.Close() }()
		gateStoreName = cfg.Gate.Store

		if mem, ok := gateStore.(*gate.MemoryStore); ok {
			go sweepSessions(ctx, mem, logger)
		}
		logger.Info("Cooldown gate enabled",
			"store", cfg.Gate.Store, "max_failures", cfg.Gate.MaxFailures, "cooldown", cfg.Gate.Cooldown.String())
	} else {
		logger.Warn("Cooldown gate DISABLED - failing upstream lookups will not be throttled")
	}

	client := extraction.NewHTTPClient(cfg.Upstream, logger)
	statsService := services.NewStatsService(logger, client, cfg.Stats, events)

	// Initialize router
	app := router.New(router.Deps{
		Logger:       logger,
		StatsService: statsService,
		GateStore:    gateStore,
		Info: handlers.Info{
			Version:   Version,
			Queue:     cfg.Queue.Type,
			GateStore: gateStoreName,
		},
	}, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr, "upstream", client.String())
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// sweepSessions drops idle in-memory gate sessions until ctx is done
func sweepSessions(ctx context.Context, store *gate.MemoryStore, logger *logging.Logger) {
	ticker := time.NewTicker(utils.GateSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(utils.GateSessionIdle); n > 0 {
				logger.Debug("Swept idle gate sessions", "removed", n, "remaining", store.Len())
			}
		}
	}
}
