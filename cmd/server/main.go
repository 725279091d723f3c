package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/api"
	"github.com/jstittsworth/streamer-hq/internal/api/handlers"
	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/providers"
	"github.com/jstittsworth/streamer-hq/internal/services"
	"github.com/jstittsworth/streamer-hq/internal/streamer"
	"github.com/jstittsworth/streamer-hq/pkg/config"
	"github.com/jstittsworth/streamer-hq/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logrus.New()
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := models.Migrate(db.DB); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Snapshot storage: redis when reachable, in-process otherwise. The
	// in-process store loses history on restart but keeps the service up.
	var snapshotStore services.SnapshotStore
	cache, err := services.NewCacheService(cfg.RedisURL, logger)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, snapshots held in memory only")
		snapshotStore = services.NewMemorySnapshotStore()
	} else {
		defer cache.Close()
		snapshotStore = services.NewRedisSnapshotStore(cache)
	}

	breakers := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, logger)

	espn := providers.NewESPNClient(cfg.ExternalAPITimeout, cfg.ESPNRateLimit, cfg.SampleOddsFallback, logger)
	weatherClient := providers.NewOpenMeteoClient(cfg.ExternalAPITimeout, logger)
	rankingsClient := providers.NewSportsDataIOClient(cfg.SportsDataIOAPIKey, cfg.ExternalAPITimeout, 30, logger)
	sleeper := providers.NewSleeperClient(cfg.ExternalAPITimeout, cfg.SleeperRateLimit, logger)

	manualStats := services.NewManualStatService(db.DB)
	weightStore := services.NewWeightService(db.DB)
	refreshLog := services.NewRefreshLogService(db.DB, logger)

	engine := streamer.NewEngine(
		espn, weatherClient, rankingsClient, sleeper, manualStats, weightStore,
		logger,
		streamer.WithCircuitExecutor(breakers),
		streamer.WithAdapterTimeout(cfg.ExternalAPITimeout),
	)

	controller := services.NewRefreshController(snapshotStore, engine, cfg.SnapshotTTL, logger)
	controller.SetRecorder(refreshLog)

	hub := services.NewWebSocketHub(logger)
	controller.SetNotifier(hub)

	var scheduler *services.SchedulerService
	if cfg.EnableBackgroundJobs {
		scheduler = services.NewSchedulerService(controller, espn, logger)
		if err := scheduler.Start(cfg.AutoRefreshSchedule); err != nil {
			logger.WithError(err).Fatal("Failed to start background jobs")
		}
		defer scheduler.Stop()
	}

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET is empty, cron endpoints are unauthenticated")
	}

	router := api.NewRouter(cfg, api.Handlers{
		Streamers: handlers.NewStreamerHandler(controller, snapshotStore, espn, espn, logger),
		Admin:     handlers.NewAdminHandler(weightStore, manualStats, refreshLog),
		System:    handlers.NewSystemHandler(breakers, scheduler, hub, espn, logger),
	}, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.Env,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
