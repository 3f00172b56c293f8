package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/cache"
	"github.com/SAP-F-2025/qa-compliance-service/internal/config"
	"github.com/SAP-F-2025/qa-compliance-service/internal/handlers"
	"github.com/SAP-F-2025/qa-compliance-service/internal/library"
	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
	"github.com/SAP-F-2025/qa-compliance-service/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewSlog(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := library.Load(cfg.LibraryPath)
	if err != nil {
		return err
	}

	reportCache := newReportCache(ctx, cfg, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	v := validator.New()
	serviceManager, err := services.NewServiceManager(services.Dependencies{
		Library:              lib,
		Validator:            v,
		Cache:                reportCache,
		Publisher:            publisher,
		Logger:               logger,
		DefaultDueDays:       cfg.DefaultDueDays,
		RecurrenceWindowDays: cfg.RecurrenceWindowDays,
		ReportCacheTTL:       cfg.ReportCacheTTL,
	})
	if err != nil {
		return err
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := utils.NewSlogLogger(logger)
	router := handlers.NewRouter(handlers.NewHandlerManager(serviceManager, v, appLogger), appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newReportCache connects to Redis when REDIS_URL is set and falls back to
// an in-process cache otherwise.
func newReportCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.CacheService {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-memory report cache")
		return cache.NewMemoryCache()
	}
	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory report cache", "error", err)
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(client, logger)
}
