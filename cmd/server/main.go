package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dalfonso89/currency-converter/internal/api"
	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/metrics"
	"github.com/dalfonso89/currency-converter/internal/platform"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.LogLevel)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatalf("Server stopped with error: %v", err)
	}

	appLogger.Info("Server exited")
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	apiURL, err := cfg.RatesURL()
	if err != nil {
		return err
	}

	collector := metrics.New()

	// A zero timeout leaves the client without a deadline, like the desktop shell
	converterService := service.NewConverterService(service.ServiceConfig{
		HTTPClient: &http.Client{Timeout: cfg.Rates.HTTPTimeout},
		APIURL:     apiURL,
		Logger:     appLogger,
		Recorder:   collector,
	})
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimit, appLogger)
	defer rateLimiter.Stop()

	gin.SetMode(gin.ReleaseMode)
	handlers := api.NewHandlers(api.HandlerConfig{
		Logger:           appLogger,
		ConverterService: converterService,
		RateLimiter:      rateLimiter,
		MetricsHandler:   collector.Handler(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Create a shutdown context that works across platforms
	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()

	group, groupCtx := errgroup.WithContext(shutdownCtx)

	group.Go(func() error {
		appLogger.Info("Starting currency converter on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})

	if cfg.Rates.RefreshOnStart {
		group.Go(func() error {
			outcome := converterService.Refresh(groupCtx)
			if !outcome.Succeeded() {
				appLogger.Warnf("Startup refresh failed, converting with identity fallback: %v", outcome.Err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Shutting down server...")

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return errors.Wrap(server.Shutdown(ctx), "shutdown")
	})

	return group.Wait()
}
