package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"devmon/internal/config"
	"devmon/internal/logger"
	"devmon/internal/middleware"
	"devmon/internal/routes"
	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	appLogger := logger.NewLogger()
	logger.SetDefaultLogger(appLogger)

	configPath := "devmon.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.Error("failed to load configuration", "path", configPath, "err", err)
		return err
	}

	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Services
	middleware.NewSecurityLogger()
	services.InitAuthService("", 24*time.Hour)
	services.InitSettingsService(cfg.SettingsPath)
	services.InitRecommendationService(cfg.Gemini.APIKey, cfg.Gemini.Model, appLogger.Logger)

	history, err := services.InitHistoryService(cfg.HistoryDB, cfg.HistoryRetention.Std())
	if err != nil {
		appLogger.Error("failed to open history database", "path", cfg.HistoryDB, "err", err)
		return err
	}
	defer history.Close()

	// The sampler starts when the first UI client connects and stops when
	// the last one leaves; the hub owns that lifecycle.
	sampler := services.NewSampler(services.NewSystemSource(), services.NewDesktopNotifier())
	services.InitWebSocketHub(sampler)
	defer services.StopWebSocketHub()

	// Router
	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter()))

	routes.RegisterMetricRoutes(r)
	routes.RegisterProcessRoutes(r)
	routes.RegisterAdvisorRoutes(r)
	routes.RegisterAuthRoutes(r, middleware.NewTokenRateLimiter())

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: r,
	}

	appLogger.Info("devmon listening", "addr", cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		appLogger.Error("server failed", "err", err)
		return err
	case <-sigCtx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
