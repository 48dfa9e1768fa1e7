package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundlens/fundlens-go/internal/api"
	"github.com/fundlens/fundlens-go/internal/cache"
	"github.com/fundlens/fundlens-go/internal/config"
	"github.com/fundlens/fundlens-go/internal/database"
	"github.com/fundlens/fundlens-go/internal/handlers"
	"github.com/fundlens/fundlens-go/internal/services"
	"github.com/fundlens/fundlens-go/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local overrides; missing .env is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize telemetry first
	if err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		Enabled:        cfg.Telemetry.Enabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
	}); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown telemetry: %v\n", err)
		}
	}()

	// Structured logger for lifecycle events
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Logrus logger for services
	logrusLogger := logrus.New()
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrusLogger.SetLevel(level)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logrusLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logrusLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	// Report cache
	reportTTL, err := time.ParseDuration(cfg.Redis.ReportTTL)
	if err != nil {
		reportTTL = 15 * time.Minute
	}
	reportCache := cache.NewReportCache(redis.Client, reportTTL)

	// Repository and engine
	repo := database.NewFundRepository(db.Pool)
	calculator := services.NewMetricsCalculatorWithConfig(
		cfg.Analytics.RiskFreeRate,
		cfg.Analytics.VaRConfidence,
	)
	engine := services.NewComplianceEngine(cfg.Compliance, calculator, logrusLogger)
	trendAnalyzer := services.NewTrendAnalyzer(logrusLogger)
	notifier := services.NewAlertNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logrusLogger)

	complianceHandler := handlers.NewComplianceHandler(
		repo, engine, calculator, trendAnalyzer, reportCache, notifier, logrusLogger,
	)

	// Setup Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))

	// Setup routes
	api.SetupRoutes(router, db, redis, complianceHandler)

	// Create HTTP server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Application startup",
			"service", cfg.Telemetry.ServiceName,
			"version", cfg.Telemetry.ServiceVersion,
			"port", cfg.Server.Port,
			"event", "startup",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrusLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Application shutdown",
		"service", cfg.Telemetry.ServiceName,
		"event", "shutdown",
		"reason", "signal received",
	)

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrusLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	logrusLogger.Info("Server exited gracefully")
	return nil
}
