package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BiggBoiLeo/Rothbard-Backend/config"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/api"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/billing"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/database"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/identity"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/logger"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/metrics"
	middlewares "github.com/BiggBoiLeo/Rothbard-Backend/internal/middleware"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/ratelimit"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting Rothbard backend",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
		"stripe_env", cfg.Stripe.Environment,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize account store
	accountStore := store.New(db)

	// Identity token verification
	verifier := identity.NewTokenVerifier(cfg.Identity)

	// Payment processor gateway
	gateway := billing.NewStripeGateway(cfg.Stripe)

	// Redis-backed throttling, when configured
	var limiter *ratelimit.Manager
	if cfg.Redis.URL != "" {
		limiter, err = ratelimit.NewManager(cfg.Redis.URL, cfg.Redis.RequestsPerMinute)
		if err != nil {
			logger.Fatal("Failed to initialize rate limiter", "error", err)
		}
		defer limiter.Close()
		logger.Info("Redis rate limiting enabled", "requests_per_minute", cfg.Redis.RequestsPerMinute)
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.RedisThrottle(limiter))

	// Initialize API handlers
	apiHandler := api.NewHandler(accountStore, verifier, gateway, cfg.Stripe, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
