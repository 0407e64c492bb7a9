// @title Price Comparator API
// @version 1.0
// @description Compares grocery prices across stores: basket optimization, price history, discounts, substitutes and price alerts.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kosarica/price-comparator/config"
	_ "github.com/kosarica/price-comparator/docs"
	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/handlers"
	"github.com/kosarica/price-comparator/internal/middleware"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/sweepers"
	"github.com/kosarica/price-comparator/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting price comparator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, dbURL); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		logger.Info().Msg("Database schema applied")
	}

	if err := database.Connect(ctx, database.PoolConfig{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	repo := database.NewRepository(database.Pool())
	cache := optimizer.NewFactCache(repo, &cfg.Optimizer)
	if err := cache.Warmup(ctx); err != nil {
		// The refresh loop keeps retrying; handlers answer 503 until a load succeeds.
		logger.Error().Err(err).Msg("Initial price snapshot load failed")
	}
	cache.StartRefreshLoop()
	defer cache.Close()

	svc := optimizer.NewService(cache, &cfg.Optimizer)
	handlers.Init(svc, cache, repo, repo)

	var alertSweeper *sweepers.AlertSweeper
	if cfg.Alerts.Enabled {
		alertSweeper = sweepers.NewAlertSweeper(repo, svc, logger, cfg.Alerts.Interval, cfg.Alerts.Concurrency)
		go alertSweeper.Start(ctx)
	}

	router := newRouter(ctx, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("Shutting down server...")
	if alertSweeper != nil {
		alertSweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

func newRouter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := router.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	api.Use(middleware.RateLimitMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
		IdleTTL:           middleware.DefaultRateLimiterConfig().IdleTTL,
	}))
	handlers.RegisterRoutes(api)

	return router
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "price-comparator").Logger()
	// Packages that log through the global logger pick up the same output.
	log.Logger = logger
	return &logger
}
