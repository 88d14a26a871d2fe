package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketboard/marketboard-go/internal/api"
	"github.com/marketboard/marketboard-go/internal/cache"
	"github.com/marketboard/marketboard-go/internal/config"
	"github.com/marketboard/marketboard-go/internal/logging"
	"github.com/marketboard/marketboard-go/internal/marketdata"
	"github.com/marketboard/marketboard-go/internal/middleware"
	"github.com/marketboard/marketboard-go/internal/models"
	"github.com/marketboard/marketboard-go/internal/services"
	"github.com/marketboard/marketboard-go/internal/telemetry"
	"github.com/marketboard/marketboard-go/internal/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize telemetry first
	ctx := context.Background()
	if err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
	}); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown telemetry")
		}
	}()

	// Initialize the snapshot cache when configured. A missing Redis is a
	// warning, not a startup failure: the tables rebuild from source files.
	var redisClient *cache.RedisClient
	var snapshots *cache.SnapshotCache
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisConnection(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Snapshot cache unavailable, rebuilding tables from source files")
			redisClient = nil
		} else {
			defer redisClient.Close()
			snapshots = cache.NewSnapshotCache(redisClient.Client, cfg.CacheTTL(), logger)
		}
	}

	// Build the aligned table once at startup. Every request serves from it.
	table, err := buildAlignedTable(ctx, cfg, logger, snapshots)
	if err != nil {
		var unavailable *utils.DataUnavailableError
		if errors.As(err, &unavailable) {
			logger.WithField("path", unavailable.Path).Error("Series data is unavailable, check the configured series paths")
		}
		return err
	}

	dashboard := services.NewDashboardService(table, services.DashboardOptions{
		PrimaryLabel:   cfg.Series.Primary.Label,
		SecondaryLabel: cfg.Series.Secondary.Label,
		Currency:       cfg.Series.Primary.Currency,
		ChartHeight:    cfg.Dashboard.ChartHeight,
		TableLimit:     cfg.Dashboard.TableLimit,
	}, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))

	// Setup routes
	api.SetupRoutes(router, dashboard, redisClient, cfg.Telemetry.ServiceVersion, logger)

	// Create HTTP server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeoutDuration(),
		WriteTimeout:      cfg.WriteTimeoutDuration(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"service": cfg.Telemetry.ServiceName,
			"version": cfg.Telemetry.ServiceVersion,
			"port":    cfg.Server.Port,
			"rows":    table.Len(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}

// buildAlignedTable produces the table the dashboard serves: both series
// loaded, resampled to hourly buckets and joined on the primary's
// timestamps. When a snapshot cache is available it is consulted first and
// refreshed after a rebuild.
func buildAlignedTable(ctx context.Context, cfg *config.Config, logger *logrus.Logger, snapshots *cache.SnapshotCache) (*models.AlignedTable, error) {
	tracer := telemetry.Tracer("marketboard/startup")
	ctx, span := tracer.Start(ctx, "startup.build_aligned_table")
	defer span.End()

	var cacheKey string
	if snapshots != nil {
		cacheKey = snapshots.Key(cfg.Series.Primary.Name, cfg.Series.Secondary.Name)
		if table, ok := snapshots.Get(ctx, cacheKey); ok {
			logger.WithField("rows", table.Len()).Info("Loaded aligned table from snapshot cache")
			return table, nil
		}
	}

	resampler := services.NewResamplerService(logger)
	aligner := services.NewAlignerService(logger)

	primary, err := loadResampled(ctx, tracer, resampler, logger, cfg.Series.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := loadResampled(ctx, tracer, resampler, logger, cfg.Series.Secondary)
	if err != nil {
		return nil, err
	}

	_, alignSpan := tracer.Start(ctx, "startup.align")
	table := aligner.Align(primary, secondary)
	alignSpan.End()

	span.SetAttributes(attribute.Int("aligned.rows", table.Len()))

	if snapshots != nil {
		snapshots.Set(ctx, cacheKey, table)
	}
	return table, nil
}

func loadResampled(ctx context.Context, tracer trace.Tracer, resampler *services.ResamplerService, logger *logrus.Logger, cfg config.SeriesFileConfig) (*models.ResampledSeries, error) {
	_, span := tracer.Start(ctx, "startup.load_series")
	defer span.End()
	span.SetAttributes(
		attribute.String("series.name", cfg.Name),
		attribute.String("series.path", cfg.Path),
	)

	table, err := marketdata.ReadSeriesFile(cfg.Path, cfg.Name)
	if err != nil {
		return nil, err
	}

	resampled, err := resampler.Resample(table, cfg.MovingAverages)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"series":  cfg.Name,
		"samples": table.Len(),
		"buckets": len(resampled.Buckets),
	}).Info("Loaded series")
	return resampled, nil
}
