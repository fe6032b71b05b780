package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrops-br/products-crud-api/internal/app/notify"
	"github.com/mrops-br/products-crud-api/internal/app/ratelimit"
	"github.com/mrops-br/products-crud-api/internal/app/service"
	"github.com/mrops-br/products-crud-api/internal/domain"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/config"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/messaging"
	ratelimitstore "github.com/mrops-br/products-crud-api/internal/infrastructure/ratelimit"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/repository/document"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/repository/relational"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize OpenTelemetry
	telem, err := telemetry.NewTelemetry(&cfg.OTLP, cfg.API.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Flush telemetry last, after the server and store are closed
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer("products-api")
	meter := telem.MeterProvider.Meter("products-api")
	logger := telem.Logger

	logger.Info("Starting Products API",
		slog.String("version", cfg.API.Version),
		slog.String("store_driver", cfg.Store.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := openRepository(ctx, &cfg.Store, tracer, logger)
	if err != nil {
		return fmt.Errorf("failed to open product store: %w", err)
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.Error("Error closing product store", slog.String("error", err.Error()))
		}
	}()

	// Rate limiting
	limiter, err := ratelimit.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	if err != nil {
		return fmt.Errorf("invalid rate limiter configuration: %w", err)
	}
	limiter.StartJanitor(ctx, cfg.RateLimit.SweepEvery)
	logger.Info("Rate limiter configured",
		slog.Int("quota", limiter.Quota()),
		slog.Duration("window", limiter.Window()),
		slog.Duration("sweep_every", cfg.RateLimit.SweepEvery),
	)

	stats, closeStats := openStatsStore(&cfg.RateLimit, logger)
	defer closeStats()

	rateLimiter := middleware.NewRateLimiter(
		limiter,
		middleware.DefaultKeyFunc(cfg.RateLimit.KeyHeader, cfg.RateLimit.TrustXFF),
		stats,
		meter,
		logger,
	)

	incidents := openIncidentReporter(&cfg.Incidents, logger)
	defer incidents.Close()

	emails := notify.NewDispatcher(cfg.Email.SendsPerSecond, cfg.Email.SendDelay, logger)

	productService := service.NewProductService(repo, tracer, meter, logger)

	server, err := http.NewServer(
		cfg,
		handler.NewProductHandler(productService, incidents, logger),
		handler.NewEmailHandler(emails, logger),
		rateLimiter,
		telem.MeterProvider,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build HTTP server: %w", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", slog.String("error", err.Error()))
	}
	if err := emails.Wait(shutdownCtx); err != nil {
		logger.Warn("Abandoning pending emails", slog.String("error", err.Error()))
	}
	emails.Close()

	logger.Info("Server stopped")
	return nil
}

func openRepository(ctx context.Context, cfg *config.StoreConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		repo, err := document.Connect(ctx, cfg.MongoURI, cfg.MongoDB, tracer, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return memory.NewProductRepository(tracer, logger), nil
	default:
		db, err := relational.OpenMySQL(cfg)
		if err != nil {
			return nil, err
		}
		return relational.NewProductRepository(db, tracer, logger), nil
	}
}

func openStatsStore(cfg *config.RateLimitConfig, logger *slog.Logger) (domain.StatsStore, func()) {
	if cfg.StatsRedisAddr == "" {
		return ratelimitstore.NewMemoryStatsStore(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.StatsRedisAddr,
		Password: cfg.StatsRedisPassword,
		DB:       cfg.StatsRedisDB,
	})
	store := ratelimitstore.NewRedisStatsStore(rdb,
		ratelimitstore.WithStatsPrefix(cfg.StatsPrefix),
		ratelimitstore.WithStatsTTL(cfg.StatsTTL),
	)
	logger.Info("Recording rate limit stats in Redis", slog.String("addr", cfg.StatsRedisAddr))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing Redis stats store", slog.String("error", err.Error()))
		}
	}
}

func openIncidentReporter(cfg *config.IncidentsConfig, logger *slog.Logger) messaging.Reporter {
	if cfg.RabbitURL == "" {
		return messaging.NewLogReporter(logger)
	}

	publisher, err := messaging.NewAMQPPublisher(cfg.RabbitURL, cfg.Queue, logger)
	if err != nil {
		logger.Error("RabbitMQ unavailable, logging incidents only", slog.String("error", err.Error()))
		return messaging.NewLogReporter(logger)
	}
	logger.Info("Publishing incidents to RabbitMQ", slog.String("queue", cfg.Queue))
	return publisher
}
