// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/pduarte/feira-be/internal/adapters/db"
	"github.com/pduarte/feira-be/internal/adapters/liststore"
	redis_a "github.com/pduarte/feira-be/internal/adapters/redis_adapter"
	"github.com/pduarte/feira-be/internal/core/services"
	"github.com/pduarte/feira-be/internal/handlers"
	"github.com/pduarte/feira-be/internal/handlers/middleware"
	"github.com/pduarte/feira-be/internal/pkg/config"
	"github.com/pduarte/feira-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting shopping list reconciliation service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	// Resolve secrets from AWS in production, env otherwise
	if secretName := os.Getenv("AWS_SECRET_NAME"); secretName != "" {
		sm, err := config.NewAWSSecretsManager(os.Getenv("AWS_REGION"), secretName, slogger.Logger)
		if err != nil {
			slogger.Error("failed to create secrets manager", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := cfg.ApplySecrets(ctx, sm); err != nil {
			slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	slogger.Info("running database migrations")
	if err := db.RunMigrationsWithRetry(cfg.GetDatabaseURL(), cfg.Database.MigrationPath, 3, slogger.Logger); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		if cfg.IsProduction() {
			os.Exit(1)
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	cache          *redis_a.Cache
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	storeClient    *liststore.Client
	listService    *services.ListService
	listHandler    *handlers.ListHandler
	healthHandler  *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *logger.Logger) (*dependencies, error) {
	deps := &dependencies{}
	log := slogger.Logger

	log.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	log.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddress(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	deps.cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, log)

	log.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	log.Info("connecting to upstream list store",
		slog.String("base_url", cfg.ListStore.BaseURL),
	)

	storeClient, err := liststore.NewClient(&liststore.Config{
		BaseURL: cfg.ListStore.BaseURL,
		APIKey:  cfg.ListStore.APIKey,
		Timeout: cfg.ListStore.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize list store client: %w", err)
	}
	deps.storeClient = storeClient

	auditRepo := db.NewAuditRepository(database, log)

	deps.listService = services.NewListService(
		storeClient,
		deps.cache,
		auditRepo,
		deps.cache,
		cfg.Redis.LockTTL,
		log,
	)

	deps.listHandler = handlers.NewListHandler(deps.listService, auditRepo, log)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		deps.asynqInspector,
		storeClient,
		cfg,
		log,
	)

	log.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// List endpoints
	mux.HandleFunc("GET "+apiV1+"/lists/{id}", deps.listHandler.GetList)
	mux.HandleFunc("PUT "+apiV1+"/lists/{id}", deps.listHandler.SaveList)
	mux.HandleFunc("POST "+apiV1+"/lists/{id}/items/{itemId}/purchase", deps.listHandler.RecordPurchase)
	mux.HandleFunc("POST "+apiV1+"/lists/{id}/items/{itemId}/transfer", deps.listHandler.Transfer)
	mux.HandleFunc("GET "+apiV1+"/lists/{id}/reconciliations", deps.listHandler.Reconciliations)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}
