// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/pduarte/feira-be/internal/adapters/db"
	"github.com/pduarte/feira-be/internal/pkg/config"
	"github.com/pduarte/feira-be/internal/pkg/logger"
	"github.com/pduarte/feira-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting janitor worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slogger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	auditRepo := db.NewAuditRepository(database, slogger.Logger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(
		asynqRedisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			Logger:          newAsynqLogger(slogger.Logger),
		},
	)

	mux := asynq.NewServeMux()

	janitor := workers.NewJanitorProcessor(auditRepo, redisClient, cfg, slogger.Logger)
	mux.HandleFunc(workers.TypePruneAudit, janitor.PruneAuditTrail)
	mux.HandleFunc(workers.TypeReapLocks, janitor.ReapOrphanedLocks)

	// Periodic scheduling: prune on the configured interval, reap locks
	// hourly.
	scheduler := asynq.NewScheduler(asynqRedisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger.Logger),
	})
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", cfg.Audit.PruneInterval),
		workers.NewPruneAuditTask(),
		asynq.Queue("low"),
	); err != nil {
		slogger.Error("failed to register prune schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if _, err := scheduler.Register(
		"@every 1h",
		workers.NewReapLocksTask(),
		asynq.Queue("low"),
	); err != nil {
		slogger.Error("failed to register lock reap schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
