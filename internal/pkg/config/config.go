// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Asynq
	Asynq AsynqConfig

	// Upstream list store
	ListStore ListStoreConfig

	// Audit trail
	Audit AuditConfig

	// Security
	Security SecurityConfig

	// Server
	Server ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	EnableQueryLogging bool
	MigrationPath      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	TTL             time.Duration
	LockTTL         time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	RetryMax        int
	ShutdownTimeout time.Duration
}

// ListStoreConfig holds configuration for the upstream list store,
// the system of record that only supports whole-collection replaces.
type ListStoreConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AuditConfig holds reconciliation audit trail configuration
type AuditConfig struct {
	Retention     time.Duration
	PruneInterval time.Duration
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	TrustedProxies    []string
	SecureHeaders     bool
	RequestIDHeader   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	EnablePprof     bool
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	setDefaults()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "feira-api"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "debug"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", "feira"),
			Password:           getEnv("DB_PASSWORD", "feira_dev_2026"),
			Name:               getEnv("DB_NAME", "feira_audit"),
			SSLMode:            getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:     int32(getIntEnv("DB_MAX_CONNECTIONS", 25)),
			MinConnections:     int32(getIntEnv("DB_MIN_CONNECTIONS", 5)),
			MaxConnLifetime:    getDurationEnv("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:    getDurationEnv("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:  getDurationEnv("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
			EnableQueryLogging: getBoolEnv("DB_QUERY_LOGGING", env == "development"),
			MigrationPath:      getEnv("DB_MIGRATION_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Host:            getEnv("REDIS_HOST", "localhost"),
			Port:            getEnv("REDIS_PORT", "6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getIntEnv("REDIS_DB", 0),
			MaxRetries:      getIntEnv("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: getDurationEnv("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getDurationEnv("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			DialTimeout:     getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns:    getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			PoolTimeout:     getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			TTL:             getDurationEnv("REDIS_TTL", time.Hour),
			LockTTL:         getDurationEnv("REDIS_LOCK_TTL", 30*time.Second),
		},
		Asynq: AsynqConfig{
			RedisAddr:       fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getIntEnv("ASYNQ_REDIS_DB", 0),
			Concurrency:     getIntEnv("ASYNQ_CONCURRENCY", 10),
			Queues:          parseQueues(getEnv("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:  getBoolEnv("ASYNQ_STRICT_PRIORITY", false),
			RetryMax:        getIntEnv("ASYNQ_RETRY_MAX", 3),
			ShutdownTimeout: getDurationEnv("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		ListStore: ListStoreConfig{
			BaseURL: getEnv("LIST_STORE_BASE_URL", "http://localhost:9090"),
			APIKey:  getEnv("LIST_STORE_API_KEY", ""),
			Timeout: getDurationEnv("LIST_STORE_TIMEOUT", 15*time.Second),
		},
		Audit: AuditConfig{
			Retention:     getDurationEnv("AUDIT_RETENTION", 90*24*time.Hour),
			PruneInterval: getDurationEnv("AUDIT_PRUNE_INTERVAL", 24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: getDurationEnv("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    getSliceEnv("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:    getSliceEnv("TRUSTED_PROXIES", []string{}),
			SecureHeaders:     getBoolEnv("SECURE_HEADERS", env == "production"),
			RequestIDHeader:   getEnv("REQUEST_ID_HEADER", "X-Request-ID"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			EnablePprof:     getBoolEnv("ENABLE_PPROF", env == "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.ListStore.BaseURL == "" {
		return fmt.Errorf("list store base URL is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.MaxConnections < c.Database.MinConnections {
		return fmt.Errorf("max connections must be >= min connections")
	}
	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive")
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis lock TTL must be positive")
	}

	return nil
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns the formatted redis address
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "feira-api")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	pairs := strings.Split(queuesStr, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			name := strings.TrimSpace(parts[0])
			priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				queues[name] = priority
			}
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
