// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pduarte/feira-be/internal/adapters/db"
	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/pkg/config"
	"github.com/pduarte/feira-be/internal/pkg/logger"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *logger.Logger {
	level := "error"
	if testing.Verbose() {
		level = "debug"
	}
	return logger.NewLogger(&logger.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
	})
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_feira",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_feira",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	log := TestLogger()

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, log.Logger)
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	databaseURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
		dbConfig.Database, dbConfig.SSLMode)

	err = db.RunMigrationsWithRetry(databaseURL, "../../migrations", 3, log.Logger)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_feira",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			LockTTL:  30 * time.Second,
			PoolSize: 10,
		},
		ListStore: config.ListStoreConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 5 * time.Second,
		},
		Audit: config.AuditConfig{
			Retention:     90 * 24 * time.Hour,
			PruneInterval: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err, "invalid decimal literal %q", value)
	return d
}

// PendingItem creates a pending list item with a fresh id.
func PendingItem(t *testing.T, productID, ordered string) domain.Item {
	t.Helper()
	return domain.Item{
		ID:              uuid.NewString(),
		ProductID:       productID,
		CorrelationID:   uuid.New(),
		OrderedQuantity: Dec(t, ordered),
		Status:          domain.ItemStatusPending,
	}
}

// PurchasedItem creates an item with recorded purchase state. The
// status follows the quantity invariants the same way the engine
// derives it.
func PurchasedItem(t *testing.T, productID, ordered, received string) domain.Item {
	t.Helper()

	item := PendingItem(t, productID, ordered)
	breakdown := domain.QuantityBreakdown{
		Ordered:  item.OrderedQuantity,
		Received: Dec(t, received),
	}
	resolution, err := breakdown.Validate()
	require.NoError(t, err, "inconsistent purchase fixture %s/%s", ordered, received)
	item.Apply(breakdown, resolution)
	return item
}

// CompareItems compares the quantity state of two items.
func CompareItems(t *testing.T, expected, actual *domain.Item) {
	t.Helper()

	require.Equal(t, expected.ProductID, actual.ProductID)
	require.Equal(t, expected.Status, actual.Status)
	require.True(t, expected.OrderedQuantity.Equal(actual.OrderedQuantity),
		"ordered: want %s, got %s", expected.OrderedQuantity, actual.OrderedQuantity)
	require.True(t, expected.ReceivedQuantity.Equal(actual.ReceivedQuantity),
		"received: want %s, got %s", expected.ReceivedQuantity, actual.ReceivedQuantity)
	require.True(t, expected.DefectiveQuantity.Equal(actual.DefectiveQuantity),
		"defective: want %s, got %s", expected.DefectiveQuantity, actual.DefectiveQuantity)
	require.True(t, expected.ReturnedQuantity.Equal(actual.ReturnedQuantity),
		"returned: want %s, got %s", expected.ReturnedQuantity, actual.ReturnedQuantity)
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "TRUNCATE TABLE reconciliation_events CASCADE")
	require.NoError(t, err, "Failed to truncate reconciliation_events")
}
