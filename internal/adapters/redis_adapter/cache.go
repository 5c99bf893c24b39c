// internal/adapters/redis/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pduarte/feira-be/internal/core/ports"
)

// CacheKeyPrefix defines prefixes for different cache types
type CacheKeyPrefix string

const (
	PrefixList     CacheKeyPrefix = "list"
	PrefixListLock CacheKeyPrefix = "lock:list"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = fmt.Errorf("cache miss")

// Cache provides caching and list locking on top of Redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *Cache implements both redis-backed ports.
var (
	_ ports.CacheRepository = (*Cache)(nil)
	_ ports.ListLocker      = (*Cache)(nil)
)

// NewCache creates a new cache instance
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
	}
}

// Set stores a value in cache with default TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with custom TTL
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to set cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis set error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache set",
		slog.String("key", key),
		slog.Duration("ttl", ttl))

	return nil
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			// Cache miss is not an error
			c.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
			return ErrCacheMiss
		}
		c.logger.ErrorContext(ctx, "failed to get cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
	return nil
}

// Delete removes keys from cache
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to delete cache",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis del error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache deleted", slog.Any("keys", keys))
	return nil
}

// Exists checks if keys exist
func (c *Cache) Exists(ctx context.Context, keys ...string) (bool, error) {
	n, err := c.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}

	return n == int64(len(keys)), nil
}

// SetNX sets a key only if it doesn't exist (useful for locks)
func (c *Cache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("marshal error: %w", err)
	}

	ok, err := c.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to setnx",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("redis setnx error: %w", err)
	}

	return ok, nil
}

// TTL returns the time to live for a key
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl error: %w", err)
	}

	return ttl, nil
}

// Ping checks if Redis is accessible
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping error: %w", err)
	}

	return nil
}

// AcquireListLock claims the per-list write lease. The TTL bounds how
// long a crashed holder can block a list; the janitor clears leftovers
// sooner.
func (c *Cache) AcquireListLock(ctx context.Context, listID string, ttl time.Duration) (bool, error) {
	key := BuildKey(PrefixListLock, listID)
	acquired, err := c.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), ttl)
	if err != nil {
		return false, err
	}

	c.logger.DebugContext(ctx, "list lock attempt",
		slog.String("list_id", listID),
		slog.Bool("acquired", acquired))

	return acquired, nil
}

// ReleaseListLock drops the per-list write lease.
func (c *Cache) ReleaseListLock(ctx context.Context, listID string) error {
	return c.Delete(ctx, BuildKey(PrefixListLock, listID))
}

// BuildKey creates a cache key with prefix
func BuildKey(prefix CacheKeyPrefix, parts ...string) string {
	key := string(prefix)
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
