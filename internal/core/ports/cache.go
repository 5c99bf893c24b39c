// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// Conditional operations
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Utility operations
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}

// ListLocker serializes edit/reconcile sequences per list across
// replicas. Acquire returns false when another sequence already holds
// the list; the caller rejects the edit rather than queueing it.
type ListLocker interface {
	AcquireListLock(ctx context.Context, listID string, ttl time.Duration) (bool, error)
	ReleaseListLock(ctx context.Context, listID string) error
}
