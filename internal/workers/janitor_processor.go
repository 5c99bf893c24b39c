// internal/workers/janitor_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/pduarte/feira-be/internal/adapters/redis_adapter"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/internal/pkg/config"
)

// Task type names handled by the janitor.
const (
	TypePruneAudit = "janitor:prune_audit"
	TypeReapLocks  = "janitor:reap_locks"
)

// NewPruneAuditTask creates a task that prunes old reconciliation events
func NewPruneAuditTask() *asynq.Task {
	return asynq.NewTask(TypePruneAudit, nil)
}

// NewReapLocksTask creates a task that removes orphaned list locks
func NewReapLocksTask() *asynq.Task {
	return asynq.NewTask(TypeReapLocks, nil)
}

// JanitorProcessor handles periodic maintenance tasks
type JanitorProcessor struct {
	audit  ports.AuditRepository
	redis  *redis.Client
	config *config.Config
	logger *slog.Logger
}

// NewJanitorProcessor creates a new janitor processor
func NewJanitorProcessor(audit ports.AuditRepository, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) *JanitorProcessor {
	return &JanitorProcessor{
		audit:  audit,
		redis:  redisClient,
		config: cfg,
		logger: logger.With(slog.String("processor", "janitor")),
	}
}

// PruneAuditTrail removes reconciliation events past the retention window
func (p *JanitorProcessor) PruneAuditTrail(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().UTC().Add(-p.config.Audit.Retention)

	p.logger.InfoContext(ctx, "pruning audit trail",
		slog.Time("cutoff", cutoff))

	deleted, err := p.audit.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune audit trail: %w", err)
	}

	p.logger.InfoContext(ctx, "audit trail pruned",
		slog.Int64("rows_deleted", deleted))

	return nil
}

// ReapOrphanedLocks removes list lock keys that lost their TTL. Locks
// are written with an expiry, so a key with no TTL means a writer died
// between SETNX and the follow-up expiry handling.
func (p *JanitorProcessor) ReapOrphanedLocks(ctx context.Context, t *asynq.Task) error {
	pattern := redis_a.BuildKey(redis_a.PrefixListLock, "*")

	var reaped int
	iter := p.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		ttl, err := p.redis.TTL(ctx, key).Result()
		if err != nil {
			p.logger.WarnContext(ctx, "failed to read lock TTL",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}

		if ttl == -1 {
			if err := p.redis.Del(ctx, key).Err(); err != nil {
				p.logger.WarnContext(ctx, "failed to delete orphaned lock",
					slog.String("key", key),
					slog.String("error", err.Error()))
				continue
			}
			reaped++
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan lock keys: %w", err)
	}

	p.logger.InfoContext(ctx, "orphaned locks reaped",
		slog.Int("locks_deleted", reaped))

	return nil
}
