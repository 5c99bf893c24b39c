// internal/adapters/db/audit_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository on PostgreSQL.
type AuditRepository struct {
	db     *Database
	logger *slog.Logger
	sb     sq.StatementBuilderType
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *Database, logger *slog.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger.With(slog.String("component", "audit_repository")),
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record inserts a reconciliation event. The failures slice is stored
// as JSONB so individual matching failures survive verbatim.
func (r *AuditRepository) Record(ctx context.Context, event *ports.ReconciliationEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	failuresJSON, err := json.Marshal(event.Failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}

	query, args, err := r.sb.
		Insert("reconciliation_events").
		Columns("id", "list_id", "operation", "matched", "failed", "stale_retries", "failures", "created_at").
		Values(event.ID, event.ListID, string(event.Operation), event.Matched, event.Failed, event.StaleRetries, failuresJSON, event.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert reconciliation event: %w", err)
	}

	return nil
}

// FindByListID returns the most recent reconciliation events for a list.
func (r *AuditRepository) FindByListID(ctx context.Context, listID string, limit int) ([]ports.ReconciliationEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query, args, err := r.sb.
		Select("id", "list_id", "operation", "matched", "failed", "stale_retries", "failures", "created_at").
		From("reconciliation_events").
		Where(sq.Eq{"list_id": listID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation events: %w", err)
	}
	defer rows.Close()

	events := make([]ports.ReconciliationEvent, 0, limit)
	for rows.Next() {
		var (
			event        ports.ReconciliationEvent
			operation    string
			failuresJSON []byte
		)
		if err := rows.Scan(
			&event.ID,
			&event.ListID,
			&operation,
			&event.Matched,
			&event.Failed,
			&event.StaleRetries,
			&failuresJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation event: %w", err)
		}
		event.Operation = ports.ReconciliationOp(operation)

		if len(failuresJSON) > 0 {
			var failures []domain.MatchingFailure
			if err := json.Unmarshal(failuresJSON, &failures); err != nil {
				r.logger.Warn("failed to unmarshal stored failures",
					slog.String("event_id", event.ID.String()),
					slog.String("error", err.Error()),
				)
			} else {
				event.Failures = failures
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// PruneOlderThan deletes reconciliation events created before the cutoff
// and returns the number of rows removed.
func (r *AuditRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.sb.
		Delete("reconciliation_events").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reconciliation events: %w", err)
	}

	return tag.RowsAffected(), nil
}
