// internal/core/ports/audit.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pduarte/feira-be/internal/core/domain"
)

// ReconciliationOp identifies which engine operation triggered a
// replace-and-restore pass.
type ReconciliationOp string

const (
	OpListEdit    ReconciliationOp = "list_edit"
	OpPurchase    ReconciliationOp = "purchase"
	OpTransferIn  ReconciliationOp = "transfer_in"
	OpTransferOut ReconciliationOp = "transfer_out"
)

// ReconciliationEvent is the audit record of one reconciliation pass:
// how many purchased items were re-identified, how many were lost, and
// whether a stale-id retry was needed.
type ReconciliationEvent struct {
	ID           uuid.UUID                `json:"id"`
	ListID       string                   `json:"list_id"`
	Operation    ReconciliationOp         `json:"operation"`
	Matched      int                      `json:"matched"`
	Failed       int                      `json:"failed"`
	StaleRetries int                      `json:"stale_retries"`
	Failures     []domain.MatchingFailure `json:"failures,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// AuditRepository persists reconciliation events.
type AuditRepository interface {
	Record(ctx context.Context, event *ReconciliationEvent) error
	FindByListID(ctx context.Context, listID string, limit int) ([]ReconciliationEvent, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
