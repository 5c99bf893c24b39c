// internal/core/services/service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

const listCachePrefix = "list:"

// ListService orchestrates every edit/reconcile sequence against the
// upstream list store. It owns the single-writer guarantee: at most one
// in-flight sequence per list, enforced in-process and through a redis
// lease so multiple replicas stay honest.
type ListService struct {
	store   ports.ListStore
	locker  ports.ListLocker
	audit   ports.AuditRepository
	cache   ports.CacheRepository
	matcher ItemMatcher
	guard   *listGuard
	lockTTL time.Duration
	logger  *slog.Logger
}

// Statically assert that *ListService implements the ListService port.
var _ ports.ListService = (*ListService)(nil)

// NewListService creates a new list service
func NewListService(store ports.ListStore, locker ports.ListLocker, audit ports.AuditRepository,
	cache ports.CacheRepository, lockTTL time.Duration, logger *slog.Logger) *ListService {
	return &ListService{
		store:   store,
		locker:  locker,
		audit:   audit,
		cache:   cache,
		guard:   newListGuard(),
		lockTTL: lockTTL,
		logger:  logger.With(slog.String("service", "lists")),
	}
}

// GetList returns a list, served from cache when possible.
func (s *ListService) GetList(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	if listID == "" {
		return nil, &domain.ValidationError{Field: "list_id", Message: "list_id is required"}
	}

	var cached domain.ShoppingList
	if err := s.cache.Get(ctx, listCachePrefix+listID, &cached); err == nil {
		return &cached, nil
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	if err := s.cache.Set(ctx, listCachePrefix+listID, list); err != nil {
		s.logger.DebugContext(ctx, "list cache set failed",
			slog.String("list_id", listID),
			slog.String("error", err.Error()))
	}

	return list, nil
}

// beginSequence claims exclusive write access to a list. The returned
// release func must run before the sequence's caller returns.
func (s *ListService) beginSequence(ctx context.Context, listID string) (func(), error) {
	if !s.guard.tryAcquire(listID) {
		return nil, &domain.ConflictError{
			Message: fmt.Sprintf("another edit of list %s is already in flight", listID),
		}
	}

	ok, err := s.locker.AcquireListLock(ctx, listID, s.lockTTL)
	if err != nil {
		s.guard.release(listID)
		return nil, fmt.Errorf("failed to acquire lock for list %s: %w", listID, err)
	}
	if !ok {
		s.guard.release(listID)
		return nil, &domain.ConflictError{
			Message: fmt.Sprintf("another edit of list %s is already in flight", listID),
		}
	}

	return func() {
		// Release must happen even when the request context is gone.
		releaseCtx := context.WithoutCancel(ctx)
		if err := s.locker.ReleaseListLock(releaseCtx, listID); err != nil {
			s.logger.WarnContext(ctx, "failed to release list lock, lease will expire",
				slog.String("list_id", listID),
				slog.String("error", err.Error()))
		}
		s.guard.release(listID)
	}, nil
}

// beginSequencePair locks two lists in deterministic order.
func (s *ListService) beginSequencePair(ctx context.Context, a, b string) (func(), error) {
	ids := []string{a, b}
	sort.Strings(ids)

	first, err := s.beginSequence(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	second, err := s.beginSequence(ctx, ids[1])
	if err != nil {
		first()
		return nil, err
	}
	return func() {
		second()
		first()
	}, nil
}

// replacePayload renders a list's current items into a byte-identical
// replace request. Callers mutate individual entries before issuing it.
func replacePayload(list *domain.ShoppingList) ports.ReplaceListRequest {
	items := make([]ports.ReplaceItem, len(list.Items))
	for i := range list.Items {
		items[i] = ports.ReplaceItem{
			ProductID:     list.Items[i].ProductID,
			Quantity:      list.Items[i].OrderedQuantity,
			Notes:         list.Items[i].Notes,
			CorrelationID: uuid.New(),
		}
	}
	return ports.ReplaceListRequest{
		Name:        list.Name,
		Description: list.Description,
		Items:       items,
	}
}

// replaceAndRestore is the one code path allowed to issue a destructive
// replace. It PUTs the payload, re-identifies every snapshot item among
// the recreated set, and re-applies their purchase state. All matching
// failures are collected before any patch goes out: the caller either
// gets a fully restored list or a MatchingError and an untouched
// (pristine) recreated set.
func (s *ListService) replaceAndRestore(ctx context.Context, listID string, req ports.ReplaceListRequest,
	snapshot []domain.Item, op ports.ReconciliationOp) (*domain.ShoppingList, map[string]string, error) {

	fresh, err := s.store.ReplaceList(ctx, listID, req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to replace list %s: %w", listID, err)
	}
	s.invalidate(ctx, listID)

	result := s.matcher.Match(snapshot, fresh.Items)
	if len(result.Failures) > 0 {
		s.recordAudit(ctx, listID, op, &ports.ReconciliationEvent{
			Matched:  len(result.Matches),
			Failed:   len(result.Failures),
			Failures: result.Failures,
		})
		return nil, nil, &domain.MatchingError{ListID: listID, Failures: result.Failures}
	}

	staleRetries := 0
	for i := range snapshot {
		b := &snapshot[i]
		afterID, ok := result.Matches[b.ID]
		if !ok {
			continue
		}
		target := fresh.ItemByID(afterID)
		if target == nil {
			return nil, nil, &domain.MatchingError{ListID: listID, Failures: []domain.MatchingFailure{{
				ItemID:           b.ID,
				ProductID:        b.ProductID,
				OrderedQuantity:  b.OrderedQuantity,
				ReceivedQuantity: b.ReceivedQuantity,
				Reason:           "matched id missing from recreated set",
			}}}
		}
		// Snapshot entries still fully pending carry no state to
		// restore. Anything else gets its breakdown re-applied, even at
		// zero received, so a purchased status never degrades.
		if b.Status == domain.ItemStatusPending && b.ReceivedQuantity.IsZero() {
			continue
		}

		breakdown := domain.QuantityBreakdown{
			Ordered:   target.OrderedQuantity,
			Received:  b.ReceivedQuantity,
			Defective: b.DefectiveQuantity,
			Returned:  b.ReturnedQuantity,
		}
		resolution, err := breakdown.Validate()
		if err != nil {
			return nil, nil, fmt.Errorf("restoring item %s on list %s: %w", afterID, listID, err)
		}

		patch := ports.ItemQuantityPatch{
			Received:  b.ReceivedQuantity,
			Defective: b.DefectiveQuantity,
			Returned:  b.ReturnedQuantity,
		}
		if _, err := s.patchWithRetry(ctx, listID, afterID, *b, patch, &staleRetries); err != nil {
			return nil, nil, err
		}
		target.Apply(breakdown, resolution)
	}

	s.recordAudit(ctx, listID, op, &ports.ReconciliationEvent{
		Matched:      len(result.Matches),
		StaleRetries: staleRetries,
	})
	s.invalidate(ctx, listID)

	return fresh, result.Matches, nil
}

// patchWithRetry applies a quantity patch, surviving exactly one stale
// id: on a StaleReferenceError it re-fetches the authoritative list,
// re-matches the snapshot item, and retries against the new id. A
// second failure escalates to a MatchingError.
func (s *ListService) patchWithRetry(ctx context.Context, listID, itemID string, before domain.Item,
	patch ports.ItemQuantityPatch, staleRetries *int) (*domain.Item, error) {

	updated, err := s.store.PatchItemQuantities(ctx, itemID, patch)
	if err == nil {
		return updated, nil
	}

	var stale *domain.StaleReferenceError
	if !errors.As(err, &stale) {
		return nil, fmt.Errorf("failed to patch item %s on list %s: %w", itemID, listID, err)
	}

	*staleRetries++
	s.logger.WarnContext(ctx, "stale item id, re-fetching list and retrying once",
		slog.String("list_id", listID),
		slog.String("item_id", itemID))

	fresh, ferr := s.store.GetList(ctx, listID)
	if ferr != nil {
		return nil, fmt.Errorf("failed to re-fetch list %s after stale id: %w", listID, ferr)
	}
	s.invalidate(ctx, listID)

	result := s.matcher.Match([]domain.Item{before}, fresh.Items)
	retryID, ok := result.Matches[before.ID]
	if !ok {
		failures := result.Failures
		if len(failures) == 0 {
			failures = []domain.MatchingFailure{{
				ItemID:           before.ID,
				ProductID:        before.ProductID,
				OrderedQuantity:  before.OrderedQuantity,
				ReceivedQuantity: before.ReceivedQuantity,
				Reason:           "item not re-identifiable after stale reference",
			}}
		}
		return nil, &domain.MatchingError{ListID: listID, Failures: failures}
	}

	updated, err = s.store.PatchItemQuantities(ctx, retryID, patch)
	if err != nil {
		if errors.As(err, &stale) {
			return nil, &domain.MatchingError{ListID: listID, Failures: []domain.MatchingFailure{{
				ItemID:           before.ID,
				ProductID:        before.ProductID,
				OrderedQuantity:  before.OrderedQuantity,
				ReceivedQuantity: before.ReceivedQuantity,
				Reason:           "item id stale again after one retry",
			}}}
		}
		return nil, fmt.Errorf("failed to patch item %s on list %s: %w", retryID, listID, err)
	}
	return updated, nil
}

// deleteWithRetry removes an item, surviving one stale id the same way
// patchWithRetry does.
func (s *ListService) deleteWithRetry(ctx context.Context, listID string, before domain.Item, staleRetries *int) error {
	err := s.store.DeleteItem(ctx, before.ID)
	if err == nil {
		return nil
	}

	var stale *domain.StaleReferenceError
	if !errors.As(err, &stale) {
		return fmt.Errorf("failed to delete item %s on list %s: %w", before.ID, listID, err)
	}

	*staleRetries++
	fresh, ferr := s.store.GetList(ctx, listID)
	if ferr != nil {
		return fmt.Errorf("failed to re-fetch list %s after stale id: %w", listID, ferr)
	}
	s.invalidate(ctx, listID)

	result := s.matcher.Match([]domain.Item{before}, fresh.Items)
	retryID, ok := result.Matches[before.ID]
	if !ok {
		return &domain.MatchingError{ListID: listID, Failures: []domain.MatchingFailure{{
			ItemID:           before.ID,
			ProductID:        before.ProductID,
			OrderedQuantity:  before.OrderedQuantity,
			ReceivedQuantity: before.ReceivedQuantity,
			Reason:           "item not re-identifiable after stale reference",
		}}}
	}

	if err := s.store.DeleteItem(ctx, retryID); err != nil {
		return fmt.Errorf("failed to delete item %s on list %s: %w", retryID, listID, err)
	}
	return nil
}

func (s *ListService) invalidate(ctx context.Context, listID string) {
	if err := s.cache.Delete(ctx, listCachePrefix+listID); err != nil {
		s.logger.DebugContext(ctx, "list cache invalidation failed",
			slog.String("list_id", listID),
			slog.String("error", err.Error()))
	}
}

// recordAudit persists a reconciliation event. Auditing is best effort:
// a failed insert is logged, never propagated into the sequence.
func (s *ListService) recordAudit(ctx context.Context, listID string, op ports.ReconciliationOp, event *ports.ReconciliationEvent) {
	event.ID = uuid.New()
	event.ListID = listID
	event.Operation = op
	event.CreatedAt = time.Now().UTC()

	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record reconciliation event",
			slog.String("list_id", listID),
			slog.String("operation", string(op)),
			slog.String("error", err.Error()))
	}
}
