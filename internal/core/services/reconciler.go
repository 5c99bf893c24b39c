// internal/core/services/reconciler.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

var minOrdered = decimal.NewFromInt(1)

// RecordPurchase records that totalPurchased of an item has been
// acquired so far.
//
// Buying more than was ordered always raises the ordered quantity to
// the purchased total; there is no pending remainder to keep. Buying
// less either leaves the ordered quantity alone (keepOriginal, the
// remainder stays pending) or resizes it down to the purchased total
// (raiseOrderedToPurchased, rejected if that would drop it below 1).
//
// Resizing the ordered quantity forces a whole-collection replace, so
// the purchase state of every other item on the list is restored
// through the same match-and-restore pass a list edit uses.
func (s *ListService) RecordPurchase(ctx context.Context, listID, itemID string,
	totalPurchased decimal.Decimal, policy domain.ReorderPolicy) (*domain.Item, error) {

	if listID == "" || itemID == "" {
		return nil, &domain.ValidationError{Field: "item_id", Message: "list_id and item_id are required"}
	}
	if !domain.ValidReorderPolicy(policy) {
		return nil, &domain.ValidationError{
			Field:   "reorder_policy",
			Message: fmt.Sprintf("unknown reorder policy %q", policy),
		}
	}

	release, err := s.beginSequence(ctx, listID)
	if err != nil {
		return nil, err
	}
	defer release()

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	item := list.ItemByID(itemID)
	if item == nil {
		return nil, &domain.StaleReferenceError{ItemID: itemID}
	}

	newOrdered := item.OrderedQuantity
	switch {
	case totalPurchased.GreaterThan(item.OrderedQuantity):
		newOrdered = totalPurchased
	case totalPurchased.LessThan(item.OrderedQuantity) && policy == domain.ReorderRaiseToPurchased:
		if totalPurchased.LessThan(minOrdered) {
			return nil, &domain.ValidationError{
				Field:   "total_purchased",
				Message: "resizing to the purchased total would drop ordered quantity below 1",
			}
		}
		newOrdered = totalPurchased
	}

	breakdown := domain.QuantityBreakdown{
		Ordered:   newOrdered,
		Received:  totalPurchased,
		Defective: item.DefectiveQuantity,
		Returned:  item.ReturnedQuantity,
	}
	// Validated up front so an invalid purchase never triggers the
	// destructive replace below.
	resolution, err := breakdown.Validate()
	if err != nil {
		return nil, err
	}

	if newOrdered.Equal(item.OrderedQuantity) {
		return s.patchPurchase(ctx, list, item, breakdown, resolution)
	}

	// Snapshot every item carrying purchase state, in list order, with
	// the target entry rewritten to its intended post-replace shape so
	// the matcher follows the quantity change.
	snapshot := make([]domain.Item, 0, len(list.Items))
	for i := range list.Items {
		current := list.Items[i]
		if current.ID == itemID {
			current.OrderedQuantity = newOrdered
			current.ReceivedQuantity = totalPurchased
			current.DefectiveQuantity = breakdown.Defective
			current.ReturnedQuantity = breakdown.Returned
			snapshot = append(snapshot, current)
			continue
		}
		if current.Status != domain.ItemStatusPending || current.ReceivedQuantity.IsPositive() {
			snapshot = append(snapshot, current)
		}
	}

	payload := replacePayload(list)
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			payload.Items[i].Quantity = newOrdered
			break
		}
	}

	fresh, matches, err := s.replaceAndRestore(ctx, listID, payload, snapshot, ports.OpPurchase)
	if err != nil {
		return nil, err
	}

	freshID, ok := matches[itemID]
	var updated *domain.Item
	if ok {
		updated = fresh.ItemByID(freshID)
	}
	if updated == nil {
		return nil, &domain.MatchingError{ListID: listID, Failures: []domain.MatchingFailure{{
			ItemID:           itemID,
			ProductID:        item.ProductID,
			OrderedQuantity:  newOrdered,
			ReceivedQuantity: totalPurchased,
			Reason:           "purchased item missing from recreated set",
		}}}
	}

	s.logger.InfoContext(ctx, "purchase recorded",
		slog.String("list_id", listID),
		slog.String("item_id", updated.ID),
		slog.String("product_id", updated.ProductID),
		slog.String("total_purchased", totalPurchased.String()),
		slog.String("reorder_policy", string(policy)))

	return updated, nil
}

// patchPurchase handles the common case where the ordered quantity is
// untouched: a single quantity patch, no replace, one stale retry.
func (s *ListService) patchPurchase(ctx context.Context, list *domain.ShoppingList, item *domain.Item,
	breakdown domain.QuantityBreakdown, resolution domain.QuantityResolution) (*domain.Item, error) {

	patch := ports.ItemQuantityPatch{
		Received:  breakdown.Received,
		Defective: breakdown.Defective,
		Returned:  breakdown.Returned,
	}

	staleRetries := 0
	updated, err := s.patchWithRetry(ctx, list.ID, item.ID, *item, patch, &staleRetries)
	if err != nil {
		return nil, err
	}
	if staleRetries > 0 {
		s.recordAudit(ctx, list.ID, ports.OpPurchase, &ports.ReconciliationEvent{
			Matched:      1,
			StaleRetries: staleRetries,
		})
	}
	s.invalidate(ctx, list.ID)

	s.logger.InfoContext(ctx, "purchase recorded",
		slog.String("list_id", list.ID),
		slog.String("item_id", updated.ID),
		slog.String("product_id", updated.ProductID),
		slog.String("received", breakdown.Received.String()),
		slog.String("status", string(resolution.Status)))

	return updated, nil
}
