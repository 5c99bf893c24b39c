// internal/core/services/transfer.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// Transfer moves or duplicates a quantity of one item into another
// list.
//
// The transferable amount is the whole ordered quantity for fully
// purchased items (they only transfer as a unit, their purchase state
// travels with them) and the pending remainder otherwise. The target
// side either merges into an existing same-product item or appends a
// new one. A move then shrinks or deletes the source item, clamping the
// shrunk ordered quantity at the received quantity so purchase history
// is never lost; a duplicate leaves the source untouched.
//
// The target list is mutated first. If that fails, the source list has
// not been touched.
func (s *ListService) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if err := validateTransferRequest(req); err != nil {
		return nil, err
	}

	release, err := s.beginSequencePair(ctx, req.SourceListID, req.TargetListID)
	if err != nil {
		return nil, err
	}
	defer release()

	source, err := s.store.GetList(ctx, req.SourceListID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source list %s: %w", req.SourceListID, err)
	}
	item := source.ItemByID(req.ItemID)
	if item == nil {
		return nil, &domain.StaleReferenceError{ItemID: req.ItemID}
	}

	transferable := item.TransferableQuantity()
	if req.Quantity.GreaterThan(transferable) {
		return nil, &domain.ConflictError{
			Message: fmt.Sprintf("requested quantity %s exceeds transferable %s for item %s",
				req.Quantity, transferable, req.ItemID),
		}
	}
	fullyPurchased := item.IsFullyPurchased()
	if fullyPurchased && !req.Quantity.Equal(transferable) {
		return nil, &domain.ConflictError{
			Message: fmt.Sprintf("item %s is fully purchased and transfers only as a whole (%s)",
				req.ItemID, transferable),
		}
	}

	targetItem, err := s.transferIntoTarget(ctx, req, item, fullyPurchased)
	if err != nil {
		return nil, err
	}

	var sourceItem *domain.Item
	if req.Mode == domain.TransferModeMove {
		sourceItem, err = s.shrinkSource(ctx, source, item, req.Quantity, fullyPurchased)
		if err != nil {
			return nil, err
		}
	} else {
		// duplicate: the source item stays exactly as it was
		copied := *item
		sourceItem = &copied
	}

	s.logger.InfoContext(ctx, "transfer completed",
		slog.String("source_list_id", req.SourceListID),
		slog.String("target_list_id", req.TargetListID),
		slog.String("product_id", item.ProductID),
		slog.String("quantity", req.Quantity.String()),
		slog.String("mode", string(req.Mode)),
		slog.Bool("merged", req.MergeTargetItemID != ""))

	return &ports.TransferResult{SourceItem: sourceItem, TargetItem: targetItem}, nil
}

func validateTransferRequest(req ports.TransferRequest) error {
	if req.SourceListID == "" || req.TargetListID == "" {
		return &domain.ValidationError{Field: "target_list_id", Message: "source and target list ids are required"}
	}
	if req.SourceListID == req.TargetListID {
		return &domain.ValidationError{Field: "target_list_id", Message: "target list must differ from source list"}
	}
	if req.ItemID == "" {
		return &domain.ValidationError{Field: "item_id", Message: "item_id is required"}
	}
	if !req.Quantity.IsPositive() {
		return &domain.ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}
	if !domain.ValidTransferMode(req.Mode) {
		return &domain.ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("unknown transfer mode %q", req.Mode),
		}
	}
	return nil
}

// transferIntoTarget replaces the target list with the transferred
// quantity merged in or appended, then restores the target's purchased
// items.
func (s *ListService) transferIntoTarget(ctx context.Context, req ports.TransferRequest,
	item *domain.Item, fullyPurchased bool) (*domain.Item, error) {

	target, err := s.store.GetList(ctx, req.TargetListID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target list %s: %w", req.TargetListID, err)
	}

	payload := replacePayload(target)

	// Snapshot of the target's items worth restoring, in list order,
	// with the receiving entry rewritten to its intended final state.
	var snapshot []domain.Item
	trackedID := ""

	if req.MergeTargetItemID != "" {
		merge := target.ItemByID(req.MergeTargetItemID)
		if merge == nil {
			return nil, &domain.StaleReferenceError{ItemID: req.MergeTargetItemID}
		}
		if merge.ProductID != item.ProductID {
			return nil, &domain.ValidationError{
				Field:   "merge_target_item_id",
				Message: "merge target must reference the same product as the transferred item",
			}
		}

		newOrdered := merge.OrderedQuantity.Add(req.Quantity)
		newReceived := merge.ReceivedQuantity
		if fullyPurchased {
			// Purchased state is additive on merge, never inferred
			// from fractions of a partial purchase.
			newReceived = newReceived.Add(req.Quantity)
		}

		for i := range target.Items {
			current := target.Items[i]
			if current.ID == merge.ID {
				payload.Items[i].Quantity = newOrdered
				current.OrderedQuantity = newOrdered
				current.ReceivedQuantity = newReceived
				// Always snapshotted, even when still pending, so the
				// result can point at the recreated entry.
				snapshot = append(snapshot, current)
				continue
			}
			if current.Status != domain.ItemStatusPending || current.ReceivedQuantity.IsPositive() {
				snapshot = append(snapshot, current)
			}
		}
		trackedID = merge.ID
	} else {
		payload.Items = append(payload.Items, ports.ReplaceItem{
			ProductID:     item.ProductID,
			Quantity:      req.Quantity,
			Notes:         item.Notes,
			CorrelationID: uuid.New(),
		})

		purchased, _ := target.PartitionByPurchaseState()
		snapshot = append(snapshot, purchased...)

		// Synthetic snapshot entry for the appended item. It sits last,
		// like the payload entry, so the positional tie-break resolves
		// duplicate products onto the appended recreation.
		incoming := domain.Item{
			ID:              "incoming-" + uuid.NewString(),
			ProductID:       item.ProductID,
			OrderedQuantity: req.Quantity,
			Status:          domain.ItemStatusPending,
		}
		if fullyPurchased {
			incoming.ReceivedQuantity = req.Quantity
			incoming.Status = domain.ItemStatusReceived
		}
		snapshot = append(snapshot, incoming)
		trackedID = incoming.ID
	}

	fresh, matches, err := s.replaceAndRestore(ctx, req.TargetListID, payload, snapshot, ports.OpTransferIn)
	if err != nil {
		return nil, err
	}

	freshID, ok := matches[trackedID]
	var updated *domain.Item
	if ok {
		updated = fresh.ItemByID(freshID)
	}
	if updated == nil {
		return nil, &domain.MatchingError{ListID: req.TargetListID, Failures: []domain.MatchingFailure{{
			ItemID:          trackedID,
			ProductID:       item.ProductID,
			OrderedQuantity: req.Quantity,
			Reason:          "transferred item missing from recreated target set",
		}}}
	}
	return updated, nil
}

// shrinkSource applies the move semantics to the source list: delete
// the item outright, or shrink its ordered quantity with the received
// quantity as the floor. Returns nil when the item was removed.
func (s *ListService) shrinkSource(ctx context.Context, source *domain.ShoppingList,
	item *domain.Item, quantity decimal.Decimal, fullyPurchased bool) (*domain.Item, error) {

	staleRetries := 0

	// A whole-item move (fully purchased unit, or the entire pending
	// remainder of an untouched item) removes the source entry. The
	// single-item DELETE endpoint spares the rest of the list a
	// destructive replace.
	wholePending := item.ReceivedQuantity.IsZero() && quantity.Equal(item.OrderedQuantity)
	if fullyPurchased || wholePending {
		if err := s.deleteWithRetry(ctx, source.ID, *item, &staleRetries); err != nil {
			return nil, err
		}
		if staleRetries > 0 {
			s.recordAudit(ctx, source.ID, ports.OpTransferOut, &ports.ReconciliationEvent{
				Matched:      1,
				StaleRetries: staleRetries,
			})
		}
		s.invalidate(ctx, source.ID)
		return nil, nil
	}

	// Partial move: shrink ordered, never below received. The clamp can
	// only grow the combined source+target total, it never loses
	// purchased history.
	newOrdered := item.OrderedQuantity.Sub(quantity)
	if newOrdered.LessThan(item.ReceivedQuantity) {
		newOrdered = item.ReceivedQuantity
	}

	if !newOrdered.IsPositive() {
		if err := s.deleteWithRetry(ctx, source.ID, *item, &staleRetries); err != nil {
			return nil, err
		}
		s.invalidate(ctx, source.ID)
		return nil, nil
	}

	snapshot := make([]domain.Item, 0, len(source.Items))
	for i := range source.Items {
		current := source.Items[i]
		if current.ID == item.ID {
			current.OrderedQuantity = newOrdered
			snapshot = append(snapshot, current)
			continue
		}
		if current.Status != domain.ItemStatusPending || current.ReceivedQuantity.IsPositive() {
			snapshot = append(snapshot, current)
		}
	}

	payload := replacePayload(source)
	for i := range source.Items {
		if source.Items[i].ID == item.ID {
			payload.Items[i].Quantity = newOrdered
			break
		}
	}

	fresh, matches, err := s.replaceAndRestore(ctx, source.ID, payload, snapshot, ports.OpTransferOut)
	if err != nil {
		return nil, err
	}

	freshID, ok := matches[item.ID]
	var updated *domain.Item
	if ok {
		updated = fresh.ItemByID(freshID)
	}
	if updated == nil {
		return nil, &domain.MatchingError{ListID: source.ID, Failures: []domain.MatchingFailure{{
			ItemID:           item.ID,
			ProductID:        item.ProductID,
			OrderedQuantity:  newOrdered,
			ReceivedQuantity: item.ReceivedQuantity,
			Reason:           "shrunk item missing from recreated source set",
		}}}
	}
	return updated, nil
}
