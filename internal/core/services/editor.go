// internal/core/services/editor.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// Save applies a full edit of a list's pending items.
//
// The caller submits only the pending item set; items carrying purchase
// state are carried over automatically (by product and ordered quantity
// only, since the store cannot persist their state) and restored after
// the replace. If any purchased item cannot be re-identified, no
// restoration is applied and all failures are reported together.
func (s *ListService) Save(ctx context.Context, listID string, req ports.SaveListRequest) (*domain.ShoppingList, error) {
	if listID == "" {
		return nil, &domain.ValidationError{Field: "list_id", Message: "list_id is required"}
	}
	if req.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "name is required"}
	}
	for i, draft := range req.Items {
		if draft.ProductID == "" {
			return nil, &domain.ValidationError{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: "product_id is required",
			}
		}
		if !draft.Quantity.IsPositive() {
			return nil, &domain.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be positive",
			}
		}
	}

	release, err := s.beginSequence(ctx, listID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}

	purchased, _ := current.PartitionByPurchaseState()

	// Replace payload: the submitted pending set first, then every
	// carried-over purchased item, preserving their relative order.
	items := make([]ports.ReplaceItem, 0, len(req.Items)+len(purchased))
	for _, draft := range req.Items {
		items = append(items, ports.ReplaceItem{
			ProductID:     draft.ProductID,
			Quantity:      draft.Quantity,
			Notes:         draft.Notes,
			CorrelationID: uuid.New(),
		})
	}
	for i := range purchased {
		items = append(items, ports.ReplaceItem{
			ProductID:     purchased[i].ProductID,
			Quantity:      purchased[i].OrderedQuantity,
			Notes:         purchased[i].Notes,
			CorrelationID: uuid.New(),
		})
	}

	payload := ports.ReplaceListRequest{
		Name:        req.Name,
		Description: req.Description,
		Items:       items,
	}

	fresh, _, err := s.replaceAndRestore(ctx, listID, payload, purchased, ports.OpListEdit)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "list saved",
		slog.String("list_id", listID),
		slog.Int("pending_items", len(req.Items)),
		slog.Int("restored_items", len(purchased)))

	return fresh, nil
}
