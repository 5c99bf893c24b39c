// internal/core/ports/list_service.go
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
)

// ItemDraft is an item as submitted by a list edit: no identity, no
// purchase state.
type ItemDraft struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// SaveListRequest is a full edit of a list's pending items. Items that
// already carry purchase state are not part of the request; the editor
// carries them over and restores their state after the replace.
type SaveListRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Items       []ItemDraft `json:"items"`
}

// TransferRequest moves or duplicates a quantity of one item into
// another list. MergeTargetItemID, when set, names an existing item of
// the target list (same product) that absorbs the quantity instead of a
// new item being appended.
type TransferRequest struct {
	SourceListID      string              `json:"source_list_id"`
	ItemID            string              `json:"item_id"`
	Quantity          decimal.Decimal     `json:"quantity"`
	TargetListID      string              `json:"target_list_id"`
	Mode              domain.TransferMode `json:"mode"`
	MergeTargetItemID string              `json:"merge_target_item_id,omitempty"`
}

// TransferResult reports both sides of a completed transfer. SourceItem
// is nil when the move removed the item from the source list.
type TransferResult struct {
	SourceItem *domain.Item `json:"source_item,omitempty"`
	TargetItem *domain.Item `json:"target_item"`
}

// ListService is the application port over the reconciliation engine.
type ListService interface {
	GetList(ctx context.Context, listID string) (*domain.ShoppingList, error)
	Save(ctx context.Context, listID string, req SaveListRequest) (*domain.ShoppingList, error)
	RecordPurchase(ctx context.Context, listID, itemID string, totalPurchased decimal.Decimal, policy domain.ReorderPolicy) (*domain.Item, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}
