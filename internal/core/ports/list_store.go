// internal/core/ports/list_store.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
)

// ReplaceItem is one entry of a whole-collection replace payload. This
// is everything the upstream store persists per item; purchase state is
// deliberately absent because the store cannot keep it.
type ReplaceItem struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Notes         string          `json:"notes,omitempty"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
}

// ReplaceListRequest is the body of PUT /lists/{id}. The store destroys
// and recreates every item: fresh ids, received quantity zeroed, status
// back to PENDING.
type ReplaceListRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Items       []ReplaceItem `json:"items"`
}

// ItemQuantityPatch updates the quantity breakdown of one existing item
// id. The store derives status and final quantity from it.
type ItemQuantityPatch struct {
	Received  decimal.Decimal `json:"received"`
	Defective decimal.Decimal `json:"defective"`
	Returned  decimal.Decimal `json:"returned"`
}

// ListStore is the port to the upstream persistence collaborator. There
// is no batch or transactional multi-item call; every cross-item
// guarantee is enforced on this side.
//
// PatchItemQuantities and DeleteItem return *domain.StaleReferenceError
// when the item id was invalidated by an intervening replace.
type ListStore interface {
	GetList(ctx context.Context, listID string) (*domain.ShoppingList, error)
	ReplaceList(ctx context.Context, listID string, req ReplaceListRequest) (*domain.ShoppingList, error)
	PatchItemQuantities(ctx context.Context, itemID string, patch ItemQuantityPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	Ping(ctx context.Context) error
}
