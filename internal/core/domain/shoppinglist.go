// internal/core/domain/shoppinglist.go
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the purchase lifecycle state of a list item
type ItemStatus string

// Item status constants
const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusPurchased ItemStatus = "PURCHASED"
	ItemStatusReceived  ItemStatus = "RECEIVED"
)

// ListStatus represents the derived state of a whole shopping list
type ListStatus string

// List status constants. The values are the wire-level states the
// upstream store and the mobile clients already speak.
const (
	ListStatusPendente  ListStatus = "pendente"
	ListStatusComprando ListStatus = "comprando"
	ListStatusConcluida ListStatus = "concluida"
)

// ReorderPolicy controls what happens to the ordered quantity when a
// purchase is recorded for less than what was ordered.
type ReorderPolicy string

const (
	// ReorderKeepOriginal leaves the ordered quantity alone; the
	// unpurchased remainder stays pending.
	ReorderKeepOriginal ReorderPolicy = "keepOriginal"
	// ReorderRaiseToPurchased resizes the ordered quantity down (or up)
	// to exactly what was purchased.
	ReorderRaiseToPurchased ReorderPolicy = "raiseOrderedToPurchased"
)

// TransferMode selects between moving quantity out of the source item
// and duplicating it into the target list.
type TransferMode string

const (
	TransferModeMove      TransferMode = "move"
	TransferModeDuplicate TransferMode = "duplicate"
)

// Item is a single entry of a shopping list.
//
// The upstream store recreates every item of a list on each replace, so
// ID is only valid until the next ReplaceList call for the owning list.
// CorrelationID is client-assigned, travels with replace payloads, and
// exists so a future store version can hand back stable identities.
type Item struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	CorrelationID     uuid.UUID       `json:"correlation_id"`
	OrderedQuantity   decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	DefectiveQuantity decimal.Decimal `json:"defective_quantity"`
	ReturnedQuantity  decimal.Decimal `json:"returned_quantity"`
	FinalQuantity     decimal.Decimal `json:"final_quantity"`
	Status            ItemStatus      `json:"status"`
	Notes             string          `json:"notes,omitempty"`
}

// ShoppingList is a named, ordered collection of items. Item order is
// semantically significant: the matcher uses relative position to break
// ties between duplicate products.
type ShoppingList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Items       []Item `json:"items"`
}

// IsPending reports whether no purchase has been recorded yet.
func (i *Item) IsPending() bool {
	return i.Status == ItemStatusPending && i.ReceivedQuantity.IsZero()
}

// IsFullyPurchased reports whether the received quantity covers the
// ordered quantity. Fully purchased items transfer only as a whole.
func (i *Item) IsFullyPurchased() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.OrderedQuantity)
}

// PendingQuantity returns the unpurchased remainder of the ordered
// quantity, never negative.
func (i *Item) PendingQuantity() decimal.Decimal {
	remainder := i.OrderedQuantity.Sub(i.ReceivedQuantity)
	if remainder.IsNegative() {
		return decimal.Zero
	}
	return remainder
}

// TransferableQuantity returns how much of this item may leave the
// list: the whole ordered quantity for fully purchased items, the
// pending remainder otherwise.
func (i *Item) TransferableQuantity() decimal.Decimal {
	if i.IsFullyPurchased() {
		return i.OrderedQuantity
	}
	return i.PendingQuantity()
}

// Validate performs domain validation on the item
func (i *Item) Validate() error {
	if i.ProductID == "" {
		return &ValidationError{Field: "product_id", Message: "product_id is required"}
	}
	if !i.OrderedQuantity.IsPositive() {
		return &ValidationError{Field: "ordered_quantity", Message: "ordered_quantity must be positive"}
	}
	breakdown := i.QuantityBreakdown()
	if _, err := breakdown.Validate(); err != nil {
		return err
	}
	return nil
}

// QuantityBreakdown extracts the quantity fields that participate in
// the received/defective/returned invariant chain.
func (i *Item) QuantityBreakdown() QuantityBreakdown {
	return QuantityBreakdown{
		Ordered:   i.OrderedQuantity,
		Received:  i.ReceivedQuantity,
		Defective: i.DefectiveQuantity,
		Returned:  i.ReturnedQuantity,
	}
}

// Status derives the list state from its item states: pendente while
// everything is untouched, concluida once nothing is pending, comprando
// in between. An empty list is pendente.
func (l *ShoppingList) Status() ListStatus {
	if len(l.Items) == 0 {
		return ListStatusPendente
	}

	pending, settled := 0, 0
	for idx := range l.Items {
		if l.Items[idx].IsPending() {
			pending++
		} else {
			settled++
		}
	}

	switch {
	case settled == 0:
		return ListStatusPendente
	case pending == 0:
		return ListStatusConcluida
	default:
		return ListStatusComprando
	}
}

// ItemByID returns a pointer into the list's item slice, or nil.
func (l *ShoppingList) ItemByID(itemID string) *Item {
	for idx := range l.Items {
		if l.Items[idx].ID == itemID {
			return &l.Items[idx]
		}
	}
	return nil
}

// PartitionByPurchaseState splits the items into those carrying
// purchase state worth preserving across a replace and those that are
// still plain pending entries. Relative order is preserved in both
// halves.
func (l *ShoppingList) PartitionByPurchaseState() (purchased, pending []Item) {
	for _, item := range l.Items {
		if item.Status != ItemStatusPending || item.ReceivedQuantity.IsPositive() {
			purchased = append(purchased, item)
		} else {
			pending = append(pending, item)
		}
	}
	return purchased, pending
}

// ValidReorderPolicy reports whether p is one of the known policies.
func ValidReorderPolicy(p ReorderPolicy) bool {
	return p == ReorderKeepOriginal || p == ReorderRaiseToPurchased
}

// ValidTransferMode reports whether m is one of the known modes.
func ValidTransferMode(m TransferMode) bool {
	return m == TransferModeMove || m == TransferModeDuplicate
}
