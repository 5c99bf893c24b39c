// internal/core/domain/errors.go
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports a violated quantity or field invariant. No
// state change has happened when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MatchingFailure describes one previously purchased item that could
// not be re-identified after a list replace. Its purchase history is
// at risk, so callers must surface it instead of guessing.
type MatchingFailure struct {
	ItemID           string          `json:"item_id"`
	ProductID        string          `json:"product_id"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Reason           string          `json:"reason"`
}

func (f MatchingFailure) String() string {
	return fmt.Sprintf("item %s (product %s, ordered %s, received %s): %s",
		f.ItemID, f.ProductID, f.OrderedQuantity, f.ReceivedQuantity, f.Reason)
}

// MatchingError aggregates every failure of a single reconciliation
// pass. When it is returned, no restoration patch has been applied.
type MatchingError struct {
	ListID   string
	Failures []MatchingFailure
}

func (e *MatchingError) Error() string {
	descriptions := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		descriptions[i] = f.String()
	}
	return fmt.Sprintf("list %s: could not re-identify %d purchased item(s) after replace: %s",
		e.ListID, len(e.Failures), strings.Join(descriptions, "; "))
}

// StaleReferenceError means an item id was invalidated by a replace
// between the snapshot and the call. The engine re-fetches and retries
// exactly once before escalating to a MatchingError.
type StaleReferenceError struct {
	ItemID string
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("item %s no longer exists, the list was replaced since the id was obtained", e.ItemID)
}

// ConflictError reports an operation that contradicts the current
// state: a transfer beyond the transferable quantity, or a second
// writer on a list with an edit already in flight.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
