// internal/core/services/matcher.go
package services

import (
	"github.com/pduarte/feira-be/internal/core/domain"
)

// ItemMatcher reconstructs the before/after item correspondence across
// a whole-collection replace. The upstream store assigns fresh ids on
// every replace, so the only signals left are product id, ordered
// quantity, and relative position among same-product items.
type ItemMatcher struct{}

// MatchResult separates successful matches from failures. Callers must
// check Failures before acting on Matches; reconciling on a partial
// result silently is exactly the bug this type exists to prevent.
type MatchResult struct {
	// Matches maps pre-replace item ids to post-replace item ids.
	Matches map[string]string
	// Failures lists purchased items that could not be re-identified.
	Failures []domain.MatchingFailure
}

// Match pairs each item of the pre-replace snapshot with a recreated
// item.
//
// A candidate must carry the identical product id and ordered quantity
// and must not already be claimed. When duplicates leave several
// candidates, ties break positionally: since both slices preserve the
// list's original relative order, the first unclaimed before-item of a
// product pairs with the first unclaimed candidate of that product.
// A purchased before-item (received > 0) with no candidate at all is a
// failure; guessing across non-matching quantities would silently
// misattribute purchase history.
func (ItemMatcher) Match(before, after []domain.Item) MatchResult {
	result := MatchResult{Matches: make(map[string]string, len(before))}
	claimed := make([]bool, len(after))

	for i := range before {
		b := &before[i]

		matched := false
		for j := range after {
			if claimed[j] {
				continue
			}
			a := &after[j]
			if a.ProductID != b.ProductID || !a.OrderedQuantity.Equal(b.OrderedQuantity) {
				continue
			}
			claimed[j] = true
			result.Matches[b.ID] = a.ID
			matched = true
			break
		}

		if matched {
			continue
		}
		if b.ReceivedQuantity.IsPositive() {
			result.Failures = append(result.Failures, domain.MatchingFailure{
				ItemID:           b.ID,
				ProductID:        b.ProductID,
				OrderedQuantity:  b.OrderedQuantity,
				ReceivedQuantity: b.ReceivedQuantity,
				Reason:           "no recreated item with matching product and ordered quantity",
			})
		}
		// An unmatched item without purchase state was simply removed
		// or resized by the edit; nothing to preserve.
	}

	return result
}
