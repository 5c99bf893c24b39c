// internal/core/domain/quantity.go
package domain

import "github.com/shopspring/decimal"

// QuantityBreakdown groups the quantity fields of a single item for
// validation. The invariant chain is
//
//	0 <= returned <= defective <= received <= ordered
//
// and the derived final quantity is received - returned.
type QuantityBreakdown struct {
	Ordered   decimal.Decimal `json:"ordered"`
	Received  decimal.Decimal `json:"received"`
	Defective decimal.Decimal `json:"defective"`
	Returned  decimal.Decimal `json:"returned"`
}

// QuantityResolution is the outcome of a successful validation: the
// final quantity and the status the item lands in.
type QuantityResolution struct {
	Final  decimal.Decimal `json:"final"`
	Status ItemStatus      `json:"status"`
}

// Validate runs the invariant checks in order, first failure wins.
// Received may lawfully exceed ordered in the store model, but callers
// always resize ordered to the purchased total before validating, so a
// received > ordered here means a caller skipped that step.
func (q QuantityBreakdown) Validate() (QuantityResolution, error) {
	switch {
	case q.Received.IsNegative():
		return QuantityResolution{}, &ValidationError{
			Field:   "received",
			Message: "received quantity cannot be negative",
		}
	case q.Received.GreaterThan(q.Ordered):
		return QuantityResolution{}, &ValidationError{
			Field:   "received",
			Message: "received quantity cannot exceed ordered quantity",
		}
	case q.Defective.IsNegative():
		return QuantityResolution{}, &ValidationError{
			Field:   "defective",
			Message: "defective quantity cannot be negative",
		}
	case q.Defective.GreaterThan(q.Received):
		return QuantityResolution{}, &ValidationError{
			Field:   "defective",
			Message: "defective quantity cannot exceed received quantity",
		}
	case q.Returned.IsNegative():
		return QuantityResolution{}, &ValidationError{
			Field:   "returned",
			Message: "returned quantity cannot be negative",
		}
	case q.Returned.GreaterThan(q.Defective):
		return QuantityResolution{}, &ValidationError{
			Field:   "returned",
			Message: "returned quantity cannot exceed defective quantity",
		}
	}

	resolution := QuantityResolution{
		Final:  q.Received.Sub(q.Returned),
		Status: ItemStatusPurchased,
	}
	if q.Received.IsPositive() {
		resolution.Status = ItemStatusReceived
	}
	return resolution, nil
}

// Apply writes a validated breakdown back onto an item.
func (i *Item) Apply(q QuantityBreakdown, r QuantityResolution) {
	i.ReceivedQuantity = q.Received
	i.DefectiveQuantity = q.Defective
	i.ReturnedQuantity = q.Returned
	i.FinalQuantity = r.Final
	i.Status = r.Status
}
