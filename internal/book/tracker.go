package book

import (
	"fmt"

	"matchbook/internal/common"
)

// tracker wraps one order with the open-quantity bookkeeping the matching
// loop needs while the order is live on a book. It is created by the Add or
// Replace call that submits the order; once the order rests, the book keeps
// the same tracker inside its bookEntry, where it carries the live open
// quantity until the order is filled, cancelled or replaced.
type tracker struct {
	order      *Order
	openQty    common.Quantity
	conditions common.OrderConditions
}

func newTracker(order *Order, conditions common.OrderConditions) *tracker {
	return &tracker{order: order, openQty: order.Quantity, conditions: conditions}
}

// fill reduces the open quantity by qty. Filling past zero is a programmer
// error — the matching loop must never offer more quantity than a tracker
// has open — so this panics rather than returning an error, matching the
// original engine's "this can never happen" runtime_error.
func (t *tracker) fill(qty common.Quantity) {
	if qty > t.openQty {
		panic(fmt.Sprintf("order %s: fill of %d exceeds open quantity %d", t.order.ID, qty, t.openQty))
	}
	t.openQty -= qty
}

func (t *tracker) filled() bool                { return t.openQty == 0 }
func (t *tracker) filledQty() common.Quantity  { return t.order.Quantity - t.openQty }
func (t *tracker) openQuantity() common.Quantity { return t.openQty }

// allOrNone and immediateOrCancel test individual bits rather than the
// whole field, since conditions are combinable (spec deviation: the
// original engine's equality comparison against a single enum value breaks
// once AON and IOC are both set).
func (t *tracker) allOrNone() bool       { return t.conditions.AllOrNone() }
func (t *tracker) immediateOrCancel() bool { return t.conditions.IOC() }
