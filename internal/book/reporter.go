package book

import "matchbook/internal/common"

// Reporter is the protocol-facing observer an OrderBook drains events to.
// Implementations must not block and must not themselves call back into the
// book synchronously beyond what the drain loop already tolerates (a
// Reporter method may safely call Market/OrderBook methods again — that
// re-entrancy is exactly what the drain queue exists to make safe).
type Reporter interface {
	// Trade is invoked once per fill, inbound (taker) order first, matched
	// (resting, maker) order second. The TRADE line format prints the
	// matched order's fields first, so implementations reorder them.
	Trade(inbound, matched *Order, fillQty common.Quantity, fillPrice common.Price, fillID common.FillID)
}

// NopReporter discards every event. Useful for tests that only care about
// book state, not protocol output.
type NopReporter struct{}

func (NopReporter) Trade(*Order, *Order, common.Quantity, common.Price, common.FillID) {}
