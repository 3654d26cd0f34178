// Package book implements one symbol's limit order book: price-time
// priority matching, the market/IOC order variants, the replace protocol,
// and the re-entrant event drain that feeds a Reporter.
package book

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"matchbook/internal/common"
)

var (
	// ErrOrderNotFound describes a Cancel or Replace naming an order id that
	// isn't resting on this book. Cancel and Replace do not return it: they
	// report that case as a CancelReject or ReplaceReject event.
	ErrOrderNotFound = errors.New("order not found on book")
	// ErrInvalidSize describes an Add given a non-positive quantity. Add does
	// not return it: it reports that case as a Reject event and returns false.
	ErrInvalidSize = errors.New("order size must be positive")
)

// bookEntry is one resting order: its sort key plus the tracker carrying
// its live open quantity and conditions.
type bookEntry struct {
	key     ComparablePrice
	tracker *tracker
}

// OrderBook holds one symbol's two sides and the event queue that
// serializes every observer-visible effect of a mutation.
type OrderBook struct {
	symbol common.Symbol

	bids *btree.BTreeG[*bookEntry]
	asks *btree.BTreeG[*bookEntry]

	// resting indexes every live order by id for O(1) cancel/replace
	// lookup. The original engine's FindOnMarket scans the matching price
	// level linearly; spec.md §4.1 and §9 explicitly permit an alternative
	// representation that preserves price/time priority, so this trades a
	// small amount of memory for a lookup that doesn't degrade with the
	// number of orders resting at one price.
	resting map[common.OrderId]*bookEntry

	entryLess func(a, b *bookEntry) bool

	marketPrice common.Price
	seq         uint64
	nextFillID  common.FillID

	reporter Reporter

	queue    []Event
	working  []Event
	draining bool
}

// NewOrderBook returns an empty book for symbol, reporting every event to
// reporter.
func NewOrderBook(symbol common.Symbol, reporter Reporter) *OrderBook {
	if reporter == nil {
		reporter = NopReporter{}
	}
	entryLess := func(a, b *bookEntry) bool { return less(a.key, b.key) }
	return &OrderBook{
		symbol:    symbol,
		bids:      btree.NewBTreeG(entryLess),
		asks:      btree.NewBTreeG(entryLess),
		resting:   make(map[common.OrderId]*bookEntry),
		entryLess: entryLess,
		reporter:  reporter,
	}
}

func (b *OrderBook) Symbol() common.Symbol { return b.symbol }

// Add submits a new order to the book. It returns whether the order traded
// against any resting liquidity. Matching, resting, and (for IOC orders
// with unfilled residual) cancellation are all settled before Add returns;
// the caller observes their effects through events drained to the
// reporter, not through this return value alone.
func (b *OrderBook) Add(order *Order, conditions common.OrderConditions) bool {
	matched := false

	if order.Quantity <= 0 {
		b.enqueue(rejectEvent(order, "size must be positive"))
	} else {
		b.enqueue(acceptEvent(order))
		acceptIdx := len(b.queue) - 1

		inbound := newTracker(order, conditions)
		matched = b.submitOrder(inbound)
		b.queue[acceptIdx].Quantity = inbound.filledQty()

		if inbound.immediateOrCancel() && !inbound.filled() {
			b.enqueue(cancelEvent(order, 0))
		}
		b.enqueue(bookUpdateEvent())
	}

	b.drain()
	return matched
}

// Cancel removes order from the book it's resting on, if it's still there.
func (b *OrderBook) Cancel(order *Order) {
	entry, found := b.resting[order.ID]
	if found {
		openQty := entry.tracker.openQuantity()
		b.sideTree(order.IsBuy()).Delete(entry)
		delete(b.resting, order.ID)
		b.enqueue(cancelEvent(order, openQty))
		b.enqueue(bookUpdateEvent())
	} else {
		b.enqueue(cancelRejectEvent(order, "not found"))
	}
	b.drain()
}

// Replace swaps passivated for newOrder. A side flip (buy becomes sell or
// vice versa) removes passivated without a Cancel event and submits
// newOrder through Add, losing time priority unconditionally; a same-side
// replace re-submits at the new terms, which still loses time priority (it
// re-enters the book as a new insertion) and is reported as an Accept of
// newOrder followed by a Replace event on passivated.
func (b *OrderBook) Replace(passivated, newOrder *Order) bool {
	matched := false

	entry, found := b.resting[passivated.ID]
	if !found {
		b.enqueue(replaceRejectEvent(newOrder, "not found"))
		b.drain()
		return false
	}

	if passivated.IsBuy() != newOrder.IsBuy() {
		b.sideTree(passivated.IsBuy()).Delete(entry)
		delete(b.resting, passivated.ID)
		b.enqueue(bookUpdateEvent())
		matched = b.Add(newOrder, common.ConditionNone)
	} else {
		b.enqueue(acceptEvent(newOrder))
		b.enqueue(replaceEvent(passivated, entry.tracker.openQuantity(), newOrder))
		b.sideTree(passivated.IsBuy()).Delete(entry)
		delete(b.resting, passivated.ID)

		inbound := newTracker(newOrder, common.ConditionNone)
		matched = b.addOrder(inbound, newOrder.Price)
		b.enqueue(bookUpdateEvent())
		b.drain()
	}
	return matched
}

// AllOrderCancel cancels every order resting on this book and returns their
// ids, so a caller (Market, tearing down a symbol) can remove them from its
// own index too. This supplements spec.md's AddBook with the original
// engine's RemoveBook teardown behavior.
func (b *OrderBook) AllOrderCancel() []common.OrderId {
	var ids []common.OrderId
	for id, entry := range b.resting {
		ids = append(ids, id)
		b.enqueue(cancelEvent(entry.tracker.order, entry.tracker.openQuantity()))
	}
	b.bids = btree.NewBTreeG(b.entryLess)
	b.asks = btree.NewBTreeG(b.entryLess)
	b.resting = make(map[common.OrderId]*bookEntry)
	if len(ids) > 0 {
		b.enqueue(bookUpdateEvent())
	}
	b.drain()
	return ids
}

func (b *OrderBook) sideTree(buy bool) *btree.BTreeG[*bookEntry] {
	if buy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) submitOrder(inbound *tracker) bool {
	return b.addOrder(inbound, inbound.order.Price)
}

func (b *OrderBook) addOrder(inbound *tracker, orderPrice common.Price) bool {
	order := inbound.order

	var matched bool
	if order.IsBuy() {
		matched = b.matchOrder(inbound, orderPrice, b.asks)
	} else {
		matched = b.matchOrder(inbound, orderPrice, b.bids)
	}

	if inbound.openQuantity() > 0 && !inbound.immediateOrCancel() {
		b.seq++
		entry := &bookEntry{key: newComparablePrice(order.IsBuy(), orderPrice, b.seq), tracker: inbound}
		b.sideTree(order.IsBuy()).Set(entry)
		b.resting[order.ID] = entry
	}
	return matched
}

func (b *OrderBook) matchOrder(inbound *tracker, inboundPrice common.Price, opposite *btree.BTreeG[*bookEntry]) bool {
	if inbound.allOrNone() {
		// TODO: full all-or-none matching (scan for a satisfying
		// contiguous run of resting quantity) is not implemented; an
		// AON order is accepted but never matches, per spec.md §9.
		return false
	}
	return b.matchRegularOrder(inbound, inboundPrice, opposite)
}

func (b *OrderBook) matchRegularOrder(inbound *tracker, inboundPrice common.Price, opposite *btree.BTreeG[*bookEntry]) bool {
	matched := false
	var filled []*bookEntry

	opposite.Scan(func(entry *bookEntry) bool {
		if inbound.filled() {
			return false
		}
		if !entry.key.Matches(inboundPrice) {
			return false
		}
		traded := b.createTrade(inbound, entry.tracker)
		if traded > 0 {
			matched = true
			if entry.tracker.filled() {
				filled = append(filled, entry)
			}
		}
		return true
	})

	for _, entry := range filled {
		opposite.Delete(entry)
		delete(b.resting, entry.tracker.order.ID)
	}
	return matched
}

// createTrade fills min(open quantities) between inbound and current at a
// cross price resolved in the original engine's order: the resting order's
// own price, falling back to the inbound order's price, falling back to
// the book's last traded price, and finally giving up (no trade) if none of
// those is a real price.
func (b *OrderBook) createTrade(inbound, current *tracker) common.Quantity {
	crossPrice := current.order.Price
	if crossPrice == common.MarketOrderPrice {
		crossPrice = inbound.order.Price
	}
	if crossPrice == common.MarketOrderPrice {
		crossPrice = b.marketPrice
	}
	if crossPrice == common.MarketOrderPrice {
		return 0
	}

	fillQty := inbound.openQuantity()
	if current.openQuantity() < fillQty {
		fillQty = current.openQuantity()
	}
	if fillQty == 0 {
		return 0
	}

	inbound.fill(fillQty)
	current.fill(fillQty)
	b.marketPrice = crossPrice
	b.enqueue(fillEvent(inbound.order, current.order, fillQty, crossPrice))
	return fillQty
}

func (b *OrderBook) enqueue(e Event) {
	b.queue = append(b.queue, e)
}

// drain dispatches every queued event to performCallback, including events
// that performCallback itself enqueues while running (e.g. a Reporter
// calling Cancel on another order from inside its Trade method). draining
// guards against re-entering this loop: a nested drain() call just adds to
// the queue that the outer call is already working through.
func (b *OrderBook) drain() {
	if b.draining {
		return
	}
	b.draining = true
	defer func() { b.draining = false }()

	for len(b.queue) > 0 {
		b.working, b.queue = b.queue, b.working[:0]
		for i := range b.working {
			b.performCallback(&b.working[i])
		}
	}
}

func (b *OrderBook) performCallback(e *Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("caught panic during order book callback")
		}
	}()

	switch e.Kind {
	case EventAccept:
		e.Order.onAccepted()
		log.Debug().Str("order_id", string(e.Order.ID)).Msg("order accepted")
	case EventReject:
		e.Order.onRejected(e.RejectReason)
		log.Debug().Str("order_id", string(e.Order.ID)).Str("reason", e.RejectReason).Msg("order rejected")
	case EventFill:
		b.onFill(e)
	case EventCancel:
		e.Order.onCancelled()
		log.Debug().Str("order_id", string(e.Order.ID)).Msg("order cancelled")
	case EventCancelReject:
		e.Order.onCancelRejected(e.RejectReason)
		log.Debug().Str("order_id", string(e.Order.ID)).Str("reason", e.RejectReason).Msg("cancel rejected")
	case EventReplace:
		e.Order.onReplaced(e.Delta, e.Price)
		log.Debug().Str("order_id", string(e.Order.ID)).Msg("order replaced")
	case EventReplaceReject:
		e.Order.onReplaceRejected(e.RejectReason)
		log.Debug().Str("order_id", string(e.Order.ID)).Str("reason", e.RejectReason).Msg("replace rejected")
	case EventBookUpdate:
		// no-op hook: a future richer depth-change notification would
		// attach here, matching the original engine's OnOrderBookChange.
	}
}

// onFill applies a fill to both sides' order state and reports it. The
// trade id is minted here, at dispatch time, so that re-entrant fills
// (a Reporter placing a new order from inside Trade) still get strictly
// increasing ids in dispatch order.
func (b *OrderBook) onFill(e *Event) {
	fillCost := common.Cost(e.Price) * common.Cost(e.Quantity)
	b.nextFillID++
	fillID := b.nextFillID

	e.Order.onFilled(e.Quantity, fillCost)
	e.MatchedOrder.onFilled(e.Quantity, fillCost)

	e.Order.addTradeHistory(e.Quantity, e.MatchedOrder.QuantityOnMarket(), fillCost, e.MatchedOrder.ID, e.MatchedOrder.Price, fillID)
	e.MatchedOrder.addTradeHistory(e.Quantity, e.Order.QuantityOnMarket(), fillCost, e.Order.ID, e.Order.Price, fillID)

	log.Info().
		Str("inbound_id", string(e.Order.ID)).
		Str("matched_id", string(e.MatchedOrder.ID)).
		Uint64("qty", uint64(e.Quantity)).
		Msg("fill")

	b.reporter.Trade(e.Order, e.MatchedOrder, e.Quantity, e.Price, fillID)
}

// DepthLevel is one aggregated price level of the PRINT dump.
type DepthLevel struct {
	Price    common.Price
	Quantity common.Quantity
}

// Depth returns the aggregated open quantity at every resting price on one
// side, sorted ascending by price (PRINT prints each side high-to-low, so
// callers reverse this as needed).
func (b *OrderBook) Depth(buy bool) []DepthLevel {
	totals := make(map[common.Price]common.Quantity)
	var order []common.Price
	b.sideTree(buy).Scan(func(entry *bookEntry) bool {
		p := entry.key.Price()
		if _, ok := totals[p]; !ok {
			order = append(order, p)
		}
		totals[p] += entry.tracker.openQuantity()
		return true
	})

	levels := make([]DepthLevel, 0, len(order))
	for _, p := range order {
		levels = append(levels, DepthLevel{Price: p, Quantity: totals[p]})
	}
	sortLevelsByPrice(levels)
	return levels
}

func sortLevelsByPrice(levels []DepthLevel) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && levels[j].Price < levels[j-1].Price; j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}

// Log writes a diagnostic snapshot of both sides to the structured logger.
// This is the ambient/debug channel, distinct from the PRINT wire dump
// that internal/report produces.
func (b *OrderBook) Log() {
	log.Info().Str("symbol", string(b.symbol)).Msg("SELL:")
	asks := b.Depth(false)
	for i := len(asks) - 1; i >= 0; i-- {
		log.Info().Uint64("price", uint64(asks[i].Price)).Uint64("qty", uint64(asks[i].Quantity)).Msg("ask level")
	}
	log.Info().Str("symbol", string(b.symbol)).Msg("BUY:")
	bids := b.Depth(true)
	for i := len(bids) - 1; i >= 0; i-- {
		log.Info().Uint64("price", uint64(bids[i].Price)).Uint64("qty", uint64(bids[i].Quantity)).Msg("bid level")
	}
}
