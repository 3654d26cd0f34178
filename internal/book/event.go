package book

import "matchbook/internal/common"

// EventKind identifies which observer method an Event dispatches to.
type EventKind int

const (
	EventAccept EventKind = iota
	EventReject
	EventFill
	EventCancel
	EventCancelReject
	EventReplace
	EventReplaceReject
	EventBookUpdate
)

// Event is one entry on a book's drain queue. Mutating methods on OrderBook
// never call an observer directly — they enqueue an Event and let drain()
// dispatch it, so that an observer calling back into the book mid-mutation
// (e.g. cancelling a just-filled order from inside a Fill callback) can
// never see half-updated book state.
type Event struct {
	Kind EventKind

	Order         *Order
	MatchedOrder  *Order
	Quantity      common.Quantity
	Price         common.Price
	Delta         common.Delta
	RejectReason  string
	FillID        common.FillID
}

func acceptEvent(order *Order) Event {
	return Event{Kind: EventAccept, Order: order}
}

func rejectEvent(order *Order, reason string) Event {
	return Event{Kind: EventReject, Order: order, RejectReason: reason}
}

func fillEvent(inbound, matched *Order, qty common.Quantity, price common.Price) Event {
	return Event{Kind: EventFill, Order: inbound, MatchedOrder: matched, Quantity: qty, Price: price}
}

func cancelEvent(order *Order, openQty common.Quantity) Event {
	return Event{Kind: EventCancel, Order: order, Quantity: openQty}
}

func cancelRejectEvent(order *Order, reason string) Event {
	return Event{Kind: EventCancelReject, Order: order, RejectReason: reason}
}

func replaceEvent(passivated *Order, openQty common.Quantity, newOrder *Order) Event {
	return Event{
		Kind:     EventReplace,
		Order:    passivated,
		Quantity: openQty,
		Delta:    common.Delta(int64(newOrder.Quantity) - int64(passivated.Quantity)),
		Price:    newOrder.Price,
	}
}

func replaceRejectEvent(order *Order, reason string) Event {
	return Event{Kind: EventReplaceReject, Order: order, RejectReason: reason}
}

func bookUpdateEvent() Event {
	return Event{Kind: EventBookUpdate}
}
