package book

import (
	"fmt"

	"matchbook/internal/common"
)

// State is one entry in an order's lifecycle history.
type State int

const (
	StateUnknown State = iota
	StateRejected
	StateAccepted
	StateReplaceRejected
	StateReplaced
	StatePartialFilled
	StateFilled
	StateCancelRejected
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRejected:
		return "REJECTED"
	case StateAccepted:
		return "ACCEPTED"
	case StateReplaceRejected:
		return "REPLACE_REJECTED"
	case StateReplaced:
		return "REPLACED"
	case StatePartialFilled:
		return "PARTIAL_FILLED"
	case StateFilled:
		return "FILLED"
	case StateCancelRejected:
		return "CANCEL_REJECTED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// StateChange is one history entry recorded against an order.
type StateChange struct {
	State       State
	Description string
}

func (c StateChange) String() string {
	return fmt.Sprintf("state=%s %s", c.State, c.Description)
}

// MatchedTrade records one fill from the perspective of a single order's
// trade log. Quantity is this order's fill size in that trade; the
// counterparty's quantity-remaining-on-market is kept for downstream
// reporting/diagnostics, per the original engine's MatchedTrade struct.
type MatchedTrade struct {
	MatchedOrderID   common.OrderId
	FillCost         common.Cost
	Quantity         common.Quantity
	QuantityOnMarket common.Quantity
	Price            common.Price
	FillID           common.FillID
}

// Order is one resting or transient order in the market. Quantity and
// Price reflect the order's CURRENT terms — a Replace event applied to the
// order mutates them in place. History records that a replace happened
// (StateReplaced) but does not keep the prior terms.
type Order struct {
	ID       common.OrderId
	Side     common.Side
	Symbol   common.Symbol
	Quantity common.Quantity
	Price    common.Price

	quantityFilled   common.Quantity
	quantityOnMarket common.Quantity
	fillCost         common.Cost
	history          []StateChange
	trades           []MatchedTrade
}

// NewOrder constructs an order in its initial, not-yet-submitted state.
func NewOrder(id common.OrderId, side common.Side, symbol common.Symbol, qty common.Quantity, price common.Price) *Order {
	return &Order{
		ID:               id,
		Side:             side,
		Symbol:           symbol,
		Quantity:         qty,
		Price:            price,
		quantityOnMarket: qty,
	}
}

func (o *Order) IsBuy() bool { return o.Side == common.Buy }

func (o *Order) QuantityOnMarket() common.Quantity { return o.quantityOnMarket }
func (o *Order) QuantityFilled() common.Quantity   { return o.quantityFilled }
func (o *Order) FillCost() common.Cost             { return o.fillCost }
func (o *Order) History() []StateChange            { return o.history }
func (o *Order) Trades() []MatchedTrade             { return o.trades }

func (o *Order) onAccepted() {
	o.history = append(o.history, StateChange{State: StateAccepted})
}

func (o *Order) onRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateRejected, Description: reason})
}

func (o *Order) onFilled(fillQty common.Quantity, fillCost common.Cost) {
	o.quantityFilled += fillQty
	o.quantityOnMarket -= fillQty
	o.fillCost += fillCost
	state := StatePartialFilled
	if o.quantityOnMarket == 0 {
		state = StateFilled
	}
	o.history = append(o.history, StateChange{State: state})
}

func (o *Order) addTradeHistory(fillQty, counterpartyRemaining common.Quantity, fillCost common.Cost, matchedID common.OrderId, price common.Price, fillID common.FillID) {
	o.trades = append(o.trades, MatchedTrade{
		MatchedOrderID:   matchedID,
		FillCost:         fillCost,
		Quantity:         fillQty,
		QuantityOnMarket: counterpartyRemaining,
		Price:            price,
		FillID:           fillID,
	})
}

func (o *Order) onCancelled() {
	o.quantityOnMarket = 0
	o.history = append(o.history, StateChange{State: StateCancelled})
}

func (o *Order) onCancelRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateCancelRejected, Description: reason})
}

func (o *Order) onReplaced(sizeDelta common.Delta, newPrice common.Price) {
	if newPrice != common.PriceUnchanged {
		o.Price = newPrice
	}
	if sizeDelta != common.SizeUnchanged {
		newQty := common.Quantity(int64(o.Quantity) + int64(sizeDelta))
		o.quantityOnMarket = common.Quantity(int64(o.quantityOnMarket) + int64(sizeDelta))
		o.Quantity = newQty
	}
	o.history = append(o.history, StateChange{State: StateReplaced})
}

func (o *Order) onReplaceRejected(reason string) {
	o.history = append(o.history, StateChange{State: StateReplaceRejected, Description: reason})
}

func (o *Order) String() string {
	return fmt.Sprintf("Order[id=%s side=%s symbol=%s qty=%d price=%s open=%d filled=%d]",
		o.ID, o.Side, o.Symbol, o.Quantity, o.Price, o.quantityOnMarket, o.quantityFilled)
}
