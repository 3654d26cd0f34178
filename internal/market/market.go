// Package market is the symbol-to-book registry and order-id index sitting
// above internal/book: it routes commands to the right book, validates
// order/cancel/replace requests, and garbage-collects orders once they're
// fully filled or cancelled.
package market

import (
	"errors"

	"github.com/rs/zerolog/log"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrUnknownOrder       = errors.New("unknown order id")
	ErrDuplicateOrder     = errors.New("duplicate order id")
	ErrMarketPriceReplace = errors.New("modify requires a limit price, not a market order")
)

// Market owns every book and the set of currently-live orders across all of
// them.
type Market struct {
	books  map[common.Symbol]*book.OrderBook
	orders map[common.OrderId]*book.Order

	reporter book.Reporter
}

func New(reporter book.Reporter) *Market {
	return &Market{
		books:    make(map[common.Symbol]*book.OrderBook),
		orders:   make(map[common.OrderId]*book.Order),
		reporter: reporter,
	}
}

// AddBook creates symbol's book, or replaces it if one already exists.
// Replacing an existing book cancels every order still resting on it first
// (see DESIGN.md "AllOrderCancel"), so the market's order index never ends
// up pointing at a book that no longer exists.
func (m *Market) AddBook(symbol common.Symbol) {
	log.Info().Str("symbol", string(symbol)).Msg("creating order book")
	if existing, ok := m.books[symbol]; ok {
		for _, id := range existing.AllOrderCancel() {
			m.removeOrder(id)
		}
	}
	m.books[symbol] = book.NewOrderBook(symbol, m.reporter)
}

// OrderEntry submits a new order. The order must name a symbol with an
// existing book and an id not already in use.
func (m *Market) OrderEntry(order *book.Order, conditions common.OrderConditions) error {
	if _, exists := m.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	b, ok := m.books[order.Symbol]
	if !ok {
		log.Error().Str("symbol", string(order.Symbol)).Msg("order references unknown symbol")
		return ErrUnknownSymbol
	}

	log.Info().Str("order_id", string(order.ID)).Msg("adding order")
	m.orders[order.ID] = order
	b.Add(order, conditions)

	for _, trade := range order.Trades() {
		if matched, ok := m.orders[trade.MatchedOrderID]; ok && matched.QuantityOnMarket() == 0 {
			m.removeOrder(matched.ID)
		}
	}
	if order.QuantityOnMarket() == 0 {
		m.removeOrder(order.ID)
	}
	return nil
}

// OrderModify replaces an existing, still-live order with newOrder. Per
// spec.md §9's resolution of the same-id-MODIFY Open Question, the
// market's order index is rebound to newOrder unconditionally once the
// book accepts the replace, regardless of whether the book took the
// same-side or cross-side (cancel+add) internal path — the book has no
// visibility into the market's index, so only the market can do this.
func (m *Market) OrderModify(passivatedID common.OrderId, newOrder *book.Order) error {
	if newOrder.Price == common.MarketOrderPrice {
		log.Error().Str("order_id", string(passivatedID)).Msg("modify rejected: market price not allowed on replace")
		return ErrMarketPriceReplace
	}
	passivated, ok := m.orders[passivatedID]
	if !ok {
		return ErrUnknownOrder
	}
	b, ok := m.books[passivated.Symbol]
	if !ok {
		return ErrUnknownSymbol
	}

	log.Info().Str("order_id", string(passivatedID)).Msg("modifying order")
	b.Replace(passivated, newOrder)

	delete(m.orders, passivatedID)
	m.orders[newOrder.ID] = newOrder

	for _, trade := range newOrder.Trades() {
		if matched, ok := m.orders[trade.MatchedOrderID]; ok && matched.QuantityOnMarket() == 0 {
			m.removeOrder(matched.ID)
		}
	}
	if newOrder.QuantityOnMarket() == 0 {
		m.removeOrder(newOrder.ID)
	}
	return nil
}

// OrderCancel cancels a live order by id.
func (m *Market) OrderCancel(id common.OrderId) error {
	order, ok := m.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	b, ok := m.books[order.Symbol]
	if !ok {
		return ErrUnknownSymbol
	}
	log.Info().Str("order_id", string(id)).Msg("requesting cancel")
	b.Cancel(order)
	m.removeOrder(id)
	return nil
}

func (m *Market) removeOrder(id common.OrderId) {
	delete(m.orders, id)
}

// GetOrder returns the live order for id, if any.
func (m *Market) GetOrder(id common.OrderId) (*book.Order, bool) {
	o, ok := m.orders[id]
	return o, ok
}

// Book returns the book for symbol, if one exists.
func (m *Market) Book(symbol common.Symbol) (*book.OrderBook, bool) {
	b, ok := m.books[symbol]
	return b, ok
}

// Log writes a diagnostic dump of every book to the structured logger.
func (m *Market) Log() {
	for _, b := range m.books {
		b.Log()
	}
}
