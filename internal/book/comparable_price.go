package book

import "matchbook/internal/common"

// ComparablePrice is the ordering key for one side of a book. Buy-side keys
// sort highest price first; sell-side keys sort lowest price first. On both
// sides the market-order sentinel sorts ahead of every limit price, so a
// market order always sits at the front of the queue it's resting on.
//
// seq breaks ties between two entries at the same price: it is a book-wide
// insertion counter, standing in for the insertion-order guarantee that
// C++'s std::multimap gives for free and that a Go btree (a strict ordered
// set, not a multimap) does not.
type ComparablePrice struct {
	price common.Price
	buy   bool
	seq   uint64
}

func newComparablePrice(buy bool, price common.Price, seq uint64) ComparablePrice {
	return ComparablePrice{price: price, buy: buy, seq: seq}
}

// Matches reports whether a resting entry at this key may trade against an
// inbound order priced at rhs: a market order on either side always
// matches; otherwise the resting buy must be at least rhs, or the resting
// sell at most rhs.
func (c ComparablePrice) Matches(rhs common.Price) bool {
	if c.IsMarket() || rhs == common.MarketOrderPrice {
		return true
	}
	if c.buy {
		return c.price >= rhs
	}
	return c.price <= rhs
}

func (c ComparablePrice) Price() common.Price { return c.price }
func (c ComparablePrice) IsBuy() bool         { return c.buy }
func (c ComparablePrice) IsMarket() bool      { return c.price == common.MarketOrderPrice }

// less implements strict weak ordering for one side of the book: best price
// first (market first), then earliest insertion first. Both sides use the
// same comparator shape; the side is fixed per-btree at construction so buy
// and sell instances never mix in one tree.
func less(a, b ComparablePrice) bool {
	if a.price != b.price {
		if a.IsMarket() != b.IsMarket() {
			return a.IsMarket()
		}
		if a.buy {
			return a.price > b.price
		}
		return a.price < b.price
	}
	return a.seq < b.seq
}
