package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

func newTestMarket() *Market {
	return New(book.NopReporter{})
}

func TestOrderEntry_UnknownSymbol(t *testing.T) {
	m := newTestMarket()
	o := book.NewOrder("a1", common.Buy, "NOPE", 10, 100)
	err := m.OrderEntry(o, common.ConditionNone)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestOrderEntry_DuplicateID(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	o1 := book.NewOrder("a1", common.Buy, "TEST", 10, 100)
	require.NoError(t, m.OrderEntry(o1, common.ConditionNone))

	o2 := book.NewOrder("a1", common.Sell, "TEST", 10, 100)
	assert.ErrorIs(t, m.OrderEntry(o2, common.ConditionNone), ErrDuplicateOrder)
}

func TestOrderEntry_FullyFilledOrdersAreGCed(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	s1 := book.NewOrder("s1", common.Sell, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(s1, common.ConditionNone))

	b1 := book.NewOrder("b1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(b1, common.ConditionNone))

	_, stillTracked := m.GetOrder("s1")
	assert.False(t, stillTracked)
	_, stillTracked = m.GetOrder("b1")
	assert.False(t, stillTracked)
}

func TestOrderModify_RebindsIndexOnCrossSideReplace(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	o1 := book.NewOrder("o1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(o1, common.ConditionNone))

	newOrder := book.NewOrder("o1", common.Sell, "TEST", 5, 100)
	require.NoError(t, m.OrderModify("o1", newOrder))

	got, ok := m.GetOrder("o1")
	require.True(t, ok)
	assert.Same(t, newOrder, got)
	assert.False(t, got.IsBuy())
}

func TestOrderModify_RejectsMarketPrice(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	o1 := book.NewOrder("o1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(o1, common.ConditionNone))

	newOrder := book.NewOrder("o1", common.Buy, "TEST", 5, common.MarketOrderPrice)
	assert.ErrorIs(t, m.OrderModify("o1", newOrder), ErrMarketPriceReplace)

	got, ok := m.GetOrder("o1")
	require.True(t, ok)
	assert.Same(t, o1, got)
}

func TestOrderModify_GCsFullyFilledCounterparty(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	s1 := book.NewOrder("s1", common.Sell, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(s1, common.ConditionNone))

	b1 := book.NewOrder("b1", common.Buy, "TEST", 5, 90)
	require.NoError(t, m.OrderEntry(b1, common.ConditionNone))

	_, stillTracked := m.GetOrder("s1")
	require.True(t, stillTracked, "s1 should still rest at 100, unmatched by a 90-priced buy")

	newOrder := book.NewOrder("b1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderModify("b1", newOrder))

	_, stillTracked = m.GetOrder("s1")
	assert.False(t, stillTracked, "s1 should be GCed once the repriced replace fills it")
	_, stillTracked = m.GetOrder("b1")
	assert.False(t, stillTracked, "b1 should be GCed once it's fully filled by the replace")
}

func TestOrderCancel_RemovesFromIndex(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	o1 := book.NewOrder("o1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(o1, common.ConditionNone))
	require.NoError(t, m.OrderCancel("o1"))

	_, ok := m.GetOrder("o1")
	assert.False(t, ok)
}

func TestOrderCancel_UnknownOrder(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")
	assert.ErrorIs(t, m.OrderCancel("ghost"), ErrUnknownOrder)
}

func TestAddBook_ReplacingCancelsRestingOrders(t *testing.T) {
	m := newTestMarket()
	m.AddBook("TEST")

	o1 := book.NewOrder("o1", common.Buy, "TEST", 5, 100)
	require.NoError(t, m.OrderEntry(o1, common.ConditionNone))

	m.AddBook("TEST")

	_, ok := m.GetOrder("o1")
	assert.False(t, ok)
	b, _ := m.Book("TEST")
	assert.Empty(t, b.Depth(true))
}
