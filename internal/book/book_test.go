package book

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

// recordingReporter captures every Trade call as a formatted line, in the
// exact order spec.md §6 prescribes, so tests can assert against it the
// same way a TRADE-line consumer would.
type recordingReporter struct {
	lines []string
}

func (r *recordingReporter) Trade(inbound, matched *Order, fillQty common.Quantity, _ common.Price, _ common.FillID) {
	r.lines = append(r.lines, fmt.Sprintf("TRADE %s %d %d %s %d %d",
		matched.ID, uint64(matched.Price), fillQty, inbound.ID, uint64(inbound.Price), fillQty))
}

func newTestBook() (*OrderBook, *recordingReporter) {
	rep := &recordingReporter{}
	return NewOrderBook("TEST", rep), rep
}

func TestAdd_RejectsNonPositiveSize(t *testing.T) {
	b, _ := newTestBook()
	o := NewOrder("a1", common.Buy, "TEST", 0, 100)
	matched := b.Add(o, common.ConditionNone)
	assert.False(t, matched)
	require.Len(t, o.History(), 1)
	assert.Equal(t, StateRejected, o.History()[0].State)
}

// Scenario 1: single crossing limit.
func TestScenario_SingleCrossingLimit(t *testing.T) {
	b, rep := newTestBook()

	b1 := NewOrder("b1", common.Buy, "TEST", 10, 100)
	b.Add(b1, common.ConditionNone)

	s1 := NewOrder("s1", common.Sell, "TEST", 4, 100)
	matched := b.Add(s1, common.ConditionNone)

	assert.True(t, matched)
	assert.Equal(t, []string{"TRADE b1 100 4 s1 100 4"}, rep.lines)
	assert.Equal(t, common.Quantity(6), b1.QuantityOnMarket())
	assert.Equal(t, common.Quantity(0), s1.QuantityOnMarket())
}

// Scenario 2: price priority.
func TestScenario_PricePriority(t *testing.T) {
	b, rep := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, 101)
	s2 := NewOrder("s2", common.Sell, "TEST", 5, 100)
	b.Add(s1, common.ConditionNone)
	b.Add(s2, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 7, 101)
	matched := b.Add(b1, common.ConditionNone)

	assert.True(t, matched)
	assert.Equal(t, []string{
		"TRADE s2 100 5 b1 101 5",
		"TRADE s1 101 2 b1 101 2",
	}, rep.lines)
	assert.Equal(t, common.Quantity(0), b1.QuantityOnMarket())
	assert.Equal(t, common.Quantity(3), s1.QuantityOnMarket())
}

// Scenario 3: time priority at the same price level.
func TestScenario_TimePriority(t *testing.T) {
	b, rep := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, 100)
	s2 := NewOrder("s2", common.Sell, "TEST", 5, 100)
	b.Add(s1, common.ConditionNone)
	b.Add(s2, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 4, 100)
	b.Add(b1, common.ConditionNone)

	assert.Equal(t, []string{"TRADE s1 100 4 b1 100 4"}, rep.lines)
	assert.Equal(t, common.Quantity(1), s1.QuantityOnMarket())
	assert.Equal(t, common.Quantity(5), s2.QuantityOnMarket())
}

// Scenario: IOC residual is cancelled, not left resting.
func TestScenario_IOCResidualCancelled(t *testing.T) {
	b, _ := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 3, 100)
	b.Add(s1, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 10, 100)
	b.Add(b1, common.ConditionIOC)

	require.NotEmpty(t, b1.History())
	last := b1.History()[len(b1.History())-1]
	assert.Equal(t, StateCancelled, last.State)
	assert.Equal(t, common.Quantity(0), b1.QuantityOnMarket())
}

func TestScenario_IOCFullyFilled_NoCancelEvent(t *testing.T) {
	b, _ := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 10, 100)
	b.Add(s1, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 10, 100)
	b.Add(b1, common.ConditionIOC)

	for _, h := range b1.History() {
		assert.NotEqual(t, StateCancelled, h.State)
	}
	assert.Equal(t, common.Quantity(0), b1.QuantityOnMarket())
}

func TestCancel_RestoresDepth(t *testing.T) {
	b, _ := newTestBook()

	o := NewOrder("a1", common.Buy, "TEST", 10, 100)
	b.Add(o, common.ConditionNone)
	assert.Equal(t, []DepthLevel{{Price: 100, Quantity: 10}}, b.Depth(true))

	b.Cancel(o)
	assert.Empty(t, b.Depth(true))
	assert.Equal(t, StateCancelled, o.History()[len(o.History())-1].State)
}

func TestCancel_NotFound_Rejects(t *testing.T) {
	b, _ := newTestBook()
	o := NewOrder("ghost", common.Buy, "TEST", 10, 100)
	b.Cancel(o)
	require.NotEmpty(t, o.History())
	assert.Equal(t, StateCancelRejected, o.History()[len(o.History())-1].State)
}

func TestReplace_SameSide_LosesTimePriority(t *testing.T) {
	b, _ := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, 100)
	s2 := NewOrder("s2", common.Sell, "TEST", 5, 100)
	b.Add(s1, common.ConditionNone)
	b.Add(s2, common.ConditionNone)

	replacement := NewOrder("s1", common.Sell, "TEST", 5, 100)
	b.Replace(s1, replacement)

	b1 := NewOrder("b1", common.Buy, "TEST", 4, 100)
	b.Add(b1, common.ConditionNone)

	// s2 now has time priority over the replaced s1.
	assert.Equal(t, common.Quantity(1), s2.QuantityOnMarket())
	assert.Equal(t, common.Quantity(5), replacement.QuantityOnMarket())
}

func TestReplace_CrossSide_IsCancelThenAdd(t *testing.T) {
	b, rep := newTestBook()

	buy := NewOrder("o1", common.Buy, "TEST", 5, 100)
	b.Add(buy, common.ConditionNone)
	assert.Equal(t, []DepthLevel{{Price: 100, Quantity: 5}}, b.Depth(true))

	sell := NewOrder("o1", common.Sell, "TEST", 5, 100)
	b.Replace(buy, sell)

	assert.Empty(t, b.Depth(true))
	assert.Equal(t, []DepthLevel{{Price: 100, Quantity: 5}}, b.Depth(false))
	assert.Empty(t, rep.lines)
}

func TestAllOrNone_NeverMatches(t *testing.T) {
	b, _ := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, 100)
	b.Add(s1, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 5, 100)
	matched := b.Add(b1, common.ConditionAllOrNone)

	assert.False(t, matched)
	assert.Equal(t, common.Quantity(5), s1.QuantityOnMarket())
}

func TestMarketOrder_CrossesAtRestingLimitPrice(t *testing.T) {
	b, rep := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, 100)
	b.Add(s1, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 5, common.MarketOrderPrice)
	b.Add(b1, common.ConditionNone)

	assert.Equal(t, []string{"TRADE s1 100 5 b1 0 5"}, rep.lines) // b1's own price field is 0 (market)
}

func TestMarketOrder_NoReferencePrice_NoTrade(t *testing.T) {
	b, _ := newTestBook()

	s1 := NewOrder("s1", common.Sell, "TEST", 5, common.MarketOrderPrice)
	b.Add(s1, common.ConditionNone)

	b1 := NewOrder("b1", common.Buy, "TEST", 5, common.MarketOrderPrice)
	matched := b.Add(b1, common.ConditionIOC)

	assert.False(t, matched)
	assert.Equal(t, common.Quantity(5), s1.QuantityOnMarket())
}

func TestFillOverflow_Panics(t *testing.T) {
	tr := newTracker(NewOrder("a1", common.Buy, "TEST", 5, 100), common.ConditionNone)
	assert.Panics(t, func() { tr.fill(6) })
}
