package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

func TestParse_NewOrder(t *testing.T) {
	cmd, err := Parse("BUY 100 10 b1")
	require.NoError(t, err)
	assert.Equal(t, KindNewOrder, cmd.Kind)
	assert.Equal(t, common.Buy, cmd.Side)
	assert.Equal(t, common.Price(100), cmd.Price)
	assert.Equal(t, common.Quantity(10), cmd.Quantity)
	assert.Equal(t, common.OrderId("b1"), cmd.OrderID)
	assert.Equal(t, common.ConditionNone, cmd.Conditions)
}

func TestParse_NewOrder_IOC(t *testing.T) {
	cmd, err := Parse("SELL IOC 100 10 s1")
	require.NoError(t, err)
	assert.Equal(t, common.Sell, cmd.Side)
	assert.True(t, cmd.Conditions.IOC())
	assert.Equal(t, common.OrderId("s1"), cmd.OrderID)
}

func TestParse_TrimsTrailingCR(t *testing.T) {
	cmd, err := Parse("CANCEL b1\r")
	require.NoError(t, err)
	assert.Equal(t, common.OrderId("b1"), cmd.OrderID)
}

func TestParse_Modify(t *testing.T) {
	cmd, err := Parse("MODIFY b1 BUY 105 20")
	require.NoError(t, err)
	assert.Equal(t, KindModify, cmd.Kind)
	assert.Equal(t, common.OrderId("b1"), cmd.OrderID)
	assert.Equal(t, common.Buy, cmd.Side)
	assert.Equal(t, common.Price(105), cmd.Price)
	assert.Equal(t, common.Quantity(20), cmd.Quantity)
}

func TestParse_Modify_RejectsMarketPrice(t *testing.T) {
	_, err := Parse("MODIFY b1 BUY 0 20")
	assert.ErrorIs(t, err, ErrMarketPriceModify)
}

func TestParse_Cancel(t *testing.T) {
	cmd, err := Parse("CANCEL b1")
	require.NoError(t, err)
	assert.Equal(t, KindCancel, cmd.Kind)
	assert.Equal(t, common.OrderId("b1"), cmd.OrderID)
}

func TestParse_Print(t *testing.T) {
	cmd, err := Parse("PRINT")
	require.NoError(t, err)
	assert.Equal(t, KindPrint, cmd.Kind)
}

func TestParse_UnknownVerb(t *testing.T) {
	_, err := Parse("FROB 1 2 3")
	assert.ErrorIs(t, err, ErrUnrecognized)
}
