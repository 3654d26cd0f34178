package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

func TestNewOrderRoundTrip(t *testing.T) {
	req := NewOrderRequest{
		Symbol:     "AAPL",
		OrderID:    "order-1",
		Side:       common.Buy,
		Conditions: common.ConditionIOC,
		Price:      101,
		Quantity:   25,
	}
	buf := EncodeNewOrder(req)

	kind, decoded, err := DecodeMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgNewOrder, kind)
	assert.Equal(t, req, decoded.(NewOrderRequest))
}

func TestCancelRoundTrip(t *testing.T) {
	buf := EncodeCancel("order-42")
	kind, decoded, err := DecodeMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgCancelOrder, kind)
	assert.Equal(t, CancelRequest{OrderID: "order-42"}, decoded.(CancelRequest))
}

func TestModifyRoundTrip(t *testing.T) {
	req := ModifyRequest{Symbol: "AAPL", OrderID: "order-1", Side: common.Sell, Price: 105, Quantity: 50}
	buf := EncodeModify(req)
	kind, decoded, err := DecodeMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgModifyOrder, kind)
	assert.Equal(t, req, decoded.(ModifyRequest))
}

func TestPrintRoundTrip(t *testing.T) {
	buf := EncodePrint("AAPL")
	kind, decoded, err := DecodeMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgPrint, kind)
	assert.Equal(t, PrintRequest{Symbol: "AAPL"}, decoded.(PrintRequest))
}

func TestReportRoundTrip(t *testing.T) {
	r := Report{Type: ReportExecution, OrderID: "order-1", Quantity: 10, Price: 100, Text: "ok"}
	decoded, err := DecodeReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, decoded)
}

func TestDecodeMessage_TooShort(t *testing.T) {
	_, _, err := DecodeMessage([]byte{0, 0})
	assert.ErrorIs(t, err, ErrMessageTooShort)
}
