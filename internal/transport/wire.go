// Package transport is the binary TCP front end for the engine: a fixed
// wire protocol for order entry/cancel/print requests and execution/error
// reports, plus the server and worker pool that drive it. It is an
// enrichment over spec.md's line-oriented grammar (see internal/command),
// adapting the teacher's own binary protocol to this engine's domain.
package transport

import (
	"encoding/binary"
	"errors"

	"matchbook/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType identifies a request arriving from a client.
type MessageType uint16

const (
	MsgNewOrder MessageType = iota
	MsgCancelOrder
	MsgModifyOrder
	MsgPrint
)

// ReportType identifies a response sent back to a client.
type ReportType uint8

const (
	ReportExecution ReportType = iota
	ReportReject
	ReportError
)

// Wire layout, big-endian throughout:
//
//	header:    type(2) symbolLen(1) orderIdLen(1)
//	new order: side(1) conditions(1) price(8) qty(8) symbol(n) orderId(m)
//	cancel:    orderId(m)  [symbolLen/orderIdLen still precede]
//	modify:    side(1) price(8) qty(8) symbol(n) orderId(m)
//	print:     symbol(n)
const baseHeaderLen = 2 + 1 + 1

// NewOrderRequest is a decoded MsgNewOrder request.
type NewOrderRequest struct {
	Symbol     common.Symbol
	OrderID    common.OrderId
	Side       common.Side
	Conditions common.OrderConditions
	Price      common.Price
	Quantity   common.Quantity
}

// CancelRequest is a decoded MsgCancelOrder request.
type CancelRequest struct {
	OrderID common.OrderId
}

// ModifyRequest is a decoded MsgModifyOrder request.
type ModifyRequest struct {
	Symbol   common.Symbol
	OrderID  common.OrderId
	Side     common.Side
	Price    common.Price
	Quantity common.Quantity
}

// PrintRequest is a decoded MsgPrint request.
type PrintRequest struct {
	Symbol common.Symbol
}

// DecodeMessage reads the type header and dispatches to the matching
// decoder. It returns the decoded request value and its MessageType.
func DecodeMessage(msg []byte) (MessageType, any, error) {
	if len(msg) < baseHeaderLen {
		return 0, nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	symbolLen := int(msg[2])
	orderIDLen := int(msg[3])
	body := msg[baseHeaderLen:]

	switch typeOf {
	case MsgNewOrder:
		req, err := decodeNewOrder(body, symbolLen, orderIDLen)
		return typeOf, req, err
	case MsgCancelOrder:
		req, err := decodeCancel(body, orderIDLen)
		return typeOf, req, err
	case MsgModifyOrder:
		req, err := decodeModify(body, symbolLen, orderIDLen)
		return typeOf, req, err
	case MsgPrint:
		req, err := decodePrint(body, symbolLen)
		return typeOf, req, err
	default:
		return typeOf, nil, ErrInvalidMessageType
	}
}

func decodeNewOrder(body []byte, symbolLen, orderIDLen int) (NewOrderRequest, error) {
	const fixed = 1 + 1 + 8 + 8
	if len(body) < fixed+symbolLen+orderIDLen {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	side := common.Side(body[0])
	conditions := common.OrderConditions(body[1])
	price := common.Price(binary.BigEndian.Uint64(body[2:10]))
	qty := common.Quantity(binary.BigEndian.Uint64(body[10:18]))
	off := fixed
	symbol := common.Symbol(body[off : off+symbolLen])
	off += symbolLen
	orderID := common.OrderId(body[off : off+orderIDLen])
	return NewOrderRequest{
		Symbol:     symbol,
		OrderID:    orderID,
		Side:       side,
		Conditions: conditions,
		Price:      price,
		Quantity:   qty,
	}, nil
}

func decodeCancel(body []byte, orderIDLen int) (CancelRequest, error) {
	if len(body) < orderIDLen {
		return CancelRequest{}, ErrMessageTooShort
	}
	return CancelRequest{OrderID: common.OrderId(body[:orderIDLen])}, nil
}

func decodeModify(body []byte, symbolLen, orderIDLen int) (ModifyRequest, error) {
	const fixed = 1 + 8 + 8
	if len(body) < fixed+symbolLen+orderIDLen {
		return ModifyRequest{}, ErrMessageTooShort
	}
	side := common.Side(body[0])
	price := common.Price(binary.BigEndian.Uint64(body[1:9]))
	qty := common.Quantity(binary.BigEndian.Uint64(body[9:17]))
	off := fixed
	symbol := common.Symbol(body[off : off+symbolLen])
	off += symbolLen
	orderID := common.OrderId(body[off : off+orderIDLen])
	return ModifyRequest{Symbol: symbol, OrderID: orderID, Side: side, Price: price, Quantity: qty}, nil
}

func decodePrint(body []byte, symbolLen int) (PrintRequest, error) {
	if len(body) < symbolLen {
		return PrintRequest{}, ErrMessageTooShort
	}
	return PrintRequest{Symbol: common.Symbol(body[:symbolLen])}, nil
}

// EncodeNewOrder serializes a new-order request, for client use.
func EncodeNewOrder(req NewOrderRequest) []byte {
	symbol := []byte(req.Symbol)
	orderID := []byte(req.OrderID)
	buf := make([]byte, baseHeaderLen+1+1+8+8+len(symbol)+len(orderID))
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgNewOrder))
	buf[2] = byte(len(symbol))
	buf[3] = byte(len(orderID))
	buf[4] = byte(req.Side)
	buf[5] = byte(req.Conditions)
	binary.BigEndian.PutUint64(buf[6:14], uint64(req.Price))
	binary.BigEndian.PutUint64(buf[14:22], uint64(req.Quantity))
	off := 22
	off += copy(buf[off:], symbol)
	copy(buf[off:], orderID)
	return buf
}

// EncodeModify serializes a modify/replace request, for client use.
func EncodeModify(req ModifyRequest) []byte {
	symbol := []byte(req.Symbol)
	orderID := []byte(req.OrderID)
	buf := make([]byte, baseHeaderLen+1+8+8+len(symbol)+len(orderID))
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgModifyOrder))
	buf[2] = byte(len(symbol))
	buf[3] = byte(len(orderID))
	buf[4] = byte(req.Side)
	binary.BigEndian.PutUint64(buf[5:13], uint64(req.Price))
	binary.BigEndian.PutUint64(buf[13:21], uint64(req.Quantity))
	off := 21
	off += copy(buf[off:], symbol)
	copy(buf[off:], orderID)
	return buf
}

// EncodeCancel serializes a cancel request, for client use.
func EncodeCancel(orderID common.OrderId) []byte {
	id := []byte(orderID)
	buf := make([]byte, baseHeaderLen+len(id))
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgCancelOrder))
	buf[2] = 0
	buf[3] = byte(len(id))
	copy(buf[baseHeaderLen:], id)
	return buf
}

// EncodePrint serializes a print request, for client use.
func EncodePrint(symbol common.Symbol) []byte {
	s := []byte(symbol)
	buf := make([]byte, baseHeaderLen+len(s))
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgPrint))
	buf[2] = byte(len(s))
	buf[3] = 0
	copy(buf[baseHeaderLen:], s)
	return buf
}

// Report is a response frame sent back to a client.
type Report struct {
	Type     ReportType
	OrderID  common.OrderId
	Quantity common.Quantity
	Price    common.Price
	Text     string
}

// Serialize packs a Report for the wire:
//
//	type(1) orderIdLen(1) textLen(2) qty(8) price(8) orderId(n) text(m)
func (r Report) Serialize() []byte {
	id := []byte(r.OrderID)
	text := []byte(r.Text)
	const fixed = 1 + 1 + 2 + 8 + 8
	buf := make([]byte, fixed+len(id)+len(text))
	buf[0] = byte(r.Type)
	buf[1] = byte(len(id))
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(text)))
	binary.BigEndian.PutUint64(buf[4:12], uint64(r.Quantity))
	binary.BigEndian.PutUint64(buf[12:20], uint64(r.Price))
	off := fixed
	off += copy(buf[off:], id)
	copy(buf[off:], text)
	return buf
}

// DecodeReport parses a Report frame, the inverse of Serialize. For client
// use.
func DecodeReport(buf []byte) (Report, error) {
	const fixed = 1 + 1 + 2 + 8 + 8
	if len(buf) < fixed {
		return Report{}, ErrMessageTooShort
	}
	idLen := int(buf[1])
	textLen := int(binary.BigEndian.Uint16(buf[2:4]))
	qty := common.Quantity(binary.BigEndian.Uint64(buf[4:12]))
	price := common.Price(binary.BigEndian.Uint64(buf[12:20]))
	if len(buf) < fixed+idLen+textLen {
		return Report{}, ErrMessageTooShort
	}
	off := fixed
	id := common.OrderId(buf[off : off+idLen])
	off += idLen
	text := string(buf[off : off+textLen])
	return Report{
		Type:     ReportType(buf[0]),
		OrderID:  id,
		Quantity: qty,
		Price:    price,
		Text:     text,
	}, nil
}
