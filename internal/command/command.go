// Package command parses the line-oriented order entry grammar of spec.md
// §6:
//
//	BUY|SELL [IOC] price qty order_id
//	MODIFY order_id BUY|SELL price qty
//	CANCEL order_id
//	PRINT
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"matchbook/internal/common"
)

// Kind identifies which command grammar a line parsed as.
type Kind int

const (
	KindNewOrder Kind = iota
	KindModify
	KindCancel
	KindPrint
)

// ErrUnrecognized is returned for a line whose first token isn't one of
// BUY, SELL, MODIFY, CANCEL or PRINT — unrecognized lines are skipped by
// the original engine's ReadLine, not treated as fatal.
var ErrUnrecognized = errors.New("unrecognized command")

// ErrMarketPriceModify is returned for a MODIFY line naming price 0: price
// 0 signals a market order only on initial entry, never on a replace.
var ErrMarketPriceModify = errors.New("modify requires a limit price, not a market order")

// Command is one parsed line.
type Command struct {
	Kind Kind

	OrderID    common.OrderId
	Side       common.Side
	Price      common.Price
	Quantity   common.Quantity
	Conditions common.OrderConditions
}

// Parse parses one input line. A trailing '\r' (CRLF line endings) is
// trimmed first, matching the original engine's Trim.
func Parse(line string) (Command, error) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Split(line, " ")
	if len(fields) == 0 {
		return Command{}, ErrUnrecognized
	}

	verb := fields[0]
	switch verb {
	case "BUY", "SELL":
		return parseNewOrder(verb, fields[1:])
	case "MODIFY":
		return parseModify(fields[1:])
	case "CANCEL":
		return parseCancel(fields[1:])
	case "PRINT":
		return Command{Kind: KindPrint}, nil
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnrecognized, verb)
	}
}

// parseNewOrder handles "BUY|SELL [IOC] price qty order_id". The IOC token
// is optional; when absent, the field that would have held it is the
// price field instead.
func parseNewOrder(verb string, rest []string) (Command, error) {
	side := common.Sell
	if verb == "BUY" {
		side = common.Buy
	}

	if len(rest) == 0 {
		return Command{}, fmt.Errorf("%w: missing price", ErrUnrecognized)
	}

	conditions := common.ConditionNone
	if rest[0] == "IOC" {
		conditions |= common.ConditionIOC
		rest = rest[1:]
	}
	if len(rest) < 3 {
		return Command{}, fmt.Errorf("%w: expected price qty order_id", ErrUnrecognized)
	}

	price, err := parsePrice(rest[0])
	if err != nil {
		return Command{}, err
	}
	qty, err := parseQuantity(rest[1])
	if err != nil {
		return Command{}, err
	}
	orderID := strings.TrimSuffix(rest[2], "\r")

	return Command{
		Kind:       KindNewOrder,
		OrderID:    common.OrderId(orderID),
		Side:       side,
		Price:      price,
		Quantity:   qty,
		Conditions: conditions,
	}, nil
}

// parseModify handles "MODIFY order_id BUY|SELL price qty".
func parseModify(rest []string) (Command, error) {
	if len(rest) < 4 {
		return Command{}, fmt.Errorf("%w: expected order_id side price qty", ErrUnrecognized)
	}
	side := common.Sell
	if rest[1] == "BUY" {
		side = common.Buy
	}
	price, err := parsePrice(rest[2])
	if err != nil {
		return Command{}, err
	}
	qty, err := parseQuantity(rest[3])
	if err != nil {
		return Command{}, err
	}
	if price == common.MarketOrderPrice {
		return Command{}, ErrMarketPriceModify
	}
	return Command{
		Kind:     KindModify,
		OrderID:  common.OrderId(rest[0]),
		Side:     side,
		Price:    price,
		Quantity: qty,
	}, nil
}

// parseCancel handles "CANCEL order_id".
func parseCancel(rest []string) (Command, error) {
	if len(rest) < 1 {
		return Command{}, fmt.Errorf("%w: missing order_id", ErrUnrecognized)
	}
	return Command{
		Kind:    KindCancel,
		OrderID: common.OrderId(strings.TrimSuffix(rest[0], "\r")),
	}, nil
}

func parsePrice(s string) (common.Price, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return common.Price(v), nil
}

func parseQuantity(s string) (common.Quantity, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return common.Quantity(v), nil
}
