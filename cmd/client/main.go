// Command client is a manual-testing TCP client for cmd/server, adapted
// from the teacher's own flag-based client: one-shot place/cancel/print
// actions against a running daemon.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/google/uuid"

	"matchbook/internal/common"
	"matchbook/internal/transport"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:7777", "address of the matching engine daemon")
	action := flag.String("action", "place", "action to perform: place, cancel, modify, print")
	symbol := flag.String("symbol", string(common.DefaultSymbol), "symbol to trade")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	price := flag.Uint64("price", 100, "limit price (0 = market order)")
	qty := flag.Uint64("qty", 10, "order quantity")
	ioc := flag.Bool("ioc", false, "set the immediate-or-cancel condition")
	orderID := flag.String("order-id", "", "order id to cancel/modify (required for those actions)")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	side := common.Buy
	if strings.EqualFold(*sideStr, "sell") {
		side = common.Sell
	}

	var req []byte
	switch strings.ToLower(*action) {
	case "place":
		conditions := common.ConditionNone
		if *ioc {
			conditions |= common.ConditionIOC
		}
		id := common.OrderId(uuid.New().String())
		req = transport.EncodeNewOrder(transport.NewOrderRequest{
			Symbol:     common.Symbol(*symbol),
			OrderID:    id,
			Side:       side,
			Conditions: conditions,
			Price:      common.Price(*price),
			Quantity:   common.Quantity(*qty),
		})
		fmt.Printf("-> placing %s %s %d@%d (id=%s)\n", *sideStr, *symbol, *qty, *price, id)

	case "cancel":
		if *orderID == "" {
			log.Fatal("-order-id is required for cancel")
		}
		req = transport.EncodeCancel(common.OrderId(*orderID))
		fmt.Printf("-> cancelling %s\n", *orderID)

	case "modify":
		if *orderID == "" {
			log.Fatal("-order-id is required for modify")
		}
		req = transport.EncodeModify(transport.ModifyRequest{
			Symbol:   common.Symbol(*symbol),
			OrderID:  common.OrderId(*orderID),
			Side:     side,
			Price:    common.Price(*price),
			Quantity: common.Quantity(*qty),
		})
		fmt.Printf("-> modifying %s to %s %d@%d\n", *orderID, *sideStr, *qty, *price)

	case "print":
		req = transport.EncodePrint(common.Symbol(*symbol))
		fmt.Printf("-> printing %s\n", *symbol)

	default:
		log.Fatalf("unknown action %q", *action)
	}

	if err := transport.WriteFrame(conn, req); err != nil {
		log.Fatalf("failed to send request: %v", err)
	}

	resp, err := transport.ReadFrame(conn)
	if err != nil {
		log.Fatalf("failed to read report: %v", err)
	}
	report, err := transport.DecodeReport(resp)
	if err != nil {
		log.Fatalf("failed to decode report: %v", err)
	}

	switch report.Type {
	case transport.ReportExecution:
		fmt.Printf("<- ok order_id=%s open_qty=%d price=%d %s\n", report.OrderID, report.Quantity, report.Price, report.Text)
	case transport.ReportReject:
		fmt.Printf("<- rejected order_id=%s: %s\n", report.OrderID, report.Text)
	case transport.ReportError:
		fmt.Printf("<- error: %s\n", report.Text)
	}
}
