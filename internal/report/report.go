// Package report adapts internal/book.Reporter onto the wire formats
// spec.md §6 specifies: a TRADE line per fill, and a PRINT dump of a
// book's resting depth.
package report

import (
	"bufio"
	"fmt"
	"io"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

// LineWriter writes protocol output (TRADE lines, PRINT dumps) to w. This
// is kept separate from the structured zerolog channel the rest of the
// engine logs through: TRADE/PRINT are the wire contract, not diagnostics.
type LineWriter struct {
	w *bufio.Writer
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w)}
}

func (l *LineWriter) Flush() error {
	return l.w.Flush()
}

// Trade implements book.Reporter. The line format is:
//
//	TRADE <maker_id> <maker_price> <qty> <taker_id> <taker_price> <qty>
//
// where maker is the resting (matched) order and taker is the order that
// was actively submitted. Each side's price field is that order's own
// stored limit price, not the trade's cross price — the original engine's
// OnFill literally writes GetPrice() for each side, so a market order's
// leg prints its stored price even though it traded at the counterparty's
// price.
func (l *LineWriter) Trade(inbound, matched *book.Order, fillQty common.Quantity, _ common.Price, _ common.FillID) {
	fmt.Fprintf(l.w, "TRADE %s %d %d %s %d %d\n",
		matched.ID, uint64(matched.Price), fillQty,
		inbound.ID, uint64(inbound.Price), fillQty)
	l.w.Flush()
}

// PrintBook writes the PRINT dump for one book: SELL levels high-to-low,
// then BUY levels high-to-low, matching spec.md §6's exact format.
func PrintBook(w io.Writer, b *book.OrderBook) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	fmt.Fprintln(bw, "SELL:")
	asks := b.Depth(false)
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Fprintf(bw, "%d %d\n", uint64(asks[i].Price), asks[i].Quantity)
	}

	fmt.Fprintln(bw, "BUY:")
	bids := b.Depth(true)
	for i := len(bids) - 1; i >= 0; i-- {
		fmt.Fprintf(bw, "%d %d\n", uint64(bids[i].Price), bids[i].Quantity)
	}
}
