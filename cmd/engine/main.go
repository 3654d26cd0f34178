// Command engine runs the line-oriented order entry grammar of spec.md §6
// against a single market, reading commands from stdin (or a file named
// with -input) and writing TRADE/PRINT protocol output to stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchbook/internal/book"
	"matchbook/internal/command"
	"matchbook/internal/common"
	"matchbook/internal/market"
	"matchbook/internal/report"
)

func main() {
	inputPath := flag.String("input", "", "read commands from this file instead of stdin")
	logLevel := flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	in := io.Reader(os.Stdin)
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Error().Err(err).Str("path", *inputPath).Msg("unable to open input file")
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	lw := report.NewLineWriter(os.Stdout)
	defer lw.Flush()

	m := market.New(lw)
	m.AddBook(common.DefaultSymbol)

	if err := run(in, os.Stdout, m); err != nil {
		log.Error().Err(err).Msg("fatal error reading command stream")
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, m *market.Market) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		dispatch(scanner.Text(), out, m)
	}
	return scanner.Err()
}

func dispatch(line string, out io.Writer, m *market.Market) {
	cmd, err := command.Parse(line)
	if err != nil {
		log.Error().Err(err).Str("line", line).Msg("invalid command")
		return
	}

	switch cmd.Kind {
	case command.KindNewOrder:
		o := book.NewOrder(cmd.OrderID, cmd.Side, common.DefaultSymbol, cmd.Quantity, cmd.Price)
		if err := m.OrderEntry(o, cmd.Conditions); err != nil {
			log.Error().Err(err).Str("order_id", string(cmd.OrderID)).Msg("order entry rejected")
		}
	case command.KindModify:
		o := book.NewOrder(cmd.OrderID, cmd.Side, common.DefaultSymbol, cmd.Quantity, cmd.Price)
		if err := m.OrderModify(cmd.OrderID, o); err != nil {
			log.Error().Err(err).Str("order_id", string(cmd.OrderID)).Msg("order modify rejected")
		}
	case command.KindCancel:
		if err := m.OrderCancel(cmd.OrderID); err != nil {
			log.Error().Err(err).Str("order_id", string(cmd.OrderID)).Msg("order cancel rejected")
		}
	case command.KindPrint:
		if b, ok := m.Book(common.DefaultSymbol); ok {
			report.PrintBook(out, b)
		} else {
			fmt.Fprintln(out, "SELL:\nBUY:")
		}
	}
}
