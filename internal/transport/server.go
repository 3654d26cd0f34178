package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/book"
	"matchbook/internal/common"
	"matchbook/internal/market"
)

// Each frame on the wire is a 4-byte big-endian length prefix followed by
// that many bytes of message body (request or Report, depending on
// direction).
const maxFrameSize = 64 * 1024

// Server is the TCP daemon front end: it accepts connections, decodes wire
// requests, drives a market.Market, and writes Reports back. Structurally
// this follows the teacher's internal/net/server.go (tomb-governed accept
// loop handing connections to a worker pool); the client-session map and
// multi-client trade broadcast the teacher built for its chat-room-style
// protocol aren't needed here, since spec.md's protocol is strictly
// request/response per connection.
type Server struct {
	address string
	market  *market.Market
	pool    *WorkerPool
	cancel  context.CancelFunc
}

func New(address string, workers int, m *market.Market) *Server {
	return &Server{
		address: address,
		market:  m,
		pool:    NewWorkerPool(workers),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run starts the accept loop and blocks until ctx is cancelled. It returns
// an error at once if the listener cannot be opened; errors from Accept are
// logged and the loop keeps accepting.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}
	defer listener.Close()

	s.pool.Setup(t, s.handleConnection)

	log.Info().Str("address", s.address).Msg("server running")

	t.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
					log.Error().Err(err).Msg("error accepting client")
					continue
				}
			}
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
			s.pool.Submit(conn)
		}
	})

	<-t.Dying()
	return t.Err()
}

func (s *Server) handleConnection(_ *tomb.Tomb, conn net.Conn) error {
	defer conn.Close()
	for {
		msg, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				log.Error().Err(err).Msg("error reading frame")
			}
			return nil
		}
		report := s.dispatch(msg)
		if err := writeFrame(conn, report.Serialize()); err != nil {
			log.Error().Err(err).Msg("error writing report")
			return err
		}
	}
}

func (s *Server) dispatch(msg []byte) Report {
	kind, req, err := DecodeMessage(msg)
	if err != nil {
		return Report{Type: ReportError, Text: err.Error()}
	}

	switch kind {
	case MsgNewOrder:
		r := req.(NewOrderRequest)
		o := book.NewOrder(r.OrderID, r.Side, r.Symbol, r.Quantity, r.Price)
		if err := s.market.OrderEntry(o, r.Conditions); err != nil {
			return Report{Type: ReportReject, OrderID: r.OrderID, Text: err.Error()}
		}
		return Report{Type: ReportExecution, OrderID: r.OrderID, Quantity: o.QuantityOnMarket(), Price: o.Price}

	case MsgCancelOrder:
		r := req.(CancelRequest)
		if err := s.market.OrderCancel(r.OrderID); err != nil {
			return Report{Type: ReportReject, OrderID: r.OrderID, Text: err.Error()}
		}
		return Report{Type: ReportExecution, OrderID: r.OrderID}

	case MsgModifyOrder:
		r := req.(ModifyRequest)
		o := book.NewOrder(r.OrderID, r.Side, r.Symbol, r.Quantity, r.Price)
		if err := s.market.OrderModify(r.OrderID, o); err != nil {
			return Report{Type: ReportReject, OrderID: r.OrderID, Text: err.Error()}
		}
		return Report{Type: ReportExecution, OrderID: r.OrderID, Quantity: o.QuantityOnMarket(), Price: o.Price}

	case MsgPrint:
		r := req.(PrintRequest)
		symbol := r.Symbol
		if symbol == "" {
			symbol = common.DefaultSymbol
		}
		b, ok := s.market.Book(symbol)
		if !ok {
			return Report{Type: ReportError, Text: "unknown symbol"}
		}
		b.Log()
		return Report{Type: ReportExecution, Text: "printed"}

	default:
		return Report{Type: ReportError, Text: "unsupported message type"}
	}
}

// ReadFrame reads one length-prefixed frame. Exported for client use.
func ReadFrame(r io.Reader) ([]byte, error) {
	return readFrame(r)
}

// WriteFrame writes one length-prefixed frame. Exported for client use.
func WriteFrame(w io.Writer, payload []byte) error {
	return writeFrame(w, payload)
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds max size", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
