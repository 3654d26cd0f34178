package transport

import (
	"net"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// connHandler processes one accepted connection to completion.
type connHandler func(t *tomb.Tomb, conn net.Conn) error

// WorkerPool runs a fixed number of goroutines pulling connections off a
// shared channel, in the teacher's worker.go shape: a tomb.Tomb governs
// goroutine lifetime, and each worker blocks on the channel until a
// connection arrives or the tomb is dying, rather than busy-polling for
// free capacity.
type WorkerPool struct {
	size  int
	conns chan net.Conn
}

func NewWorkerPool(size int) *WorkerPool {
	return &WorkerPool{size: size, conns: make(chan net.Conn, taskChanSize)}
}

// Submit hands a connection to the pool. It blocks if every worker is busy
// and the channel is full.
func (p *WorkerPool) Submit(conn net.Conn) {
	p.conns <- conn
}

// Setup starts the fixed worker goroutines under t and returns immediately.
func (p *WorkerPool) Setup(t *tomb.Tomb, handle connHandler) {
	log.Info().Int("workers", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		t.Go(func() error { return p.worker(t, handle) })
	}
}

func (p *WorkerPool) worker(t *tomb.Tomb, handle connHandler) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-p.conns:
			if err := handle(t, conn); err != nil {
				log.Error().Err(err).Msg("connection handler returned error")
			}
		}
	}
}
