package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/logging"
)

// Dispatcher buffers events on a channel and forwards them to the sink from
// a single background goroutine. When the buffer is full the event is
// dropped and counted; the request path never blocks on the sink.
type Dispatcher struct {
	sink    Sink
	logger  logging.Logger
	ch      chan Event
	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, bufferSize int, logger logging.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Dispatcher{
		sink:   sink,
		logger: logger.With("module", "events"),
		ch:     make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Publish enqueues the event, stamping it if the caller did not.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case d.ch <- e:
	default:
		d.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded because the buffer was
// full. Useful for monitoring back-pressure.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Run forwards buffered events until ctx is cancelled, then drains what is
// left in the buffer before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case e := <-d.ch:
			d.send(e)
		}
	}
}

// Done is closed once Run has finished draining.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case e := <-d.ch:
			d.send(e)
		default:
			return
		}
	}
}

func (d *Dispatcher) send(e Event) {
	// sink delivery happens off the request path; use a background context
	// so cancellation of the server context does not truncate the drain
	if err := d.sink.Send(context.Background(), e); err != nil {
		d.logger.Error(context.Background(), "event delivery failed", "type", string(e.Type), "error", err)
	}
}
