// Package timer implements the logical clock that schedules time-in-force
// expirations: a callback fired after a delay in seconds, delivered as a
// synthetic CancelOrder on the scheduler's own Deliveries channel, which the
// engine's event loop reads alongside client messages. Modeled on the
// teacher's scheduleExpiration (internal/orders/order_lifecycle.go),
// replacing its expiration-event type with the protocol's CancelOrder so a
// timed cancel and a client cancel share one handler.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/protocol"
)

// Scheduler schedules CancelOrder messages to be delivered to Deliveries
// after a time-in-force delay. It is safe to call Schedule from the engine's
// event loop; delivery happens on Deliveries, which the loop also reads.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	deliveries chan *protocol.CancelOrder

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New constructs a Scheduler. Deliveries must be drained by the caller
// (typically the engine's event loop) or Schedule's goroutines will block.
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:        ctx,
		cancel:     cancel,
		deliveries: make(chan *protocol.CancelOrder, 1024),
		pending:    make(map[string]*time.Timer),
	}
}

// Deliveries is the channel on which scheduled CancelOrder messages arrive
// once their delay elapses.
func (s *Scheduler) Deliveries() <-chan *protocol.CancelOrder {
	return s.deliveries
}

// Schedule arranges for a full cancellation of token to be delivered on
// Deliveries after delaySeconds. A delaySeconds of 0 or the good-till-cancel
// sentinel (99999) must be filtered out by the caller before calling
// Schedule, per the time-in-force semantics.
func (s *Scheduler) Schedule(token protocol.Token, delaySeconds uint32) {
	key := token.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.pending[key]; ok {
		existing.Stop()
	}

	s.pending[key] = time.AfterFunc(time.Duration(delaySeconds)*time.Second, func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()

		select {
		case s.deliveries <- &protocol.CancelOrder{OrderToken: token, Shares: 0}:
		case <-s.ctx.Done():
		}
	})
}

// Cancel stops a previously scheduled expiration for token, if any — used
// when an order is fully cancelled or filled before its time-in-force
// elapses so a stale expiration does not fire against a reused token.
func (s *Scheduler) Cancel(token protocol.Token) {
	key := token.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.pending[key]; ok {
		existing.Stop()
		delete(s.pending, key)
	}
}

// Stop halts the scheduler, stopping every pending timer and releasing its
// resources. Scheduled deliveries already in flight to the channel are not
// retracted.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.pending {
		timer.Stop()
		delete(s.pending, key)
	}
}
