// Package matching implements the exchange's single-owner matching engine:
// one handler per inbound message type, run atomically with respect to one
// another, each synchronously mutating the book/store and enqueuing
// outbound messages. Modeled on the teacher engine's one-struct-owns-all
// state shape (internal/core/matching/engine.go) and EngineError sentinel
// pattern (internal/core/matching/types.go), generalized from the
// teacher's heap-based single engine loop to this spec's price-time CDA.
package matching

import (
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/book"
	"github.com/abdoElHodaky/cda-exchange/internal/journal"
	"github.com/abdoElHodaky/cda-exchange/internal/protocol"
	"github.com/abdoElHodaky/cda-exchange/internal/store"
	"github.com/abdoElHodaky/cda-exchange/internal/timer"
	"go.uber.org/zap"
)

// SessionID identifies the originating session of an inbound message, so a
// handler can address a targeted reply back to its sender. The zero value
// means "no particular sender" (used for scheduler-synthesized messages).
type SessionID uint64

// Outbound is one message this engine wants delivered. Broadcast messages
// ignore Target; targeted messages are dropped by the caller if Target is
// no longer connected.
type Outbound struct {
	Broadcast bool
	Target    SessionID
	Message   protocol.Message
}

const (
	timeInForceImmediate     = 0
	timeInForceGoodTillCancel = 99999
)

// minTimedTIF/maxTimedTIF bound the range of time_in_force values that get
// a scheduled expiry rather than being treated as IOC or GTC.
const (
	minTimedTIF = 1
	maxTimedTIF = 99998
)

// Engine owns the book, the order store, and the expiry scheduler for one
// symbol, plus the monotonic counters used to mint order reference and
// match numbers. It has no concurrency primitives of its own: callers are
// required to invoke Handle from a single goroutine (the session server's
// event loop), per the single-owner concurrency model.
type Engine struct {
	symbol string
	book   *book.Book
	store  *store.Store
	timers *timer.Scheduler
	logger *zap.Logger

	orderRefCounter uint64 // advances by 2, stays odd
	matchCounter    uint64

	journal *journal.Journal // optional; nil disables journaling
}

// New constructs an Engine for symbol. timers must be drained by the
// caller via DeliverExpiry for each value received on timers.Deliveries().
func New(symbol string, timers *timer.Scheduler, logger *zap.Logger) *Engine {
	return &Engine{
		symbol:          symbol,
		book:            book.New(symbol),
		store:           store.New(),
		timers:          timers,
		logger:          logger,
		orderRefCounter: 1,
	}
}

// WithJournal attaches the append-only logs so every accepted action,
// execution, and post-handler book snapshot is recorded. Optional: an
// Engine with no journal attached behaves identically, just unlogged.
func (e *Engine) WithJournal(j *journal.Journal) *Engine {
	e.journal = j
	return e
}

func (e *Engine) nextOrderReference() uint64 {
	ref := e.orderRefCounter
	e.orderRefCounter += 2
	return ref
}

func (e *Engine) nextMatchNumber() uint64 {
	m := e.matchCounter
	e.matchCounter++
	return m
}

func toBookSide(s protocol.Side) book.Side {
	if s == protocol.SideBuy {
		return book.Buy
	}
	return book.Sell
}

func fromBookSide(s book.Side) protocol.Side {
	if s == book.Buy {
		return protocol.SideBuy
	}
	return protocol.SideSell
}

// Handle dispatches one inbound message through its atomic handler and
// returns every outbound message it produced, in emission order.
func (e *Engine) Handle(sender SessionID, msg protocol.Message, now time.Time) []Outbound {
	ts := protocol.NanosSinceMidnight(now)
	switch m := msg.(type) {
	case *protocol.EnterOrder:
		return e.handleEnterOrder(sender, m, ts)
	case *protocol.CancelOrder:
		return e.handleCancelOrder(m, ts)
	case *protocol.SystemStart:
		return e.handleSystemStart(sender, m, ts)
	case *protocol.ReplaceOrder:
		return e.handleReplaceOrder(sender, m, ts)
	default:
		e.logger.Warn("matching: unsupported message type dropped", zap.String("type", msg.Type().String()))
		return nil
	}
}

// DeliverExpiry routes a scheduler-synthesized CancelOrder through the same
// path a client-initiated cancel takes, so expiry and client cancel share
// one handler and therefore identical side effects.
func (e *Engine) DeliverExpiry(c *protocol.CancelOrder, now time.Time) []Outbound {
	return e.handleCancelOrder(c, protocol.NanosSinceMidnight(now))
}

func (e *Engine) handleEnterOrder(sender SessionID, m *protocol.EnterOrder, ts uint64) []Outbound {
	token := m.OrderToken.String()

	if e.journal != nil {
		e.journal.LogClientAction(journal.ActionPlaceLimitOrder, token, ts)
	}

	if err := e.store.Add(&store.Entry{
		Token:                       token,
		Side:                        toBookSide(m.BuySellIndicator),
		Shares:                      m.Shares,
		Stock:                       m.Stock.String(),
		Price:                       m.Price,
		TimeInForce:                 m.TimeInForce,
		Firm:                        m.Firm.String(),
		Display:                     m.Display,
		Capacity:                    m.Capacity,
		IntermarketSweepEligibility: m.IntermarketSweepEligibility,
		MinimumQuantity:             m.MinimumQuantity,
		CrossType:                   m.CrossType,
		CustomerType:                m.CustomerType,
		MidpointPeg:                 m.MidpointPeg,
	}); err != nil {
		return []Outbound{{
			Target: sender,
			Message: &protocol.Rejected{
				Timestamp:  ts,
				OrderToken: m.OrderToken,
				Reason:     protocol.NewReason("RepeatID"),
				Price:      m.Price,
				Shares:     m.Shares,
			},
		}}
	}

	enterIntoBook := m.TimeInForce > timeInForceImmediate
	if m.TimeInForce >= minTimedTIF && m.TimeInForce <= maxTimedTIF {
		e.timers.Schedule(m.OrderToken, m.TimeInForce)
	}

	before := e.book.Snapshot()
	result := e.book.Enter(toBookSide(m.BuySellIndicator), token, m.Price, m.Shares)

	var out []Outbound

	orderRef := e.nextOrderReference()
	out = append(out, Outbound{
		Broadcast: true,
		Message: &protocol.Accepted{
			Timestamp:            ts,
			OrderReferenceNumber: orderRef,
			OrderState:           'L',
			BBOWeightIndicator:   ' ',
			Enter:                *m,
		},
	})
	if entry, err := e.store.Get(token); err == nil {
		entry.OrderReferenceNumber = orderRef
	}

	for _, fill := range result.Fills {
		matchNum := e.nextMatchNumber()

		out = append(out,
			Outbound{Broadcast: true, Message: &protocol.Executed{
				Timestamp:      ts,
				OrderToken:     m.OrderToken,
				ExecutedShares: fill.Shares,
				ExecutionPrice: fill.Price,
				LiquidityFlag:  'A',
				MatchNumber:    matchNum,
				MidpointPeg:    m.MidpointPeg,
			}},
			Outbound{Broadcast: true, Message: &protocol.Executed{
				Timestamp:      ts,
				OrderToken:     protocol.NewToken(fill.RestingToken),
				ExecutedShares: fill.Shares,
				ExecutionPrice: fill.Price,
				LiquidityFlag:  'R',
				MatchNumber:    matchNum,
				MidpointPeg:    m.MidpointPeg,
			}},
		)

		e.settleExecution(token, fill.Shares)
		e.settleExecution(fill.RestingToken, fill.Shares)
		if fill.RestingDepleted {
			e.timers.Cancel(protocol.NewToken(fill.RestingToken))
		}

		if e.journal != nil {
			e.journal.LogTransaction(token, matchNum, fill.Price, fill.Shares, ts)
			e.journal.LogTransaction(fill.RestingToken, matchNum, fill.Price, fill.Shares, ts)
		}
	}

	if result.Remaining > 0 && enterIntoBook {
		e.book.Rest(toBookSide(m.BuySellIndicator), token, m.Price, result.Remaining, m.MinimumQuantity, m.Display)
	} else if result.Remaining > 0 {
		e.store.Remove(token)
		e.timers.Cancel(m.OrderToken)
	} else {
		e.store.Remove(token)
		e.timers.Cancel(m.OrderToken)
	}

	after := e.book.Snapshot()
	if delta, changed := bboDelta(before, after); changed {
		delta.Timestamp = ts
		delta.Stock = m.Stock
		out = append(out, Outbound{Broadcast: true, Message: delta})
	}

	if e.journal != nil {
		e.journal.LogBookSnapshot(e.symbol, after.BestBid, after.BestAsk, after.BestBidSize, after.BestAskSize, ts)
	}

	return out
}

// settleExecution reduces a token's live share count in the store by the
// traded quantity, removing the entry once fully executed.
func (e *Engine) settleExecution(token string, shares uint32) {
	if _, err := e.store.DecrementShares(token, shares); err != nil {
		e.logger.Debug("matching: execution settled against untracked token", zap.String("token", token))
	}
}

func (e *Engine) handleCancelOrder(m *protocol.CancelOrder, ts uint64) []Outbound {
	token := m.OrderToken.String()

	if e.journal != nil {
		e.journal.LogClientAction(journal.ActionCancelOrder, token, ts)
	}

	entry, err := e.store.Get(token)
	if err != nil {
		return nil // unknown token: silent no-op
	}

	// m.Shares is the target remaining quantity (spec.md §4.2:
	// volume_remaining), not an amount to remove — convert it to a decrement
	// against the order's current resting size before touching the book.
	var decrement uint32
	if m.Shares < entry.Shares {
		decrement = entry.Shares - m.Shares
	}

	before := e.book.Snapshot()
	_, _, removed, ok := e.book.Cancel(token, decrement)
	if !ok {
		// Order is tracked by the store but not held by the book; nothing
		// to cancel, nothing to report.
		return nil
	}

	if m.Shares == 0 {
		e.store.Remove(token)
		e.timers.Cancel(m.OrderToken)
	} else {
		e.store.DecrementShares(token, removed)
	}

	var out []Outbound
	out = append(out, Outbound{Broadcast: true, Message: &protocol.Canceled{
		Timestamp:        ts,
		OrderToken:       m.OrderToken,
		DecrementShares:  removed,
		Reason:           'U',
		MidpointPeg:      entry.MidpointPeg,
		Price:            entry.Price,
		BuySellIndicator: fromBookSide(entry.Side),
	}})

	after := e.book.Snapshot()
	if delta, changed := bboDelta(before, after); changed {
		delta.Timestamp = ts
		delta.Stock = protocol.NewStock(entry.Stock)
		out = append(out, Outbound{Broadcast: true, Message: delta})
	}

	if e.journal != nil {
		e.journal.LogBookSnapshot(e.symbol, after.BestBid, after.BestAsk, after.BestBidSize, after.BestAskSize, ts)
	}

	return out
}

func (e *Engine) handleSystemStart(sender SessionID, m *protocol.SystemStart, ts uint64) []Outbound {
	e.store.Clear()
	e.book.Reset()
	e.orderRefCounter = 1
	e.matchCounter = 0

	return []Outbound{{
		Target: sender,
		Message: &protocol.SystemEvent{
			EventCode: 'S',
			Timestamp: ts,
		},
	}}
}

// handleReplaceOrder implements the optional NASDAQ-style replace: an
// atomic cancel of the existing order followed by an enter of a new order
// under the replacement token, carrying the replacement's shares/price/TIF
// and the original's remaining metadata. The replacement is entered with
// its full share count; shares the original already executed are not
// deducted from it. Grounded in exchange.py's replace_order_atomic.
func (e *Engine) handleReplaceOrder(sender SessionID, m *protocol.ReplaceOrder, ts uint64) []Outbound {
	existingToken := m.ExistingOrderToken.String()
	entry, err := e.store.Get(existingToken)
	if err != nil {
		return nil // replacing an order that no longer exists is a silent no-op
	}
	if e.store.Has(m.ReplacementOrderToken.String()) {
		return nil // replacement token already in use: silent no-op
	}

	side, _, _, ok := e.book.Cancel(existingToken, entry.Shares)
	if !ok {
		return nil
	}
	e.store.Remove(existingToken)
	e.timers.Cancel(m.ExistingOrderToken)

	enter := &protocol.EnterOrder{
		OrderToken:                  m.ReplacementOrderToken,
		BuySellIndicator:            fromBookSide(side),
		Shares:                      m.Shares,
		Stock:                       protocol.NewStock(entry.Stock),
		Price:                       m.Price,
		TimeInForce:                 m.TimeInForce,
		Firm:                        protocol.NewFirm(entry.Firm),
		Display:                     m.Display,
		Capacity:                    entry.Capacity,
		IntermarketSweepEligibility: m.IntermarketSweepEligibility,
		MinimumQuantity:             m.MinimumQuantity,
		CrossType:                   entry.CrossType,
		CustomerType:                entry.CustomerType,
		MidpointPeg:                 entry.MidpointPeg,
	}

	enterOutbound := e.handleEnterOrder(sender, enter, ts)

	replacedEntry, stillLive := e.store.Get(m.ReplacementOrderToken.String())
	state := byte('D')
	var orderRef uint64
	if stillLive {
		state = 'L'
		orderRef = replacedEntry.OrderReferenceNumber
	}

	replaced := Outbound{Broadcast: true, Message: &protocol.Replaced{
		Timestamp:                   ts,
		ReplacementOrderToken:       m.ReplacementOrderToken,
		BuySellIndicator:            fromBookSide(side),
		Shares:                      m.Shares,
		Stock:                       enter.Stock,
		Price:                       m.Price,
		TimeInForce:                 m.TimeInForce,
		Firm:                        enter.Firm,
		Display:                     m.Display,
		OrderReferenceNumber:        orderRef,
		Capacity:                    enter.Capacity,
		IntermarketSweepEligibility: m.IntermarketSweepEligibility,
		MinimumQuantity:             m.MinimumQuantity,
		CrossType:                   enter.CrossType,
		OrderState:                  state,
		PreviousOrderToken:          m.ExistingOrderToken,
		BBOWeightIndicator:          ' ',
		MidpointPeg:                 enter.MidpointPeg,
	}}

	return append([]Outbound{replaced}, enterOutbound...)
}

// bboDelta compares two snapshots and reports the new one plus whether any
// observable field changed, per the BBO-suppression invariant.
func bboDelta(before, after book.BBO) (*protocol.BestBidAndOffer, bool) {
	if before == after {
		return nil, false
	}
	return &protocol.BestBidAndOffer{
		BestBid:         after.BestBid,
		VolumeAtBestBid: after.BestBidSize,
		BestAsk:         after.BestAsk,
		VolumeAtBestAsk: after.BestAskSize,
		NextBid:         after.NextBid,
		NextAsk:         after.NextAsk,
	}, true
}
