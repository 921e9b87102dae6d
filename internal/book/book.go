// Package book implements the two-sided price-time-priority order book for
// the single symbol traded by an exchange instance. Resting orders are kept
// in price levels ordered by an emirpasic/gods red-black tree, each level a
// FIFO queue (container/list) of resting orders — an "ordered levels of
// queues" shape generalized from the teacher engine's heap of individual
// orders.
package book

import (
	"container/list"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// Side identifies which side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

// RestingOrder is one order sitting in a price level's FIFO queue.
type RestingOrder struct {
	Token           string
	Side            Side
	Price           uint32
	Shares          uint32
	MinimumQuantity uint32
	Display         byte
	EnteredSeq      uint64
}

// Fill describes one leg of a match produced by Enter.
type Fill struct {
	RestingToken   string
	RestingSide    Side
	Price          uint32 // maker's price
	Shares         uint32
	RestingDepleted bool // true if the resting order was fully consumed
}

// EnterResult is everything Enter needs to report back to the engine.
type EnterResult struct {
	Fills     []Fill
	Remaining uint32 // shares left over after matching; 0 if fully filled
}

// Book holds the bid and ask sides for exactly one symbol.
type Book struct {
	Symbol string

	bids *redblacktree.Tree // price -> *list.List of *RestingOrder, descending
	asks *redblacktree.Tree // price -> *list.List of *RestingOrder, ascending

	byToken map[string]*list.Element
	seq     uint64
}

// New constructs an empty book for symbol.
func New(symbol string) *Book {
	return &Book{
		Symbol:  symbol,
		bids:    redblacktree.NewWith(descendingUint32Comparator),
		asks:    redblacktree.NewWith(utils.UInt32Comparator),
		byToken: make(map[string]*list.Element),
	}
}

func descendingUint32Comparator(a, b interface{}) int {
	return -utils.UInt32Comparator(a, b)
}

func (b *Book) sideTree(s Side) *redblacktree.Tree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

func opposite(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// crosses reports whether a resting order at restingPrice on restingSide
// would trade against an incoming order of the opposite side priced at
// incomingPrice.
func crosses(restingSide Side, restingPrice, incomingPrice uint32) bool {
	if restingSide == Sell {
		return restingPrice <= incomingPrice
	}
	return restingPrice >= incomingPrice
}

// Enter matches an incoming order against the opposite side and reports
// whatever remains (the caller decides, based on time-in-force, whether to
// call Rest for the remainder). It never mutates the book's resting
// state for the incoming order itself — callers call Rest separately.
func (b *Book) Enter(side Side, token string, price uint32, shares uint32) EnterResult {
	result := EnterResult{Remaining: shares}
	oppTree := b.sideTree(opposite(side))

	for result.Remaining > 0 {
		node := oppTree.Left()
		if node == nil {
			break
		}
		level := node.Value.(*list.List)
		front := level.Front()
		if front == nil {
			oppTree.Remove(node.Key)
			continue
		}
		resting := front.Value.(*RestingOrder)
		if !crosses(opposite(side), resting.Price, price) {
			break
		}

		traded := min32(result.Remaining, resting.Shares)
		result.Fills = append(result.Fills, Fill{
			RestingToken:    resting.Token,
			RestingSide:     opposite(side),
			Price:           resting.Price,
			Shares:          traded,
			RestingDepleted: traded == resting.Shares,
		})
		result.Remaining -= traded
		resting.Shares -= traded

		if resting.Shares == 0 {
			level.Remove(front)
			delete(b.byToken, resting.Token)
			if level.Len() == 0 {
				oppTree.Remove(node.Key)
			}
		}
	}

	return result
}

// Rest adds shares of an order onto the book at price on side. Callers must
// not call Rest for an order that fully matched in Enter.
func (b *Book) Rest(side Side, token string, price uint32, shares uint32, minQty uint32, display byte) {
	tree := b.sideTree(side)
	var level *list.List
	if node, ok := tree.Get(price); ok {
		level = node.(*list.List)
	} else {
		level = list.New()
		tree.Put(price, level)
	}

	b.seq++
	order := &RestingOrder{
		Token:           token,
		Side:            side,
		Price:           price,
		Shares:          shares,
		MinimumQuantity: minQty,
		Display:         display,
		EnteredSeq:      b.seq,
	}
	b.byToken[token] = level.PushBack(order)
}

// Cancel removes exactly decrementShares from token's resting quantity, or
// the entire resting order if decrementShares would meet or exceed it.
// decrementShares is the number of shares to take off the book, not a
// target remaining quantity — callers translating a wire CancelOrder's
// volume_remaining must convert it to a decrement before calling this (see
// matching.handleCancelOrder). decrementShares == 0 is a no-op that still
// reports ok=true. It reports the side, price, and number of shares
// actually removed, or ok=false if token is not resting.
func (b *Book) Cancel(token string, decrementShares uint32) (side Side, price uint32, removed uint32, ok bool) {
	elem, found := b.byToken[token]
	if !found {
		return 0, 0, 0, false
	}
	order := elem.Value.(*RestingOrder)
	side, price = order.Side, order.Price

	if decrementShares >= order.Shares {
		removed = order.Shares
		b.removeElement(side, price, elem)
	} else {
		removed = decrementShares
		order.Shares -= decrementShares
	}
	return side, price, removed, true
}

func (b *Book) removeElement(side Side, price uint32, elem *list.Element) {
	order := elem.Value.(*RestingOrder)
	tree := b.sideTree(side)
	node, ok := tree.Get(price)
	if !ok {
		delete(b.byToken, order.Token)
		return
	}
	level := node.(*list.List)
	level.Remove(elem)
	delete(b.byToken, order.Token)
	if level.Len() == 0 {
		tree.Remove(price)
	}
}

// Reset discards all resting state, returning the book to empty.
func (b *Book) Reset() {
	b.bids = redblacktree.NewWith(descendingUint32Comparator)
	b.asks = redblacktree.NewWith(utils.UInt32Comparator)
	b.byToken = make(map[string]*list.Element)
	b.seq = 0
}

// BBO is a top-of-book snapshot: best price and aggregate size on each side,
// plus the next price level in from the best (used to size BestBidAndOffer's
// "next" fields).
type BBO struct {
	BestBid, BestBidSize uint32
	BestAsk, BestAskSize uint32
	NextBid, NextAsk     uint32
}

// Snapshot reports the current top of book.
func (b *Book) Snapshot() BBO {
	var s BBO
	if bid, bidSize, ok := topOfLevel(b.bids); ok {
		s.BestBid, s.BestBidSize = bid, bidSize
	}
	if ask, askSize, ok := topOfLevel(b.asks); ok {
		s.BestAsk, s.BestAskSize = ask, askSize
	}
	if next, ok := secondLevelPrice(b.bids); ok {
		s.NextBid = next
	}
	if next, ok := secondLevelPrice(b.asks); ok {
		s.NextAsk = next
	}
	return s
}

func topOfLevel(tree *redblacktree.Tree) (price uint32, size uint32, ok bool) {
	node := tree.Left()
	if node == nil {
		return 0, 0, false
	}
	level := node.Value.(*list.List)
	price = node.Key.(uint32)
	for e := level.Front(); e != nil; e = e.Next() {
		size += e.Value.(*RestingOrder).Shares
	}
	return price, size, true
}

func secondLevelPrice(tree *redblacktree.Tree) (uint32, bool) {
	keys := tree.Keys()
	if len(keys) < 2 {
		return 0, false
	}
	return keys[1].(uint32), true
}

// IsCrossed reports whether the book's best bid and best ask have crossed,
// which must never happen after any engine handler completes.
func (b *Book) IsCrossed() bool {
	snap := b.Snapshot()
	return snap.BestBid != 0 && snap.BestAsk != 0 && snap.BestBid >= snap.BestAsk
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
