package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestThenSnapshot(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "T1", 100, 10, 0, 'Y')
	b.Rest(Sell, "T2", 105, 5, 0, 'Y')

	snap := b.Snapshot()
	assert.Equal(t, uint32(100), snap.BestBid)
	assert.Equal(t, uint32(10), snap.BestBidSize)
	assert.Equal(t, uint32(105), snap.BestAsk)
	assert.Equal(t, uint32(5), snap.BestAskSize)
	assert.False(t, b.IsCrossed())
}

func TestEnterMatchesOppositeSide(t *testing.T) {
	b := New("AAPL")
	b.Rest(Sell, "MAKER", 100, 10, 0, 'Y')

	res := b.Enter(Buy, "TAKER", 100, 6)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, "MAKER", res.Fills[0].RestingToken)
	assert.Equal(t, uint32(100), res.Fills[0].Price)
	assert.Equal(t, uint32(6), res.Fills[0].Shares)
	assert.False(t, res.Fills[0].RestingDepleted)
	assert.Equal(t, uint32(0), res.Remaining)

	snap := b.Snapshot()
	assert.Equal(t, uint32(100), snap.BestAsk)
	assert.Equal(t, uint32(4), snap.BestAskSize)
}

func TestEnterFullyDepletesRestingOrder(t *testing.T) {
	b := New("AAPL")
	b.Rest(Sell, "MAKER", 100, 5, 0, 'Y')

	res := b.Enter(Buy, "TAKER", 100, 5)
	require.Len(t, res.Fills, 1)
	assert.True(t, res.Fills[0].RestingDepleted)
	assert.Equal(t, uint32(0), res.Remaining)

	snap := b.Snapshot()
	assert.Equal(t, uint32(0), snap.BestAsk)
}

func TestEnterWalksMultipleLevels(t *testing.T) {
	b := New("AAPL")
	b.Rest(Sell, "M1", 100, 5, 0, 'Y')
	b.Rest(Sell, "M2", 101, 5, 0, 'Y')

	res := b.Enter(Buy, "TAKER", 101, 8)
	require.Len(t, res.Fills, 2)
	assert.Equal(t, uint32(100), res.Fills[0].Price)
	assert.Equal(t, uint32(5), res.Fills[0].Shares)
	assert.Equal(t, uint32(101), res.Fills[1].Price)
	assert.Equal(t, uint32(3), res.Fills[1].Shares)
	assert.Equal(t, uint32(0), res.Remaining)
}

func TestEnterRespectsPriceLimit(t *testing.T) {
	b := New("AAPL")
	b.Rest(Sell, "M1", 105, 5, 0, 'Y')

	res := b.Enter(Buy, "TAKER", 100, 5)
	assert.Empty(t, res.Fills)
	assert.Equal(t, uint32(5), res.Remaining)
}

func TestFIFOWithinPriceLevel(t *testing.T) {
	b := New("AAPL")
	b.Rest(Sell, "FIRST", 100, 5, 0, 'Y')
	b.Rest(Sell, "SECOND", 100, 5, 0, 'Y')

	res := b.Enter(Buy, "TAKER", 100, 7)
	require.Len(t, res.Fills, 2)
	assert.Equal(t, "FIRST", res.Fills[0].RestingToken)
	assert.Equal(t, uint32(5), res.Fills[0].Shares)
	assert.Equal(t, "SECOND", res.Fills[1].RestingToken)
	assert.Equal(t, uint32(2), res.Fills[1].Shares)
}

func TestCancelFullyRemovesOrder(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "T1", 100, 10, 0, 'Y')

	side, price, removed, ok := b.Cancel("T1", 10)
	require.True(t, ok)
	assert.Equal(t, Buy, side)
	assert.Equal(t, uint32(100), price)
	assert.Equal(t, uint32(10), removed)

	snap := b.Snapshot()
	assert.Equal(t, uint32(0), snap.BestBid)
}

func TestCancelZeroDecrementIsNoOp(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "T1", 100, 10, 0, 'Y')

	_, _, removed, ok := b.Cancel("T1", 0)
	require.True(t, ok)
	assert.Equal(t, uint32(0), removed)

	snap := b.Snapshot()
	assert.Equal(t, uint32(10), snap.BestBidSize)
}

func TestCancelPartialLeavesRemainder(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "T1", 100, 10, 0, 'Y')

	_, _, removed, ok := b.Cancel("T1", 4)
	require.True(t, ok)
	assert.Equal(t, uint32(4), removed)

	snap := b.Snapshot()
	assert.Equal(t, uint32(6), snap.BestBidSize)
}

func TestCancelUnknownTokenFails(t *testing.T) {
	b := New("AAPL")
	_, _, _, ok := b.Cancel("NOPE", 0)
	assert.False(t, ok)
}

func TestResetClearsBothSides(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "T1", 100, 10, 0, 'Y')
	b.Rest(Sell, "T2", 105, 10, 0, 'Y')

	b.Reset()

	snap := b.Snapshot()
	assert.Equal(t, uint32(0), snap.BestBid)
	assert.Equal(t, uint32(0), snap.BestAsk)
	_, _, _, ok := b.Cancel("T1", 0)
	assert.False(t, ok)
}

func TestNeverCrossesAfterMatching(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "B1", 99, 10, 0, 'Y')
	b.Rest(Sell, "S1", 100, 10, 0, 'Y')
	b.Enter(Buy, "TAKER", 100, 5)
	assert.False(t, b.IsCrossed())
}

func TestSecondLevelPriceReported(t *testing.T) {
	b := New("AAPL")
	b.Rest(Buy, "B1", 100, 10, 0, 'Y')
	b.Rest(Buy, "B2", 99, 10, 0, 'Y')

	snap := b.Snapshot()
	assert.Equal(t, uint32(100), snap.BestBid)
	assert.Equal(t, uint32(99), snap.NextBid)
}
