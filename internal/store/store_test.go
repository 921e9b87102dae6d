package store

import (
	"testing"

	"github.com/abdoElHodaky/cda-exchange/internal/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGet(t *testing.T) {
	s := New()
	err := s.Add(&Entry{Token: "T1", Side: book.Buy, Shares: 100})
	require.NoError(t, err)

	e, err := s.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, uint32(100), e.Shares)
}

func TestAddDuplicateRejected(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 10}))
	err := s.Add(&Entry{Token: "T1", Shares: 20})
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestGetUnknownFails(t *testing.T) {
	s := New()
	_, err := s.Get("NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementSharesPartial(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 10}))

	remaining, err := s.DecrementShares("T1", 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), remaining)
	assert.True(t, s.Has("T1"))
}

func TestDecrementSharesToZeroRemoves(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 10}))

	remaining, err := s.DecrementShares("T1", 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), remaining)
	assert.False(t, s.Has("T1"))
}

func TestDecrementSharesOverRemoves(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 10}))

	remaining, err := s.DecrementShares("T1", 999)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), remaining)
	assert.False(t, s.Has("T1"))
}

func TestDecrementSharesUnknownFails(t *testing.T) {
	s := New()
	_, err := s.DecrementShares("NOPE", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearRemovesEverything(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 10}))
	require.NoError(t, s.Add(&Entry{Token: "T2", Shares: 5}))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("T1"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New()
	s.Remove("NEVER-ADDED")
	require.NoError(t, s.Add(&Entry{Token: "T1", Shares: 1}))
	s.Remove("T1")
	s.Remove("T1")
	assert.False(t, s.Has("T1"))
}
