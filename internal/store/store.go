// Package store implements the order store: the single source of truth for
// whether a client-chosen order token exists, independent of whether the
// order currently rests in the book. Modeled on the teacher engine's
// orders map (internal/core/matching/order_book.go's ob.orders), widened
// from "resting orders only" to every accepted token that is still live;
// entries are removed once fully executed or fully cancelled.
package store

import (
	"errors"

	"github.com/abdoElHodaky/cda-exchange/internal/book"
)

// ErrDuplicateToken is returned by Add when token is already present.
var ErrDuplicateToken = errors.New("store: duplicate order token")

// ErrNotFound is returned when an operation references an unknown token.
var ErrNotFound = errors.New("store: order token not found")

// Entry is the store's record for one accepted order: everything needed to
// reconstruct an acknowledgement or a cancellation without consulting the
// book.
type Entry struct {
	Token                       string
	Side                        book.Side
	Shares                      uint32 // shares currently live (resting or unconfirmed)
	Stock                       string
	Price                      uint32
	TimeInForce                 uint32
	Firm                        string
	Display                     byte
	Capacity                    byte
	IntermarketSweepEligibility byte
	MinimumQuantity             uint32
	CrossType                   byte
	CustomerType                byte
	MidpointPeg                 byte
	OrderReferenceNumber        uint64
}

// Store is the engine's token -> Entry table.
type Store struct {
	entries map[string]*Entry
}

// New constructs an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Add inserts a new entry. It returns ErrDuplicateToken without modifying
// the store if the token is already present.
func (s *Store) Add(e *Entry) error {
	if _, exists := s.entries[e.Token]; exists {
		return ErrDuplicateToken
	}
	s.entries[e.Token] = e
	return nil
}

// Get returns the entry for token, or ErrNotFound.
func (s *Store) Get(token string) (*Entry, error) {
	e, ok := s.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// DecrementShares reduces token's live share count by n, removing the
// entry entirely once it reaches zero. It returns the resulting share
// count (0 if removed) or ErrNotFound if token is unknown.
func (s *Store) DecrementShares(token string, n uint32) (uint32, error) {
	e, ok := s.entries[token]
	if !ok {
		return 0, ErrNotFound
	}
	if n >= e.Shares {
		delete(s.entries, token)
		return 0, nil
	}
	e.Shares -= n
	return e.Shares, nil
}

// Remove deletes token unconditionally; it is not an error to remove a
// token that is not present.
func (s *Store) Remove(token string) {
	delete(s.entries, token)
}

// Has reports whether token is currently tracked.
func (s *Store) Has(token string) bool {
	_, ok := s.entries[token]
	return ok
}

// Clear discards every entry, used on SystemStart.
func (s *Store) Clear() {
	s.entries = make(map[string]*Entry)
}

// Len reports how many tokens are currently tracked.
func (s *Store) Len() int {
	return len(s.entries)
}
