// Package protocol implements the framed binary request/response wire
// format spoken between exchange clients and the matching engine: a single
// header byte identifying the message type, followed by a fixed-width,
// per-type payload. Field layout mirrors the NASDAQ OUCH/ITCH convention of
// big-endian integers and space-padded fixed-width ASCII strings.
package protocol

import "bytes"

// Token is a client-chosen order identifier, unique per session per order.
type Token [14]byte

// NewToken left-justifies and space-pads s into a Token, truncating if s is
// longer than the field width.
func NewToken(s string) Token {
	var t Token
	copy(t[:], padRight(s, len(t)))
	return t
}

// String trims the trailing space padding.
func (t Token) String() string {
	return string(bytes.TrimRight(t[:], " "))
}

// IsZero reports whether the token was never set (all NUL bytes).
func (t Token) IsZero() bool {
	return t == Token{}
}

// Stock is a fixed-width, space-padded ticker symbol.
type Stock [8]byte

func NewStock(s string) Stock {
	var v Stock
	copy(v[:], padRight(s, len(v)))
	return v
}

func (s Stock) String() string {
	return string(bytes.TrimRight(s[:], " "))
}

// Firm is a fixed-width, space-padded firm identifier.
type Firm [4]byte

func NewFirm(s string) Firm {
	var v Firm
	copy(v[:], padRight(s, len(v)))
	return v
}

func (f Firm) String() string {
	return string(bytes.TrimRight(f[:], " "))
}

// Reason is a fixed-width, space-padded rejection/cancellation reason code.
type Reason [8]byte

func NewReason(s string) Reason {
	var v Reason
	copy(v[:], padRight(s, len(v)))
	return v
}

func (r Reason) String() string {
	return string(bytes.TrimRight(r[:], " "))
}

// padRight space-pads or truncates s to exactly width bytes.
func padRight(s string, width int) []byte {
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	n := copy(b, s)
	_ = n
	return b
}

// Side identifies the buy/sell indicator carried on the wire as a single
// ASCII byte.
type Side byte

const (
	SideBuy  Side = 'B'
	SideSell Side = 'S'
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}
