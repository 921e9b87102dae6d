package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthFieldsRoundTrip(t *testing.T) {
	tok := NewToken("ORD1")
	assert.Equal(t, "ORD1", tok.String())
	assert.Len(t, tok, 14)

	stk := NewStock("AAPL")
	assert.Equal(t, "AAPL", stk.String())

	firm := NewFirm("FRM1")
	assert.Equal(t, "FRM1", firm.String())

	reason := NewReason("RepeatID")
	assert.Equal(t, "RepeatID", reason.String())
}

func TestTokenTruncatesOverlongInput(t *testing.T) {
	tok := NewToken("WAY-TOO-LONG-TOKEN-VALUE")
	assert.Len(t, tok.String(), 14)
}

func TestZeroTokenIsZero(t *testing.T) {
	var tok Token
	assert.True(t, tok.IsZero())
	assert.False(t, NewToken("X").IsZero())
}

func TestEnterOrderRoundTrip(t *testing.T) {
	want := &EnterOrder{
		OrderToken:       NewToken("TOK1"),
		BuySellIndicator: SideBuy,
		Shares:           100,
		Stock:            NewStock("AAPL"),
		Price:            1500000,
		TimeInForce:      0,
		Firm:             NewFirm("ABCD"),
		Display:          'Y',
		Capacity:         'O',
		MinimumQuantity:  0,
		CrossType:        'N',
		CustomerType:     'C',
		MidpointPeg:      'N',
	}

	encoded := Encode(want)
	require.Len(t, encoded, HeaderSize+enterOrderPayloadSize)
	require.Equal(t, byte('O'), encoded[0])

	mt, err := LookupByHeader(encoded[0])
	require.NoError(t, err)
	require.Equal(t, EnterOrderType, mt)

	got, err := Decode(mt, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCancelOrderRoundTrip(t *testing.T) {
	want := &CancelOrder{OrderToken: NewToken("TOK2"), Shares: 50}
	encoded := Encode(want)
	got, err := Decode(CancelOrderType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReplaceOrderRoundTrip(t *testing.T) {
	want := &ReplaceOrder{
		ExistingOrderToken:    NewToken("OLD1"),
		ReplacementOrderToken: NewToken("NEW1"),
		Shares:                200,
		Price:                 2500000,
		TimeInForce:           5,
		Display:               'Y',
		MinimumQuantity:       10,
	}
	encoded := Encode(want)
	got, err := Decode(ReplaceOrderType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSystemStartRoundTrip(t *testing.T) {
	want := &SystemStart{EventCode: 'S'}
	encoded := Encode(want)
	got, err := Decode(SystemStartType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAcceptedRoundTrip(t *testing.T) {
	want := &Accepted{
		Timestamp:            123456789,
		OrderReferenceNumber: 42,
		OrderState:           'L',
		BBOWeightIndicator:   '0',
		Enter: EnterOrder{
			OrderToken:       NewToken("TOK1"),
			BuySellIndicator: SideBuy,
			Shares:           100,
			Stock:            NewStock("AAPL"),
			Price:            1500000,
		},
	}
	encoded := Encode(want)
	got, err := Decode(AcceptedType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecutedRoundTrip(t *testing.T) {
	want := &Executed{
		Timestamp:      1,
		OrderToken:     NewToken("TOK1"),
		ExecutedShares: 10,
		ExecutionPrice: 1500000,
		LiquidityFlag:  'A',
		MatchNumber:    7,
		MidpointPeg:    'N',
	}
	encoded := Encode(want)
	got, err := Decode(ExecutedType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRejectedRoundTrip(t *testing.T) {
	want := &Rejected{
		Timestamp:  1,
		OrderToken: NewToken("TOK1"),
		Reason:     NewReason("RepeatID"),
		Price:      0,
		Shares:     0,
	}
	encoded := Encode(want)
	got, err := Decode(RejectedType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBestBidAndOfferRoundTrip(t *testing.T) {
	want := &BestBidAndOffer{
		Timestamp:       1,
		Stock:           NewStock("AAPL"),
		BestBid:         1500000,
		VolumeAtBestBid: 100,
		BestAsk:         1500100,
		VolumeAtBestAsk: 200,
	}
	encoded := Encode(want)
	got, err := Decode(BestBidAndOfferType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSystemEventRoundTrip(t *testing.T) {
	want := &SystemEvent{EventCode: 'S', Timestamp: 99}
	encoded := Encode(want)
	got, err := Decode(SystemEventType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReplacedRoundTrip(t *testing.T) {
	want := &Replaced{
		Timestamp:             1,
		ReplacementOrderToken: NewToken("NEW1"),
		BuySellIndicator:      SideSell,
		Shares:                300,
		Stock:                 NewStock("AAPL"),
		Price:                 1600000,
		OrderReferenceNumber:  99,
		OrderState:            'L',
		PreviousOrderToken:    NewToken("OLD1"),
	}
	encoded := Encode(want)
	got, err := Decode(ReplacedType, encoded[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode(EnterOrderType, make([]byte, 10))
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestLookupByHeaderRejectsUnknown(t *testing.T) {
	_, err := LookupByHeader('?')
	require.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestNanosSinceMidnight(t *testing.T) {
	ts := time.Date(2026, 7, 29, 9, 30, 0, 0, time.UTC)
	got := NanosSinceMidnight(ts)
	want := uint64((9*time.Hour + 30*time.Minute).Nanoseconds())
	assert.Equal(t, want, got)
}
