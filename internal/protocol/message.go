package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownMessageType is returned by LookupByHeader for a header byte
// that is not a recognized message type.
var ErrUnknownMessageType = errors.New("protocol: unknown message type")

// ErrMalformedPayload is returned by Decode when the supplied payload does
// not match the message type's fixed payload size.
var ErrMalformedPayload = errors.New("protocol: malformed payload")

// MessageType identifies one wire message kind by its single header byte.
type MessageType byte

// Inbound message types (client -> server).
const (
	EnterOrderType   MessageType = 'O'
	CancelOrderType  MessageType = 'X'
	ReplaceOrderType MessageType = 'U'
	SystemStartType  MessageType = 'S'
)

// Outbound message types (server -> client).
const (
	AcceptedType        MessageType = 'A'
	CanceledType        MessageType = 'C'
	ExecutedType        MessageType = 'E'
	RejectedType        MessageType = 'J'
	BestBidAndOfferType MessageType = 'Q'
	SystemEventType     MessageType = 'N'
	ReplacedType        MessageType = 'R'
)

// HeaderSize is the width, in bytes, of the header that precedes every
// message's payload.
const HeaderSize = 1

// payloadSizes maps each message type to its fixed, type-specific payload
// width. Declared once here so codec.go's Decode and the session reader's
// framing both derive from the same table.
var payloadSizes = map[MessageType]int{
	EnterOrderType:   enterOrderPayloadSize,
	CancelOrderType:  cancelOrderPayloadSize,
	ReplaceOrderType: replaceOrderPayloadSize,
	SystemStartType:  systemStartPayloadSize,

	AcceptedType:        acceptedPayloadSize,
	CanceledType:        canceledPayloadSize,
	ExecutedType:        executedPayloadSize,
	RejectedType:        rejectedPayloadSize,
	BestBidAndOfferType: bestBidAndOfferPayloadSize,
	SystemEventType:     systemEventPayloadSize,
	ReplacedType:        replacedPayloadSize,
}

// LookupByHeader resolves a header byte to its MessageType.
func LookupByHeader(b byte) (MessageType, error) {
	t := MessageType(b)
	if _, ok := payloadSizes[t]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMessageType, b)
	}
	return t, nil
}

// PayloadSize returns the fixed payload width for t.
func (t MessageType) PayloadSize() (int, error) {
	size, ok := payloadSizes[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMessageType, byte(t))
	}
	return size, nil
}

// String names the message type for logging.
func (t MessageType) String() string {
	switch t {
	case EnterOrderType:
		return "EnterOrder"
	case CancelOrderType:
		return "CancelOrder"
	case ReplaceOrderType:
		return "ReplaceOrder"
	case SystemStartType:
		return "SystemStart"
	case AcceptedType:
		return "Accepted"
	case CanceledType:
		return "Canceled"
	case ExecutedType:
		return "Executed"
	case RejectedType:
		return "Rejected"
	case BestBidAndOfferType:
		return "BestBidAndOffer"
	case SystemEventType:
		return "SystemEvent"
	case ReplacedType:
		return "Replaced"
	default:
		return fmt.Sprintf("MessageType(%q)", byte(t))
	}
}
