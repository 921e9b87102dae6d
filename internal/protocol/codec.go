package protocol

import "fmt"

// Encode produces header||payload, exactly 1+payload_size(m.Type()) bytes.
func Encode(m Message) []byte {
	payload := m.MarshalPayload()
	buf := make([]byte, HeaderSize+len(payload))
	buf[0] = byte(m.Type())
	copy(buf[1:], payload)
	return buf
}

// Decode maps payload bytes of the given type back to a typed Message. It
// performs no semantic validation beyond checking the payload length
// against PayloadSize.
func Decode(t MessageType, payload []byte) (Message, error) {
	size, err := t.PayloadSize()
	if err != nil {
		return nil, err
	}
	if len(payload) != size {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrMalformedPayload, t, size, len(payload))
	}

	switch t {
	case EnterOrderType:
		return decodeEnterOrder(payload), nil
	case CancelOrderType:
		return decodeCancelOrder(payload), nil
	case ReplaceOrderType:
		return decodeReplaceOrder(payload), nil
	case SystemStartType:
		return decodeSystemStart(payload), nil
	case AcceptedType:
		return decodeAccepted(payload), nil
	case CanceledType:
		return decodeCanceled(payload), nil
	case ExecutedType:
		return decodeExecuted(payload), nil
	case RejectedType:
		return decodeRejected(payload), nil
	case BestBidAndOfferType:
		return decodeBestBidAndOffer(payload), nil
	case SystemEventType:
		return decodeSystemEvent(payload), nil
	case ReplacedType:
		return decodeReplaced(payload), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, t)
	}
}
