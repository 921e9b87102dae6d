package protocol

import "encoding/binary"

// Message is implemented by every inbound and outbound wire message. The
// codec dispatches on Type() to pick the fixed payload width and, on
// decode, the concrete struct to populate.
type Message interface {
	Type() MessageType
	MarshalPayload() []byte
}

const enterOrderPayloadSize = 49

// EnterOrder is the client's request to place a new limit order.
type EnterOrder struct {
	OrderToken                  Token
	BuySellIndicator            Side
	Shares                      uint32
	Stock                       Stock
	Price                       uint32
	TimeInForce                 uint32
	Firm                        Firm
	Display                     byte
	Capacity                    byte
	IntermarketSweepEligibility byte
	MinimumQuantity             uint32
	CrossType                   byte
	CustomerType                byte
	MidpointPeg                 byte
}

func (m *EnterOrder) Type() MessageType { return EnterOrderType }

func (m *EnterOrder) MarshalPayload() []byte {
	b := make([]byte, enterOrderPayloadSize)
	marshalEnterOrderFields(b, m)
	return b
}

// marshalEnterOrderFields writes m's fields into b[0:49]; reused by
// Accepted, whose payload echoes every EnterOrder field after its own
// header fields.
func marshalEnterOrderFields(b []byte, m *EnterOrder) {
	copy(b[0:14], m.OrderToken[:])
	b[14] = byte(m.BuySellIndicator)
	binary.BigEndian.PutUint32(b[15:19], m.Shares)
	copy(b[19:27], m.Stock[:])
	binary.BigEndian.PutUint32(b[27:31], m.Price)
	binary.BigEndian.PutUint32(b[31:35], m.TimeInForce)
	copy(b[35:39], m.Firm[:])
	b[39] = m.Display
	b[40] = m.Capacity
	b[41] = m.IntermarketSweepEligibility
	binary.BigEndian.PutUint32(b[42:46], m.MinimumQuantity)
	b[46] = m.CrossType
	b[47] = m.CustomerType
	b[48] = m.MidpointPeg
}

func unmarshalEnterOrderFields(b []byte) EnterOrder {
	var m EnterOrder
	copy(m.OrderToken[:], b[0:14])
	m.BuySellIndicator = Side(b[14])
	m.Shares = binary.BigEndian.Uint32(b[15:19])
	copy(m.Stock[:], b[19:27])
	m.Price = binary.BigEndian.Uint32(b[27:31])
	m.TimeInForce = binary.BigEndian.Uint32(b[31:35])
	copy(m.Firm[:], b[35:39])
	m.Display = b[39]
	m.Capacity = b[40]
	m.IntermarketSweepEligibility = b[41]
	m.MinimumQuantity = binary.BigEndian.Uint32(b[42:46])
	m.CrossType = b[46]
	m.CustomerType = b[47]
	m.MidpointPeg = b[48]
	return m
}

func decodeEnterOrder(b []byte) *EnterOrder {
	m := unmarshalEnterOrderFields(b)
	return &m
}

const cancelOrderPayloadSize = 18

// CancelOrder asks the engine to reduce an order to shares remaining; a
// shares value of 0 requests full cancellation. It is also the shape the
// timer scheduler and a client both use, so a time-in-force expiry and a
// client cancel share one code path.
type CancelOrder struct {
	OrderToken Token
	Shares     uint32
}

func (m *CancelOrder) Type() MessageType { return CancelOrderType }

func (m *CancelOrder) MarshalPayload() []byte {
	b := make([]byte, cancelOrderPayloadSize)
	copy(b[0:14], m.OrderToken[:])
	binary.BigEndian.PutUint32(b[14:18], m.Shares)
	return b
}

func decodeCancelOrder(b []byte) *CancelOrder {
	m := &CancelOrder{}
	copy(m.OrderToken[:], b[0:14])
	m.Shares = binary.BigEndian.Uint32(b[14:18])
	return m
}

const replaceOrderPayloadSize = 46

// ReplaceOrder models NASDAQ-style replace semantics: atomically cancel
// ExistingOrderToken and enter a new order under ReplacementOrderToken with
// the replacement's shares/price/TIF. Shares is entered as given; shares the
// original order already executed are not deducted from it.
type ReplaceOrder struct {
	ExistingOrderToken          Token
	ReplacementOrderToken       Token
	Shares                      uint32
	Price                       uint32
	TimeInForce                 uint32
	Display                     byte
	IntermarketSweepEligibility byte
	MinimumQuantity             uint32
}

func (m *ReplaceOrder) Type() MessageType { return ReplaceOrderType }

func (m *ReplaceOrder) MarshalPayload() []byte {
	b := make([]byte, replaceOrderPayloadSize)
	copy(b[0:14], m.ExistingOrderToken[:])
	copy(b[14:28], m.ReplacementOrderToken[:])
	binary.BigEndian.PutUint32(b[28:32], m.Shares)
	binary.BigEndian.PutUint32(b[32:36], m.Price)
	binary.BigEndian.PutUint32(b[36:40], m.TimeInForce)
	b[40] = m.Display
	b[41] = m.IntermarketSweepEligibility
	binary.BigEndian.PutUint32(b[42:46], m.MinimumQuantity)
	return b
}

func decodeReplaceOrder(b []byte) *ReplaceOrder {
	m := &ReplaceOrder{}
	copy(m.ExistingOrderToken[:], b[0:14])
	copy(m.ReplacementOrderToken[:], b[14:28])
	m.Shares = binary.BigEndian.Uint32(b[28:32])
	m.Price = binary.BigEndian.Uint32(b[32:36])
	m.TimeInForce = binary.BigEndian.Uint32(b[36:40])
	m.Display = b[40]
	m.IntermarketSweepEligibility = b[41]
	m.MinimumQuantity = binary.BigEndian.Uint32(b[42:46])
	return m
}

const systemStartPayloadSize = 1

// SystemStart requests that the engine discard all state and start fresh.
type SystemStart struct {
	EventCode byte
}

func (m *SystemStart) Type() MessageType { return SystemStartType }

func (m *SystemStart) MarshalPayload() []byte {
	return []byte{m.EventCode}
}

func decodeSystemStart(b []byte) *SystemStart {
	return &SystemStart{EventCode: b[0]}
}
