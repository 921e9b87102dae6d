package protocol

import "encoding/binary"

const acceptedPayloadSize = 8 + 8 + 1 + 1 + enterOrderPayloadSize

// Accepted acknowledges a stored EnterOrder, echoing every field of the
// original order alongside the engine-assigned reference number.
type Accepted struct {
	Timestamp             uint64
	OrderReferenceNumber   uint64
	OrderState             byte
	BBOWeightIndicator     byte
	Enter                  EnterOrder
}

func (m *Accepted) Type() MessageType { return AcceptedType }

func (m *Accepted) MarshalPayload() []byte {
	b := make([]byte, acceptedPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	binary.BigEndian.PutUint64(b[8:16], m.OrderReferenceNumber)
	b[16] = m.OrderState
	b[17] = m.BBOWeightIndicator
	marshalEnterOrderFields(b[18:67], &m.Enter)
	return b
}

func decodeAccepted(b []byte) *Accepted {
	m := &Accepted{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	m.OrderReferenceNumber = binary.BigEndian.Uint64(b[8:16])
	m.OrderState = b[16]
	m.BBOWeightIndicator = b[17]
	m.Enter = unmarshalEnterOrderFields(b[18:67])
	return m
}

const canceledPayloadSize = 33

// Canceled reports that DecrementShares were removed from OrderToken's
// resting quantity.
type Canceled struct {
	Timestamp        uint64
	OrderToken       Token
	DecrementShares  uint32
	Reason           byte
	MidpointPeg      byte
	Price            uint32
	BuySellIndicator Side
}

func (m *Canceled) Type() MessageType { return CanceledType }

func (m *Canceled) MarshalPayload() []byte {
	b := make([]byte, canceledPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	copy(b[8:22], m.OrderToken[:])
	binary.BigEndian.PutUint32(b[22:26], m.DecrementShares)
	b[26] = m.Reason
	b[27] = m.MidpointPeg
	binary.BigEndian.PutUint32(b[28:32], m.Price)
	b[32] = byte(m.BuySellIndicator)
	return b
}

func decodeCanceled(b []byte) *Canceled {
	m := &Canceled{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	copy(m.OrderToken[:], b[8:22])
	m.DecrementShares = binary.BigEndian.Uint32(b[22:26])
	m.Reason = b[26]
	m.MidpointPeg = b[27]
	m.Price = binary.BigEndian.Uint32(b[28:32])
	m.BuySellIndicator = Side(b[32])
	return m
}

const executedPayloadSize = 40

// Executed reports a fill. Both sides of a cross each receive one Executed
// message carrying the same MatchNumber, ExecutionPrice and ExecutedShares.
type Executed struct {
	Timestamp      uint64
	OrderToken     Token
	ExecutedShares uint32
	ExecutionPrice uint32
	LiquidityFlag  byte
	MatchNumber    uint64
	MidpointPeg    byte
}

func (m *Executed) Type() MessageType { return ExecutedType }

func (m *Executed) MarshalPayload() []byte {
	b := make([]byte, executedPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	copy(b[8:22], m.OrderToken[:])
	binary.BigEndian.PutUint32(b[22:26], m.ExecutedShares)
	binary.BigEndian.PutUint32(b[26:30], m.ExecutionPrice)
	b[30] = m.LiquidityFlag
	binary.BigEndian.PutUint64(b[31:39], m.MatchNumber)
	b[39] = m.MidpointPeg
	return b
}

func decodeExecuted(b []byte) *Executed {
	m := &Executed{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	copy(m.OrderToken[:], b[8:22])
	m.ExecutedShares = binary.BigEndian.Uint32(b[22:26])
	m.ExecutionPrice = binary.BigEndian.Uint32(b[26:30])
	m.LiquidityFlag = b[30]
	m.MatchNumber = binary.BigEndian.Uint64(b[31:39])
	m.MidpointPeg = b[39]
	return m
}

const rejectedPayloadSize = 38

// Rejected reports that an EnterOrder was refused; in this core the only
// reason is a duplicate order token ("RepeatID").
type Rejected struct {
	Timestamp  uint64
	OrderToken Token
	Reason     Reason
	Price      uint32
	Shares     uint32
}

func (m *Rejected) Type() MessageType { return RejectedType }

func (m *Rejected) MarshalPayload() []byte {
	b := make([]byte, rejectedPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	copy(b[8:22], m.OrderToken[:])
	copy(b[22:30], m.Reason[:])
	binary.BigEndian.PutUint32(b[30:34], m.Price)
	binary.BigEndian.PutUint32(b[34:38], m.Shares)
	return b
}

func decodeRejected(b []byte) *Rejected {
	m := &Rejected{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	copy(m.OrderToken[:], b[8:22])
	copy(m.Reason[:], b[22:30])
	m.Price = binary.BigEndian.Uint32(b[30:34])
	m.Shares = binary.BigEndian.Uint32(b[34:38])
	return m
}

const bestBidAndOfferPayloadSize = 40

// BestBidAndOffer is a top-of-book snapshot broadcast whenever any of its
// fields changes.
type BestBidAndOffer struct {
	Timestamp        uint64
	Stock            Stock
	BestBid          uint32
	VolumeAtBestBid  uint32
	BestAsk          uint32
	VolumeAtBestAsk  uint32
	NextBid          uint32
	NextAsk          uint32
}

func (m *BestBidAndOffer) Type() MessageType { return BestBidAndOfferType }

func (m *BestBidAndOffer) MarshalPayload() []byte {
	b := make([]byte, bestBidAndOfferPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	copy(b[8:16], m.Stock[:])
	binary.BigEndian.PutUint32(b[16:20], m.BestBid)
	binary.BigEndian.PutUint32(b[20:24], m.VolumeAtBestBid)
	binary.BigEndian.PutUint32(b[24:28], m.BestAsk)
	binary.BigEndian.PutUint32(b[28:32], m.VolumeAtBestAsk)
	binary.BigEndian.PutUint32(b[32:36], m.NextBid)
	binary.BigEndian.PutUint32(b[36:40], m.NextAsk)
	return b
}

func decodeBestBidAndOffer(b []byte) *BestBidAndOffer {
	m := &BestBidAndOffer{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	copy(m.Stock[:], b[8:16])
	m.BestBid = binary.BigEndian.Uint32(b[16:20])
	m.VolumeAtBestBid = binary.BigEndian.Uint32(b[20:24])
	m.BestAsk = binary.BigEndian.Uint32(b[24:28])
	m.VolumeAtBestAsk = binary.BigEndian.Uint32(b[28:32])
	m.NextBid = binary.BigEndian.Uint32(b[32:36])
	m.NextAsk = binary.BigEndian.Uint32(b[36:40])
	return m
}

const systemEventPayloadSize = 9

// SystemEvent acknowledges a SystemStart to its originator.
type SystemEvent struct {
	EventCode byte
	Timestamp uint64
}

func (m *SystemEvent) Type() MessageType { return SystemEventType }

func (m *SystemEvent) MarshalPayload() []byte {
	b := make([]byte, systemEventPayloadSize)
	b[0] = m.EventCode
	binary.BigEndian.PutUint64(b[1:9], m.Timestamp)
	return b
}

func decodeSystemEvent(b []byte) *SystemEvent {
	return &SystemEvent{EventCode: b[0], Timestamp: binary.BigEndian.Uint64(b[1:9])}
}

const replacedPayloadSize = 80

// Replaced acknowledges a ReplaceOrder that resulted in a live replacement
// order (OrderState 'L') or a replacement that was accepted but left with
// nothing to rest (OrderState 'D').
type Replaced struct {
	Timestamp                   uint64
	ReplacementOrderToken       Token
	BuySellIndicator            Side
	Shares                      uint32
	Stock                       Stock
	Price                       uint32
	TimeInForce                 uint32
	Firm                        Firm
	Display                     byte
	OrderReferenceNumber        uint64
	Capacity                    byte
	IntermarketSweepEligibility byte
	MinimumQuantity             uint32
	CrossType                   byte
	OrderState                  byte
	PreviousOrderToken          Token
	BBOWeightIndicator          byte
	MidpointPeg                 byte
}

func (m *Replaced) Type() MessageType { return ReplacedType }

func (m *Replaced) MarshalPayload() []byte {
	b := make([]byte, replacedPayloadSize)
	binary.BigEndian.PutUint64(b[0:8], m.Timestamp)
	copy(b[8:22], m.ReplacementOrderToken[:])
	b[22] = byte(m.BuySellIndicator)
	binary.BigEndian.PutUint32(b[23:27], m.Shares)
	copy(b[27:35], m.Stock[:])
	binary.BigEndian.PutUint32(b[35:39], m.Price)
	binary.BigEndian.PutUint32(b[39:43], m.TimeInForce)
	copy(b[43:47], m.Firm[:])
	b[47] = m.Display
	binary.BigEndian.PutUint64(b[48:56], m.OrderReferenceNumber)
	b[56] = m.Capacity
	b[57] = m.IntermarketSweepEligibility
	binary.BigEndian.PutUint32(b[58:62], m.MinimumQuantity)
	b[62] = m.CrossType
	b[63] = m.OrderState
	copy(b[64:78], m.PreviousOrderToken[:])
	b[78] = m.BBOWeightIndicator
	b[79] = m.MidpointPeg
	return b
}

func decodeReplaced(b []byte) *Replaced {
	m := &Replaced{}
	m.Timestamp = binary.BigEndian.Uint64(b[0:8])
	copy(m.ReplacementOrderToken[:], b[8:22])
	m.BuySellIndicator = Side(b[22])
	m.Shares = binary.BigEndian.Uint32(b[23:27])
	copy(m.Stock[:], b[27:35])
	m.Price = binary.BigEndian.Uint32(b[35:39])
	m.TimeInForce = binary.BigEndian.Uint32(b[39:43])
	copy(m.Firm[:], b[43:47])
	m.Display = b[47]
	m.OrderReferenceNumber = binary.BigEndian.Uint64(b[48:56])
	m.Capacity = b[56]
	m.IntermarketSweepEligibility = b[57]
	m.MinimumQuantity = binary.BigEndian.Uint32(b[58:62])
	m.CrossType = b[62]
	m.OrderState = b[63]
	copy(m.PreviousOrderToken[:], b[64:78])
	m.BBOWeightIndicator = b[78]
	m.MidpointPeg = b[79]
	return m
}
