package protocol

import "math"

// Fixed-width identifier and value types shared by every record on the wire.
// Receivers must parse these with the exact same widths the writers use.
type (
	ClientID uint32
	TickerID uint32
	OrderID  uint64
	Price    int64
	Qty      uint32
	Priority uint64
)

// Invalid sentinels. Fields that carry no meaningful value in a given
// record kind are set to these instead of zero, so a zero value is never
// ambiguous with "unset".
const (
	ClientIDInvalid ClientID = math.MaxUint32
	TickerIDInvalid TickerID = math.MaxUint32
	OrderIDInvalid  OrderID  = math.MaxUint64
	PriceInvalid    Price    = math.MaxInt64
	QtyInvalid      Qty      = math.MaxUint32
	PriorityInvalid Priority = math.MaxUint64
)

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideInvalid Side = 0
	SideBuy     Side = 1
	SideSell    Side = 2
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	case SideInvalid:
		return "INVALID"
	}
	return "UNKNOWN"
}

// Opposite returns the other side of the book. Invalid stays invalid.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	}
	return SideInvalid
}
