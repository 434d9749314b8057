package protocol

// ClientRequestKind identifies the operation an inbound request asks for
// (uint8 for memory alignment and wire compactness).
type ClientRequestKind uint8

const (
	ClientRequestInvalid ClientRequestKind = 0
	ClientRequestNew     ClientRequestKind = 1
	ClientRequestCancel  ClientRequestKind = 2
)

func (k ClientRequestKind) String() string {
	switch k {
	case ClientRequestNew:
		return "NEW"
	case ClientRequestCancel:
		return "CANCEL"
	case ClientRequestInvalid:
		return "INVALID"
	}
	return "UNKNOWN"
}

// ClientRequest is one order-entry message flowing from the order gateway
// into the matching engine. Field order matches the binary layout.
type ClientRequest struct {
	Kind     ClientRequestKind `json:"kind"`
	Qty      Qty               `json:"qty"`
	Side     Side              `json:"side"`
	Price    Price             `json:"price"`
	OrderID  OrderID           `json:"order_id"`
	ClientID ClientID          `json:"client_id"`
	TickerID TickerID          `json:"ticker_id"`
}
