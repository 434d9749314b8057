package protocol

// ClientResponseKind identifies the outcome reported back to the order
// gateway for one client.
type ClientResponseKind uint8

const (
	ClientResponseInvalid        ClientResponseKind = 0
	ClientResponseAccepted       ClientResponseKind = 1
	ClientResponseCanceled       ClientResponseKind = 2
	ClientResponseFilled         ClientResponseKind = 3
	ClientResponseCancelRejected ClientResponseKind = 4
)

func (k ClientResponseKind) String() string {
	switch k {
	case ClientResponseAccepted:
		return "ACCEPTED"
	case ClientResponseCanceled:
		return "CANCELED"
	case ClientResponseFilled:
		return "FILLED"
	case ClientResponseCancelRejected:
		return "CANCEL_REJECTED"
	case ClientResponseInvalid:
		return "INVALID"
	}
	return "UNKNOWN"
}

// ClientResponse is one execution report addressed to a single client.
// ExecQty is the quantity executed by the event being reported, LeavesQty
// the remaining open quantity after it.
type ClientResponse struct {
	Kind          ClientResponseKind `json:"kind"`
	Side          Side               `json:"side"`
	ExecQty       Qty                `json:"exec_qty"`
	Price         Price              `json:"price"`
	LeavesQty     Qty                `json:"leaves_qty"`
	ClientID      ClientID           `json:"client_id"`
	TickerID      TickerID           `json:"ticker_id"`
	ClientOrderID OrderID            `json:"client_order_id"`
	MarketOrderID OrderID            `json:"market_order_id"`
}
