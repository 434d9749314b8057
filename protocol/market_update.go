package protocol

// MarketUpdateKind identifies the event carried by a public market-data
// record.
type MarketUpdateKind uint8

const (
	MarketUpdateInvalid MarketUpdateKind = 0
	MarketUpdateAdd     MarketUpdateKind = 1
	MarketUpdateModify  MarketUpdateKind = 2
	MarketUpdateCancel  MarketUpdateKind = 3
	MarketUpdateTrade   MarketUpdateKind = 4
)

func (k MarketUpdateKind) String() string {
	switch k {
	case MarketUpdateAdd:
		return "ADD"
	case MarketUpdateModify:
		return "MODIFY"
	case MarketUpdateCancel:
		return "CANCEL"
	case MarketUpdateTrade:
		return "TRADE"
	case MarketUpdateInvalid:
		return "INVALID"
	}
	return "UNKNOWN"
}

// MarketUpdate is one record on the public market-data stream.
//
// ADD/MODIFY/CANCEL describe order-state changes and carry the exchange
// market order id and queue priority. TRADE is an anonymous print: it
// carries OrderIDInvalid and PriorityInvalid, only price and quantity are
// meaningful. CANCEL always carries Qty 0: removal is the signal, the
// remaining quantity is not published.
type MarketUpdate struct {
	Kind     MarketUpdateKind `json:"kind"`
	OrderID  OrderID          `json:"order_id"`
	TickerID TickerID         `json:"ticker_id"`
	Side     Side             `json:"side"`
	Price    Price            `json:"price"`
	Qty      Qty              `json:"qty"`
	Priority Priority         `json:"priority"`
}
