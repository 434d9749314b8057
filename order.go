package exchange

import (
	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

// Order is one resting limit order. Qty is the leaves quantity and is
// always > 0 while the order rests; an order reaching 0 is unlinked in the
// same step. prev/next link the order into its price level's circular
// FIFO ring by slab handle, never by pointer, so a handle held across a
// cancel resolves to nil instead of a recycled record.
type Order struct {
	TickerID      protocol.TickerID
	ClientID      protocol.ClientID
	ClientOrderID protocol.OrderID
	MarketOrderID protocol.OrderID
	Side          protocol.Side
	Price         protocol.Price
	Qty           protocol.Qty
	Priority      protocol.Priority

	prev structure.Handle
	next structure.Handle
}

// PriceLevel buckets the resting orders at one price on one side.
// firstOrder heads the FIFO order ring (its prev is the most recently
// queued order). prev/next link the level into its side's sorted ring:
// bids strictly descending and asks strictly ascending when walking next
// from the best level.
type PriceLevel struct {
	Side  protocol.Side
	Price protocol.Price

	firstOrder structure.Handle

	prev structure.Handle
	next structure.Handle
}
