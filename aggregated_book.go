package exchange

import (
	"fmt"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
)

// mdOrder is one live order as visible on the public feed.
type mdOrder struct {
	side  protocol.Side
	price protocol.Price
	qty   protocol.Qty
}

// DepthItem is one aggregated price level of the public view. Price is in
// currency units (ticks scaled by the instrument's tick size).
type DepthItem struct {
	Price decimal.Decimal `json:"price"`
	Qty   protocol.Qty    `json:"qty"`
}

// AggregatedBook rebuilds a depth-only view of one instrument from the
// public MarketUpdate stream: price levels and their aggregated sizes,
// no per-order queue detail. It is built for downstream services that
// consume the market-data feed rather than the book itself.
//
// ADD/MODIFY/CANCEL drive the state; TRADE prints carry no order state
// and are ignored here (the matching engine pairs every trade with a
// MODIFY or CANCEL for the resting order).
type AggregatedBook struct {
	tickerID protocol.TickerID
	tickSize decimal.Decimal

	ask *treemap.TreeMap[protocol.Price, protocol.Qty]
	bid *treemap.TreeMap[protocol.Price, protocol.Qty]

	orders map[protocol.OrderID]mdOrder
}

// NewAggregatedBook creates an empty view for one instrument. tickSize
// converts integer tick prices into currency units for Depth output.
func NewAggregatedBook(tickerID protocol.TickerID, tickSize decimal.Decimal) *AggregatedBook {
	return &AggregatedBook{
		tickerID: tickerID,
		tickSize: tickSize,
		ask: treemap.NewWithKeyCompare[protocol.Price, protocol.Qty](func(a, b protocol.Price) bool {
			return a < b
		}),
		bid: treemap.NewWithKeyCompare[protocol.Price, protocol.Qty](func(a, b protocol.Price) bool {
			return a > b
		}),
		orders: make(map[protocol.OrderID]mdOrder),
	}
}

// Apply folds one market update into the view. A stream that references
// unknown or duplicate order ids is out of sync with the producer; the
// error reports it and the update is dropped, the view keeps its last
// consistent state.
func (ab *AggregatedBook) Apply(update *protocol.MarketUpdate) error {
	switch update.Kind {
	case protocol.MarketUpdateAdd:
		if _, exists := ab.orders[update.OrderID]; exists {
			return fmt.Errorf("aggregated book: duplicate order id %d", update.OrderID)
		}
		ab.orders[update.OrderID] = mdOrder{side: update.Side, price: update.Price, qty: update.Qty}
		ab.levelAdd(update.Side, update.Price, update.Qty)
	case protocol.MarketUpdateModify:
		order, ok := ab.orders[update.OrderID]
		if !ok {
			return fmt.Errorf("aggregated book: modify of unknown order id %d", update.OrderID)
		}
		ab.levelSub(order.side, order.price, order.qty)
		order.qty = update.Qty
		ab.orders[update.OrderID] = order
		ab.levelAdd(order.side, order.price, order.qty)
	case protocol.MarketUpdateCancel:
		// The wire qty of a CANCEL is always 0; the tracked quantity is
		// what leaves the level.
		order, ok := ab.orders[update.OrderID]
		if !ok {
			return fmt.Errorf("aggregated book: cancel of unknown order id %d", update.OrderID)
		}
		delete(ab.orders, update.OrderID)
		ab.levelSub(order.side, order.price, order.qty)
	case protocol.MarketUpdateTrade:
		// Anonymous print, no book state.
	default:
		return fmt.Errorf("aggregated book: unknown update kind %d", uint8(update.Kind))
	}
	return nil
}

// Depth returns up to limit aggregated levels of one side, best first.
func (ab *AggregatedBook) Depth(side protocol.Side, limit int) []DepthItem {
	tm := ab.treeFor(side)
	out := make([]DepthItem, 0, limit)
	for it := tm.Iterator(); it.Valid() && len(out) < limit; it.Next() {
		out = append(out, DepthItem{
			Price: decimal.NewFromInt(int64(it.Key())).Mul(ab.tickSize),
			Qty:   it.Value(),
		})
	}
	return out
}

// Best returns the best price and aggregated size of one side; ok is
// false when the side is empty.
func (ab *AggregatedBook) Best(side protocol.Side) (DepthItem, bool) {
	it := ab.treeFor(side).Iterator()
	if !it.Valid() {
		return DepthItem{}, false
	}
	return DepthItem{
		Price: decimal.NewFromInt(int64(it.Key())).Mul(ab.tickSize),
		Qty:   it.Value(),
	}, true
}

// Levels returns the number of live price levels across both sides.
func (ab *AggregatedBook) Levels() int {
	return ab.ask.Len() + ab.bid.Len()
}

// Orders returns the number of live orders tracked by the view.
func (ab *AggregatedBook) Orders() int {
	return len(ab.orders)
}

func (ab *AggregatedBook) treeFor(side protocol.Side) *treemap.TreeMap[protocol.Price, protocol.Qty] {
	if side == protocol.SideBuy {
		return ab.bid
	}
	return ab.ask
}

func (ab *AggregatedBook) levelAdd(side protocol.Side, price protocol.Price, qty protocol.Qty) {
	tm := ab.treeFor(side)
	total, _ := tm.Get(price)
	tm.Set(price, total+qty)
}

func (ab *AggregatedBook) levelSub(side protocol.Side, price protocol.Price, qty protocol.Qty) {
	tm := ab.treeFor(side)
	total, _ := tm.Get(price)
	if total <= qty {
		tm.Del(price)
		return
	}
	tm.Set(price, total-qty)
}
