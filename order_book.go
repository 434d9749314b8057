package exchange

import (
	"fmt"
	"log/slog"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

// OrderBook holds one instrument's resting orders with price-time
// priority. Price levels form one circular ring per side, bids sorted
// strictly descending and asks strictly ascending from the best level;
// orders within a level form a circular FIFO ring. Both rings live in
// fixed-capacity slabs and are linked by generation-checked handles.
//
// All methods run on the engine's dispatch goroutine; the book has no
// locking and every invariant holds between calls.
type OrderBook struct {
	tickerID protocol.TickerID
	engine   *Engine
	cfg      *Config
	logger   *slog.Logger

	orderPool *structure.Slab[Order]
	levelPool *structure.Slab[PriceLevel]

	bestBid structure.Handle
	bestAsk structure.Handle

	// priceToLevel is direct-mapped by price modulo MaxPriceLevels.
	// Distinct live prices must stay within that bound.
	priceToLevel []structure.Handle

	// clientOrders maps (client id, client order id) to the resting
	// order. Rows are allocated on first touch.
	clientOrders [][]structure.Handle

	nextMarketOrderID protocol.OrderID
}

func newOrderBook(tickerID protocol.TickerID, cfg *Config, engine *Engine) *OrderBook {
	return &OrderBook{
		tickerID:          tickerID,
		engine:            engine,
		cfg:               cfg,
		logger:            cfg.logger(),
		orderPool:         structure.NewSlab[Order](cfg.MaxOrders),
		levelPool:         structure.NewSlab[PriceLevel](cfg.MaxPriceLevels),
		priceToLevel:      make([]structure.Handle, cfg.MaxPriceLevels),
		clientOrders:      make([][]structure.Handle, cfg.MaxClients),
		nextMarketOrderID: 1,
	}
}

// add processes a NEW request: acknowledge, match against the opposite
// side, then rest any residual quantity. The ACCEPTED response always
// goes out first, before any fill it may produce.
func (book *OrderBook) add(clientID protocol.ClientID, clientOrderID protocol.OrderID, side protocol.Side, price protocol.Price, qty protocol.Qty) error {
	marketOrderID := book.nextMarketOrderID
	book.nextMarketOrderID++

	book.engine.sendClientResponse(&protocol.ClientResponse{
		Kind:          protocol.ClientResponseAccepted,
		Side:          side,
		ExecQty:       0,
		Price:         price,
		LeavesQty:     qty,
		ClientID:      clientID,
		TickerID:      book.tickerID,
		ClientOrderID: clientOrderID,
		MarketOrderID: marketOrderID,
	})

	leaves := book.checkForMatch(clientID, clientOrderID, side, price, qty, marketOrderID)
	if leaves == 0 {
		return nil
	}

	priority := book.nextPriority(price)
	h, order, ok := book.orderPool.Alloc()
	if !ok {
		return fmt.Errorf("order pool of ticker %d: %w", book.tickerID, ErrPoolExhausted)
	}
	*order = Order{
		TickerID:      book.tickerID,
		ClientID:      clientID,
		ClientOrderID: clientOrderID,
		MarketOrderID: marketOrderID,
		Side:          side,
		Price:         price,
		Qty:           leaves,
		Priority:      priority,
	}
	if err := book.linkOrder(h, order); err != nil {
		book.orderPool.Free(h)
		return err
	}

	book.engine.sendMarketUpdate(&protocol.MarketUpdate{
		Kind:     protocol.MarketUpdateAdd,
		OrderID:  marketOrderID,
		TickerID: book.tickerID,
		Side:     side,
		Price:    price,
		Qty:      leaves,
		Priority: priority,
	})
	return nil
}

// cancel processes a CANCEL request. An unknown (client id, order id)
// pair is not an error: the client gets CANCEL_REJECTED and the book is
// left untouched.
func (book *OrderBook) cancel(clientID protocol.ClientID, orderID protocol.OrderID) {
	h := book.lookupOrder(clientID, orderID)
	order := book.orderPool.Get(h)
	if order == nil {
		book.engine.sendClientResponse(&protocol.ClientResponse{
			Kind:          protocol.ClientResponseCancelRejected,
			Side:          protocol.SideInvalid,
			ExecQty:       protocol.QtyInvalid,
			Price:         protocol.PriceInvalid,
			LeavesQty:     protocol.QtyInvalid,
			ClientID:      clientID,
			TickerID:      book.tickerID,
			ClientOrderID: orderID,
			MarketOrderID: protocol.OrderIDInvalid,
		})
		return
	}

	book.engine.sendClientResponse(&protocol.ClientResponse{
		Kind:          protocol.ClientResponseCanceled,
		Side:          order.Side,
		ExecQty:       protocol.QtyInvalid,
		Price:         order.Price,
		LeavesQty:     order.Qty,
		ClientID:      clientID,
		TickerID:      book.tickerID,
		ClientOrderID: orderID,
		MarketOrderID: order.MarketOrderID,
	})
	book.engine.sendMarketUpdate(&protocol.MarketUpdate{
		Kind:     protocol.MarketUpdateCancel,
		OrderID:  order.MarketOrderID,
		TickerID: book.tickerID,
		Side:     order.Side,
		Price:    order.Price,
		Qty:      0,
		Priority: order.Priority,
	})
	book.unlinkOrder(h, order)
}

// checkForMatch fills the aggressor against the head order of the best
// opposite level while that level still crosses the aggressor's price.
// Returns the leaves quantity after matching. Fills execute at the
// resting order's price.
func (book *OrderBook) checkForMatch(clientID protocol.ClientID, clientOrderID protocol.OrderID, side protocol.Side, price protocol.Price, qty protocol.Qty, marketOrderID protocol.OrderID) protocol.Qty {
	leaves := qty
	for leaves > 0 {
		level := book.levelPool.Get(*book.bestFor(side.Opposite()))
		if level == nil {
			break
		}
		if side == protocol.SideBuy && level.Price > price ||
			side == protocol.SideSell && level.Price < price {
			break
		}
		book.matchStep(clientID, clientOrderID, side, marketOrderID, &leaves, level.firstOrder)
	}
	return leaves
}

// matchStep executes one fill between the aggressor and a resting order.
func (book *OrderBook) matchStep(clientID protocol.ClientID, clientOrderID protocol.OrderID, side protocol.Side, marketOrderID protocol.OrderID, leaves *protocol.Qty, restingH structure.Handle) {
	resting := book.orderPool.Get(restingH)
	fill := min(*leaves, resting.Qty)
	*leaves -= fill
	resting.Qty -= fill

	// Both fills report the resting order's price: price improvement
	// always goes to the aggressor.
	book.engine.sendClientResponse(&protocol.ClientResponse{
		Kind:          protocol.ClientResponseFilled,
		Side:          side,
		ExecQty:       fill,
		Price:         resting.Price,
		LeavesQty:     *leaves,
		ClientID:      clientID,
		TickerID:      book.tickerID,
		ClientOrderID: clientOrderID,
		MarketOrderID: marketOrderID,
	})
	book.engine.sendClientResponse(&protocol.ClientResponse{
		Kind:          protocol.ClientResponseFilled,
		Side:          resting.Side,
		ExecQty:       fill,
		Price:         resting.Price,
		LeavesQty:     resting.Qty,
		ClientID:      resting.ClientID,
		TickerID:      book.tickerID,
		ClientOrderID: resting.ClientOrderID,
		MarketOrderID: resting.MarketOrderID,
	})

	// Anonymous print; carries neither order id nor priority.
	book.engine.sendMarketUpdate(&protocol.MarketUpdate{
		Kind:     protocol.MarketUpdateTrade,
		OrderID:  protocol.OrderIDInvalid,
		TickerID: book.tickerID,
		Side:     side,
		Price:    resting.Price,
		Qty:      fill,
		Priority: protocol.PriorityInvalid,
	})

	if resting.Qty == 0 {
		book.engine.sendMarketUpdate(&protocol.MarketUpdate{
			Kind:     protocol.MarketUpdateCancel,
			OrderID:  resting.MarketOrderID,
			TickerID: book.tickerID,
			Side:     resting.Side,
			Price:    resting.Price,
			Qty:      0,
			Priority: resting.Priority,
		})
		book.unlinkOrder(restingH, resting)
	} else {
		book.engine.sendMarketUpdate(&protocol.MarketUpdate{
			Kind:     protocol.MarketUpdateModify,
			OrderID:  resting.MarketOrderID,
			TickerID: book.tickerID,
			Side:     resting.Side,
			Price:    resting.Price,
			Qty:      resting.Qty,
			Priority: resting.Priority,
		})
	}
}

// nextPriority returns the priority for a new order resting at price:
// one past the most recently queued order at that level, or 1 on a fresh
// level. The most recent order is the ring predecessor of firstOrder.
func (book *OrderBook) nextPriority(price protocol.Price) protocol.Priority {
	level := book.levelPool.Get(book.levelAt(price))
	if level == nil {
		return 1
	}
	first := book.orderPool.Get(level.firstOrder)
	last := book.orderPool.Get(first.prev)
	return last.Priority + 1
}

// linkOrder queues the order at the back of its price level's FIFO ring,
// creating and sorting in the level when the price is new, and indexes it
// for cancel lookup.
func (book *OrderBook) linkOrder(h structure.Handle, order *Order) error {
	levelH := book.levelAt(order.Price)
	if levelH == structure.HandleInvalid {
		lh, level, ok := book.levelPool.Alloc()
		if !ok {
			return fmt.Errorf("price level pool of ticker %d: %w", book.tickerID, ErrPoolExhausted)
		}
		*level = PriceLevel{Side: order.Side, Price: order.Price, firstOrder: h}
		order.prev, order.next = h, h
		if err := book.linkLevel(lh, level); err != nil {
			book.levelPool.Free(lh)
			return err
		}
	} else {
		level := book.levelPool.Get(levelH)
		first := book.orderPool.Get(level.firstOrder)
		tailH := first.prev
		tail := book.orderPool.Get(tailH)
		order.prev = tailH
		order.next = level.firstOrder
		tail.next = h
		first.prev = h
	}

	book.clientRow(order.ClientID)[order.ClientOrderID] = h
	return nil
}

// unlinkOrder removes the order from its level ring and the client index
// and returns it to the pool. A level never outlives its last order.
func (book *OrderBook) unlinkOrder(h structure.Handle, order *Order) {
	levelH := book.levelAt(order.Price)
	level := book.levelPool.Get(levelH)

	if order.next == h {
		book.unlinkLevel(levelH, level)
	} else {
		prev := book.orderPool.Get(order.prev)
		next := book.orderPool.Get(order.next)
		prev.next = order.next
		next.prev = order.prev
		if level.firstOrder == h {
			level.firstOrder = order.next
		}
	}

	book.clientOrders[order.ClientID][order.ClientOrderID] = structure.HandleInvalid
	book.orderPool.Free(h)
}

// linkLevel inserts a fresh level into its side's sorted ring and the
// price index. The walk starts at the best level and stops at the first
// level the new price beats; a price worse than every live level queues
// at the ring tail. O(live levels), acceptable at the configured bounds.
func (book *OrderBook) linkLevel(lh structure.Handle, level *PriceLevel) error {
	idx := book.priceIndex(level.Price)
	if occupant := book.levelPool.Get(book.priceToLevel[idx]); occupant != nil && occupant.Price != level.Price {
		return fmt.Errorf("prices %d and %d share slot %d of the price index: %w",
			occupant.Price, level.Price, idx, ErrPriceBand)
	}
	book.priceToLevel[idx] = lh

	best := book.bestFor(level.Side)
	if *best == structure.HandleInvalid {
		level.prev, level.next = lh, lh
		*best = lh
		return nil
	}

	target := *best
	for {
		t := book.levelPool.Get(target)
		if beats(level.Side, level.Price, t.Price) {
			book.insertLevelBefore(lh, level, target, t)
			if target == *best {
				*best = lh
			}
			return nil
		}
		target = t.next
		if target == *best {
			// Wrapped: worse than every level, becomes the ring tail.
			t = book.levelPool.Get(target)
			book.insertLevelBefore(lh, level, target, t)
			return nil
		}
	}
}

// unlinkLevel removes an empty level from its side ring and the price
// index. When the best level goes, its ring successor is the next best.
func (book *OrderBook) unlinkLevel(lh structure.Handle, level *PriceLevel) {
	best := book.bestFor(level.Side)
	if level.next == lh {
		*best = structure.HandleInvalid
	} else {
		prev := book.levelPool.Get(level.prev)
		next := book.levelPool.Get(level.next)
		prev.next = level.next
		next.prev = level.prev
		if *best == lh {
			*best = level.next
		}
	}

	book.priceToLevel[book.priceIndex(level.Price)] = structure.HandleInvalid
	book.levelPool.Free(lh)
}

func (book *OrderBook) insertLevelBefore(lh structure.Handle, level *PriceLevel, targetH structure.Handle, target *PriceLevel) {
	prev := book.levelPool.Get(target.prev)
	level.prev = target.prev
	level.next = targetH
	prev.next = lh
	target.prev = lh
}

// beats reports whether a new level at newPrice sorts ahead of a resting
// level: higher wins on the bid ring, lower on the ask ring.
func beats(side protocol.Side, newPrice, restingPrice protocol.Price) bool {
	if side == protocol.SideBuy {
		return newPrice > restingPrice
	}
	return newPrice < restingPrice
}

func (book *OrderBook) bestFor(side protocol.Side) *structure.Handle {
	if side == protocol.SideBuy {
		return &book.bestBid
	}
	return &book.bestAsk
}

func (book *OrderBook) priceIndex(price protocol.Price) int {
	return int(uint64(price) % uint64(len(book.priceToLevel)))
}

// levelAt returns the live level holding exactly this price, or
// HandleInvalid.
func (book *OrderBook) levelAt(price protocol.Price) structure.Handle {
	h := book.priceToLevel[book.priceIndex(price)]
	level := book.levelPool.Get(h)
	if level == nil || level.Price != price {
		return structure.HandleInvalid
	}
	return h
}

// clientRow returns the per-client order index row, allocating it on
// first touch.
func (book *OrderBook) clientRow(id protocol.ClientID) []structure.Handle {
	row := book.clientOrders[id]
	if row == nil {
		row = make([]structure.Handle, book.cfg.MaxOrderIDs)
		book.clientOrders[id] = row
	}
	return row
}

func (book *OrderBook) lookupOrder(clientID protocol.ClientID, orderID protocol.OrderID) structure.Handle {
	if int(clientID) >= len(book.clientOrders) || orderID >= protocol.OrderID(book.cfg.MaxOrderIDs) {
		return structure.HandleInvalid
	}
	row := book.clientOrders[clientID]
	if row == nil {
		return structure.HandleInvalid
	}
	return row[orderID]
}

// BestBid returns the best bid price; ok is false when the side is empty.
func (book *OrderBook) BestBid() (protocol.Price, bool) {
	if level := book.levelPool.Get(book.bestBid); level != nil {
		return level.Price, true
	}
	return protocol.PriceInvalid, false
}

// BestAsk returns the best ask price; ok is false when the side is empty.
func (book *OrderBook) BestAsk() (protocol.Price, bool) {
	if level := book.levelPool.Get(book.bestAsk); level != nil {
		return level.Price, true
	}
	return protocol.PriceInvalid, false
}

// Levels returns the live prices of one side walking the ring from the
// best level.
func (book *OrderBook) Levels(side protocol.Side) []protocol.Price {
	var prices []protocol.Price
	start := *book.bestFor(side)
	for h := start; ; {
		level := book.levelPool.Get(h)
		if level == nil {
			break
		}
		prices = append(prices, level.Price)
		h = level.next
		if h == start {
			break
		}
	}
	return prices
}

// OrderCount returns the number of resting orders.
func (book *OrderBook) OrderCount() int {
	return book.orderPool.Len()
}

// LevelCount returns the number of live price levels across both sides.
func (book *OrderBook) LevelCount() int {
	return book.levelPool.Len()
}

// Priorities returns the priorities of the orders resting at price in
// FIFO order; nil when the level does not exist.
func (book *OrderBook) Priorities(price protocol.Price) []protocol.Priority {
	level := book.levelPool.Get(book.levelAt(price))
	if level == nil {
		return nil
	}
	var out []protocol.Priority
	for h := level.firstOrder; ; {
		order := book.orderPool.Get(h)
		out = append(out, order.Priority)
		h = order.next
		if h == level.firstOrder {
			break
		}
	}
	return out
}
