package exchange

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

// Instrument describes one tradable symbol on the public feed side.
type Instrument struct {
	TickerID protocol.TickerID
	Symbol   string
	TickSize decimal.Decimal
}

// MarketDataFeed is the consumer of the outbound market-data ring. It
// rebuilds per-instrument aggregated books and trade tapes and forwards
// every update to the configured publisher.
//
// Unlike the matching core, the feed is a downstream consumer: an update
// it cannot apply (unknown instrument, out-of-sync stream) is logged and
// skipped, never fatal.
type MarketDataFeed struct {
	updates   *structure.Ring[protocol.MarketUpdate]
	publisher UpdatePublisher
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	books map[protocol.TickerID]*AggregatedBook
	tapes map[protocol.TickerID]*TradeTape

	stop    atomic.Bool
	running atomic.Bool
}

// NewMarketDataFeed wires a feed over the given ring. The feed is the
// ring's single consumer; Run must be the only goroutine reading it.
func NewMarketDataFeed(updates *structure.Ring[protocol.MarketUpdate], publisher UpdatePublisher, instruments []Instrument, logger *slog.Logger) *MarketDataFeed {
	if logger == nil {
		logger = slog.Default()
	}
	feed := &MarketDataFeed{
		updates:   updates,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		books:     make(map[protocol.TickerID]*AggregatedBook, len(instruments)),
		tapes:     make(map[protocol.TickerID]*TradeTape, len(instruments)),
	}
	for _, inst := range instruments {
		feed.books[inst.TickerID] = NewAggregatedBook(inst.TickerID, inst.TickSize)
		feed.tapes[inst.TickerID] = NewTradeTape(inst.TickSize, time.Minute)
	}
	return feed
}

// Run drains the market-data ring until Stop is called, then finishes
// whatever is still queued and returns.
func (feed *MarketDataFeed) Run() {
	feed.running.Store(true)
	defer feed.running.Store(false)

	for {
		slot := feed.updates.TryRead()
		if slot == nil {
			if feed.stop.Load() {
				return
			}
			runtime.Gosched()
			continue
		}
		update := *slot
		feed.updates.CommitRead()

		feed.apply(&update)
		feed.publisher.PublishUpdates(&update)
	}
}

// Stop flags the feed loop to exit once the ring is drained.
func (feed *MarketDataFeed) Stop() {
	feed.stop.Store(true)
}

// Running reports whether the feed loop is active.
func (feed *MarketDataFeed) Running() bool {
	return feed.running.Load()
}

func (feed *MarketDataFeed) apply(update *protocol.MarketUpdate) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	book, ok := feed.books[update.TickerID]
	if !ok {
		feed.logger.Warn("market update for unconfigured instrument",
			"ticker_id", uint32(update.TickerID), "kind", update.Kind.String())
		return
	}
	if err := book.Apply(update); err != nil {
		feed.logger.Warn("market update not applied", "error", err)
	}
	feed.tapes[update.TickerID].Record(update, feed.now())
}

// Depth returns up to limit aggregated levels of one side, best first.
// Nil for an unconfigured instrument.
func (feed *MarketDataFeed) Depth(tickerID protocol.TickerID, side protocol.Side, limit int) []DepthItem {
	feed.mu.RLock()
	defer feed.mu.RUnlock()
	book, ok := feed.books[tickerID]
	if !ok {
		return nil
	}
	return book.Depth(side, limit)
}

// Best returns the best level of one side of one instrument.
func (feed *MarketDataFeed) Best(tickerID protocol.TickerID, side protocol.Side) (DepthItem, bool) {
	feed.mu.RLock()
	defer feed.mu.RUnlock()
	book, ok := feed.books[tickerID]
	if !ok {
		return DepthItem{}, false
	}
	return book.Best(side)
}

// Candles returns the candles of one instrument in [from, to].
func (feed *MarketDataFeed) Candles(tickerID protocol.TickerID, from, to int64) []*Candle {
	feed.mu.RLock()
	defer feed.mu.RUnlock()
	tape, ok := feed.tapes[tickerID]
	if !ok {
		return nil
	}
	return tape.Candles(from, to)
}

// ResponseRelay is the consumer of the outbound response ring: it hands
// every client response to the configured publisher (typically the order
// gateway's egress).
type ResponseRelay struct {
	responses *structure.Ring[protocol.ClientResponse]
	publisher ResponsePublisher
	logger    *slog.Logger

	stop    atomic.Bool
	running atomic.Bool
}

// NewResponseRelay wires a relay over the given ring. The relay is the
// ring's single consumer.
func NewResponseRelay(responses *structure.Ring[protocol.ClientResponse], publisher ResponsePublisher, logger *slog.Logger) *ResponseRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseRelay{
		responses: responses,
		publisher: publisher,
		logger:    logger,
	}
}

// Run drains the response ring until Stop is called, then finishes the
// queued backlog and returns.
func (relay *ResponseRelay) Run() {
	relay.running.Store(true)
	defer relay.running.Store(false)

	for {
		slot := relay.responses.TryRead()
		if slot == nil {
			if relay.stop.Load() {
				return
			}
			runtime.Gosched()
			continue
		}
		res := *slot
		relay.responses.CommitRead()
		relay.publisher.PublishResponses(&res)
	}
}

// Stop flags the relay loop to exit once the ring is drained.
func (relay *ResponseRelay) Stop() {
	relay.stop.Store(true)
}

// Running reports whether the relay loop is active.
func (relay *ResponseRelay) Running() bool {
	return relay.running.Load()
}
