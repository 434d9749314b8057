package exchange

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

// Engine owns one OrderBook per configured instrument and drives them
// from the inbound request ring. Run executes on a single goroutine; each
// request is processed to completion before the next is read, so book
// state is consistent at every point between requests.
//
// The three rings are the only concurrency boundary: the engine is the
// sole consumer of requests and the sole producer of responses and
// market updates.
type Engine struct {
	cfg    *Config
	logger *slog.Logger

	requests  *structure.Ring[protocol.ClientRequest]
	responses *structure.Ring[protocol.ClientResponse]
	updates   *structure.Ring[protocol.MarketUpdate]

	books []*OrderBook

	stop    atomic.Bool
	running atomic.Bool
}

// NewEngine builds the instrument table and wires the books to the
// outbound rings. The caller keeps ownership of the rings; the request
// ring's producer and the outbound rings' consumers run elsewhere.
func NewEngine(cfg *Config, requests *structure.Ring[protocol.ClientRequest], responses *structure.Ring[protocol.ClientResponse], updates *structure.Ring[protocol.MarketUpdate]) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		cfg:       cfg,
		logger:    cfg.logger(),
		requests:  requests,
		responses: responses,
		updates:   updates,
		books:     make([]*OrderBook, cfg.MaxInstruments),
	}
	for i := range engine.books {
		engine.books[i] = newOrderBook(protocol.TickerID(i), cfg, engine)
	}
	return engine, nil
}

// Run drains the inbound ring until Stop is called. It pins the dispatch
// goroutine to one OS thread for scheduling stability.
//
// Run returns nil on a requested stop. It returns a non-nil error when
// the inbound stream is corrupted or a pool bound is hit, with the
// failing request already consumed; under FailPanic it panics instead so
// an abort-on-violation deployment gets its crash.
func (engine *Engine) Run() error {
	engine.running.Store(true)
	defer engine.running.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for !engine.stop.Load() {
		req := engine.requests.TryRead()
		if req == nil {
			runtime.Gosched()
			continue
		}
		err := engine.process(req)
		engine.requests.CommitRead()
		if err != nil {
			engine.logger.Error("dispatch failed", "error", err, "kind", req.Kind.String(),
				"client_id", uint32(req.ClientID), "ticker_id", uint32(req.TickerID))
			if engine.cfg.Failure == FailPanic {
				panic(err)
			}
			return err
		}
	}
	return nil
}

// Stop flags the dispatch loop to exit. The loop may consume a few more
// requests before it observes the flag; that latency is accepted.
func (engine *Engine) Stop() {
	engine.stop.Store(true)
}

// Running reports whether the dispatch loop is active.
func (engine *Engine) Running() bool {
	return engine.running.Load()
}

// Book exposes the order book of one instrument for inspection. It is
// only safe to use while the dispatch loop is idle.
func (engine *Engine) Book(tickerID protocol.TickerID) *OrderBook {
	if int(tickerID) >= len(engine.books) {
		return nil
	}
	return engine.books[tickerID]
}

func (engine *Engine) process(req *protocol.ClientRequest) error {
	if int(req.TickerID) >= len(engine.books) {
		return fmt.Errorf("ticker %d: %w", req.TickerID, ErrUnknownInstrument)
	}
	book := engine.books[req.TickerID]

	switch req.Kind {
	case protocol.ClientRequestNew:
		// Out-of-bound ids on a NEW cannot be indexed for cancel; the
		// producer is broken, not the client.
		if int(req.ClientID) >= engine.cfg.MaxClients || req.OrderID >= protocol.OrderID(engine.cfg.MaxOrderIDs) {
			return fmt.Errorf("new order ids out of bounds (client %d, order %d): %w",
				req.ClientID, req.OrderID, ErrInvalidRequest)
		}
		return book.add(req.ClientID, req.OrderID, req.Side, req.Price, req.Qty)
	case protocol.ClientRequestCancel:
		book.cancel(req.ClientID, req.OrderID)
		return nil
	default:
		return fmt.Errorf("request kind %d: %w", uint8(req.Kind), ErrInvalidRequest)
	}
}

// sendClientResponse copies one response onto the outbound ring. A full
// ring means the consumer is not keeping up with its sizing; the producer
// spins rather than drop or reorder.
func (engine *Engine) sendClientResponse(res *protocol.ClientResponse) {
	for {
		if slot := engine.responses.TryWrite(); slot != nil {
			*slot = *res
			engine.responses.CommitWrite()
			return
		}
		runtime.Gosched()
	}
}

// sendMarketUpdate copies one market update onto the outbound ring,
// spinning on a full ring like sendClientResponse.
func (engine *Engine) sendMarketUpdate(update *protocol.MarketUpdate) {
	for {
		if slot := engine.updates.TryWrite(); slot != nil {
			*slot = *update
			engine.updates.CommitWrite()
			return
		}
		runtime.Gosched()
	}
}
