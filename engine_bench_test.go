package exchange

import (
	"math/rand"
	"testing"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

func newBenchEngine(b *testing.B) (*Engine, *structure.Ring[protocol.ClientResponse], *structure.Ring[protocol.MarketUpdate]) {
	b.Helper()

	cfg := &Config{
		MaxInstruments:   1,
		MaxClients:       1024,
		MaxOrderIDs:      64 * 1024,
		MaxPriceLevels:   1024,
		MaxOrders:        64 * 1024,
		RequestRingSize:  64 * 1024,
		ResponseRingSize: 64 * 1024,
		UpdateRingSize:   64 * 1024,
	}
	requests := structure.NewRing[protocol.ClientRequest](cfg.RequestRingSize)
	responses := structure.NewRing[protocol.ClientResponse](cfg.ResponseRingSize)
	updates := structure.NewRing[protocol.MarketUpdate](cfg.UpdateRingSize)

	engine, err := NewEngine(cfg, requests, responses, updates)
	if err != nil {
		b.Fatal(err)
	}
	return engine, responses, updates
}

func drainRings(responses *structure.Ring[protocol.ClientResponse], updates *structure.Ring[protocol.MarketUpdate]) {
	for responses.TryRead() != nil {
		responses.CommitRead()
	}
	for updates.TryRead() != nil {
		updates.CommitRead()
	}
}

// BenchmarkAddCancel measures the round trip of resting an order and
// canceling it, the dominant path of a quoting workload.
func BenchmarkAddCancel(b *testing.B) {
	engine, responses, updates := newBenchEngine(b)
	book := engine.Book(0)

	// Fixed seed for repeatability.
	rng := rand.New(rand.NewSource(42))
	prices := make([]protocol.Price, 512)
	for i := range prices {
		prices[i] = protocol.Price(9744 + rng.Intn(512))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		orderID := protocol.OrderID(i % (64 * 1024))
		_ = book.add(1, orderID, protocol.SideBuy, prices[i%len(prices)], 1)
		book.cancel(1, orderID)
		drainRings(responses, updates)
	}
	b.StopTimer()

	b.ReportMetric(float64(b.N)*2/b.Elapsed().Seconds(), "requests/sec")
}

// BenchmarkMatch measures a rest-then-cross pair, one trade per loop.
func BenchmarkMatch(b *testing.B) {
	engine, responses, updates := newBenchEngine(b)
	book := engine.Book(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		orderID := protocol.OrderID(i % (64 * 1024))
		_ = book.add(1, orderID, protocol.SideSell, 10000, 1)
		_ = book.add(2, orderID, protocol.SideBuy, 10000, 1)
		drainRings(responses, updates)
	}
	b.StopTimer()

	b.ReportMetric(float64(b.N)*2/b.Elapsed().Seconds(), "orders/sec")
}
