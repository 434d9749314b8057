package exchange

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
)

func trade(price protocol.Price, qty protocol.Qty) *protocol.MarketUpdate {
	return &protocol.MarketUpdate{
		Kind:     protocol.MarketUpdateTrade,
		OrderID:  protocol.OrderIDInvalid,
		Side:     protocol.SideBuy,
		Price:    price,
		Qty:      qty,
		Priority: protocol.PriorityInvalid,
	}
}

func TestTradeTapeOHLCV(t *testing.T) {
	tape := NewTradeTape(decimal.New(1, 0), time.Minute)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tape.Record(trade(100, 2), base.Add(5*time.Second))
	tape.Record(trade(105, 1), base.Add(20*time.Second))
	tape.Record(trade(95, 3), base.Add(40*time.Second))
	tape.Record(trade(101, 1), base.Add(59*time.Second))

	require.Equal(t, 1, tape.Len())
	candles := tape.Candles(base.Unix(), base.Add(time.Minute).Unix())
	require.Len(t, candles, 1)

	candle := candles[0]
	assert.Equal(t, base.Unix(), candle.Start)
	assert.Equal(t, "100", candle.Open.String())
	assert.Equal(t, "105", candle.High.String())
	assert.Equal(t, "95", candle.Low.String())
	assert.Equal(t, "101", candle.Close.String())
	assert.Equal(t, protocol.Qty(7), candle.Volume)
	assert.Equal(t, 4, candle.Trades)
}

func TestTradeTapeBuckets(t *testing.T) {
	tape := NewTradeTape(decimal.New(1, 0), time.Minute)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tape.Record(trade(100, 1), base)
	tape.Record(trade(110, 1), base.Add(time.Minute))
	tape.Record(trade(120, 1), base.Add(3*time.Minute))

	assert.Equal(t, 3, tape.Len())

	candles := tape.Candles(base.Unix(), base.Add(time.Minute).Unix())
	require.Len(t, candles, 2)
	assert.Equal(t, "100", candles[0].Close.String())
	assert.Equal(t, "110", candles[1].Close.String())

	// Range past the last bucket yields nothing.
	assert.Empty(t, tape.Candles(base.Add(4*time.Minute).Unix(), base.Add(9*time.Minute).Unix()))
}

func TestTradeTapeIgnoresNonTrades(t *testing.T) {
	tape := NewTradeTape(decimal.New(1, 0), time.Minute)

	tape.Record(&protocol.MarketUpdate{Kind: protocol.MarketUpdateAdd, Price: 100, Qty: 1}, time.Now())
	tape.Record(&protocol.MarketUpdate{Kind: protocol.MarketUpdateCancel, Price: 100}, time.Now())

	assert.Zero(t, tape.Len())
}

func TestTradeTapeTickScaling(t *testing.T) {
	tape := NewTradeTape(decimal.New(25, -2), time.Minute) // tick size 0.25
	at := time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC)

	tape.Record(trade(401, 1), at)

	candles := tape.Candles(0, at.Unix())
	require.Len(t, candles, 1)
	assert.Equal(t, "100.25", candles[0].Close.String())
}
