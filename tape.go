package exchange

import (
	"time"

	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
)

// Candle aggregates the trade prints of one time bucket. Prices are in
// currency units.
type Candle struct {
	Start  int64           `json:"start"` // bucket start, unix seconds
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume protocol.Qty    `json:"volume"`
	Trades int             `json:"trades"`
}

// TradeTape consumes TRADE prints for one instrument and maintains OHLCV
// candles bucketed by a fixed interval, ordered by bucket start.
type TradeTape struct {
	tickSize decimal.Decimal
	interval time.Duration
	candles  *skiplist.SkipList
}

// NewTradeTape creates a tape with the given candle interval.
func NewTradeTape(tickSize decimal.Decimal, interval time.Duration) *TradeTape {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TradeTape{
		tickSize: tickSize,
		interval: interval,
		candles:  skiplist.New(skiplist.Int64),
	}
}

// Record folds one trade print into its candle. Non-TRADE updates are
// ignored so the tape can sit directly on the market-data stream.
func (tape *TradeTape) Record(update *protocol.MarketUpdate, at time.Time) {
	if update.Kind != protocol.MarketUpdateTrade {
		return
	}
	bucket := at.Truncate(tape.interval).Unix()
	price := decimal.NewFromInt(int64(update.Price)).Mul(tape.tickSize)

	el := tape.candles.Get(bucket)
	if el == nil {
		tape.candles.Set(bucket, &Candle{
			Start:  bucket,
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: update.Qty,
			Trades: 1,
		})
		return
	}

	candle, _ := el.Value.(*Candle)
	if price.GreaterThan(candle.High) {
		candle.High = price
	}
	if price.LessThan(candle.Low) {
		candle.Low = price
	}
	candle.Close = price
	candle.Volume += update.Qty
	candle.Trades++
}

// Candles returns the candles whose bucket start falls in [from, to],
// ascending.
func (tape *TradeTape) Candles(from, to int64) []*Candle {
	var out []*Candle
	for el := tape.candles.Find(from); el != nil; el = el.Next() {
		candle, _ := el.Value.(*Candle)
		if candle.Start > to {
			break
		}
		out = append(out, candle)
	}
	return out
}

// Len returns the number of candles on the tape.
func (tape *TradeTape) Len() int {
	return tape.candles.Len()
}
