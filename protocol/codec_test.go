package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRequestRoundTrip(t *testing.T) {
	req := ClientRequest{
		Kind:     ClientRequestNew,
		Qty:      250,
		Side:     SideBuy,
		Price:    10050,
		OrderID:  77,
		ClientID: 12,
		TickerID: 3,
	}

	buf := AppendClientRequest(nil, &req)
	require.Len(t, buf, ClientRequestSize)

	got, err := DecodeClientRequest(buf)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestClientResponseRoundTrip(t *testing.T) {
	res := ClientResponse{
		Kind:          ClientResponseFilled,
		Side:          SideSell,
		ExecQty:       5,
		Price:         9990,
		LeavesQty:     15,
		ClientID:      4,
		TickerID:      1,
		ClientOrderID: 9,
		MarketOrderID: 100,
	}

	buf := AppendClientResponse(nil, &res)
	require.Len(t, buf, ClientResponseSize)

	got, err := DecodeClientResponse(buf)
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestMarketUpdateRoundTrip(t *testing.T) {
	update := MarketUpdate{
		Kind:     MarketUpdateTrade,
		OrderID:  OrderIDInvalid,
		TickerID: 2,
		Side:     SideBuy,
		Price:    10000,
		Qty:      8,
		Priority: PriorityInvalid,
	}

	buf := AppendMarketUpdate(nil, &update)
	require.Len(t, buf, MarketUpdateSize)

	got, err := DecodeMarketUpdate(buf)
	require.NoError(t, err)
	assert.Equal(t, update, got)

	// Invalid sentinels survive the trip intact.
	assert.Equal(t, OrderIDInvalid, got.OrderID)
	assert.Equal(t, PriorityInvalid, got.Priority)
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := DecodeClientRequest(make([]byte, ClientRequestSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = DecodeClientResponse(make([]byte, ClientResponseSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = DecodeMarketUpdate(make([]byte, MarketUpdateSize-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestAppendReusesBuffer(t *testing.T) {
	req := ClientRequest{Kind: ClientRequestCancel, ClientID: 1, OrderID: 2}

	buf := make([]byte, 0, 2*ClientRequestSize)
	buf = AppendClientRequest(buf, &req)
	buf = AppendClientRequest(buf, &req)
	require.Len(t, buf, 2*ClientRequestSize)

	second, err := DecodeClientRequest(buf[ClientRequestSize:])
	require.NoError(t, err)
	assert.Equal(t, req, second)
}

func TestJSONSerializer(t *testing.T) {
	s := &DefaultJSONSerializer{}

	update := MarketUpdate{Kind: MarketUpdateAdd, OrderID: 1, Side: SideBuy, Price: 100, Qty: 10, Priority: 1}
	data, err := s.Marshal(&update)
	require.NoError(t, err)

	var got MarketUpdate
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, update, got)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "NEW", ClientRequestNew.String())
	assert.Equal(t, "CANCEL_REJECTED", ClientResponseCancelRejected.String())
	assert.Equal(t, "TRADE", MarketUpdateTrade.String())
	assert.Equal(t, "BUY", SideBuy.String())
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}
