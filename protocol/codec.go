package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
)

// Binary sizes of the three wire records. The layouts are fixed: fields
// are packed in struct declaration order, little-endian, no padding.
const (
	ClientRequestSize  = 1 + 4 + 1 + 8 + 8 + 4 + 4
	ClientResponseSize = 1 + 1 + 4 + 8 + 4 + 4 + 4 + 8 + 8
	MarketUpdateSize   = 1 + 8 + 4 + 1 + 8 + 4 + 8
)

var ErrShortBuffer = errors.New("protocol: buffer too short")

// AppendClientRequest appends the binary encoding of r to dst.
func AppendClientRequest(dst []byte, r *ClientRequest) []byte {
	dst = append(dst, byte(r.Kind))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Qty))
	dst = append(dst, byte(r.Side))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.Price))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.OrderID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.ClientID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.TickerID))
	return dst
}

// DecodeClientRequest parses one ClientRequest from the front of data.
func DecodeClientRequest(data []byte) (ClientRequest, error) {
	if len(data) < ClientRequestSize {
		return ClientRequest{}, ErrShortBuffer
	}
	return ClientRequest{
		Kind:     ClientRequestKind(data[0]),
		Qty:      Qty(binary.LittleEndian.Uint32(data[1:])),
		Side:     Side(data[5]),
		Price:    Price(binary.LittleEndian.Uint64(data[6:])),
		OrderID:  OrderID(binary.LittleEndian.Uint64(data[14:])),
		ClientID: ClientID(binary.LittleEndian.Uint32(data[22:])),
		TickerID: TickerID(binary.LittleEndian.Uint32(data[26:])),
	}, nil
}

// AppendClientResponse appends the binary encoding of r to dst.
func AppendClientResponse(dst []byte, r *ClientResponse) []byte {
	dst = append(dst, byte(r.Kind), byte(r.Side))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.ExecQty))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.Price))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.LeavesQty))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.ClientID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.TickerID))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.ClientOrderID))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.MarketOrderID))
	return dst
}

// DecodeClientResponse parses one ClientResponse from the front of data.
func DecodeClientResponse(data []byte) (ClientResponse, error) {
	if len(data) < ClientResponseSize {
		return ClientResponse{}, ErrShortBuffer
	}
	return ClientResponse{
		Kind:          ClientResponseKind(data[0]),
		Side:          Side(data[1]),
		ExecQty:       Qty(binary.LittleEndian.Uint32(data[2:])),
		Price:         Price(binary.LittleEndian.Uint64(data[6:])),
		LeavesQty:     Qty(binary.LittleEndian.Uint32(data[14:])),
		ClientID:      ClientID(binary.LittleEndian.Uint32(data[18:])),
		TickerID:      TickerID(binary.LittleEndian.Uint32(data[22:])),
		ClientOrderID: OrderID(binary.LittleEndian.Uint64(data[26:])),
		MarketOrderID: OrderID(binary.LittleEndian.Uint64(data[34:])),
	}, nil
}

// AppendMarketUpdate appends the binary encoding of u to dst.
func AppendMarketUpdate(dst []byte, u *MarketUpdate) []byte {
	dst = append(dst, byte(u.Kind))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(u.OrderID))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(u.TickerID))
	dst = append(dst, byte(u.Side))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(u.Price))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(u.Qty))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(u.Priority))
	return dst
}

// DecodeMarketUpdate parses one MarketUpdate from the front of data.
func DecodeMarketUpdate(data []byte) (MarketUpdate, error) {
	if len(data) < MarketUpdateSize {
		return MarketUpdate{}, ErrShortBuffer
	}
	return MarketUpdate{
		Kind:     MarketUpdateKind(data[0]),
		OrderID:  OrderID(binary.LittleEndian.Uint64(data[1:])),
		TickerID: TickerID(binary.LittleEndian.Uint32(data[9:])),
		Side:     Side(data[13]),
		Price:    Price(binary.LittleEndian.Uint64(data[14:])),
		Qty:      Qty(binary.LittleEndian.Uint32(data[22:])),
		Priority: Priority(binary.LittleEndian.Uint64(data[26:])),
	}, nil
}

// Serializer defines the contract for serializing records leaving the
// core over operator-facing channels (message queues, ops tooling).
// The binary Append/Decode functions above stay the wire format between
// gateway and engine; Serializer is for everything downstream of the
// outbound rings.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultJSONSerializer implements Serializer using encoding/json.
type DefaultJSONSerializer struct{}

func (s *DefaultJSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s *DefaultJSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
