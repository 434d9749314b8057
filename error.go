package exchange

import "errors"

var (
	ErrInvalidRequest    = errors.New("client request is malformed or carries an unknown kind")
	ErrUnknownInstrument = errors.New("ticker id is outside the configured instrument table")
	ErrPoolExhausted     = errors.New("fixed-capacity pool is exhausted")
	ErrPriceBand         = errors.New("distinct price levels exceed the configured bound")
	ErrInvalidConfig     = errors.New("the configuration is invalid")
)
