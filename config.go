package exchange

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// FailurePolicy selects what the engine does when the inbound stream is
// corrupted (a request kind outside NEW/CANCEL, or ids outside the
// configured bounds on a NEW). The condition is unrecoverable either way;
// the policy only decides who terminates the process.
type FailurePolicy uint8

const (
	// FailStop makes Run return a typed error and leaves shutdown to the host.
	FailStop FailurePolicy = iota
	// FailPanic reproduces an abort-on-violation deployment: Run panics.
	FailPanic
)

// Config carries every capacity bound of the matching core. All tables
// and pools are sized once from these values at construction; they are
// hard capacities, not hints.
type Config struct {
	// MaxInstruments sizes the ticker id -> order book table.
	MaxInstruments int `mapstructure:"max_instruments"`
	// MaxClients bounds client ids; a request beyond it cannot be indexed.
	MaxClients int `mapstructure:"max_clients"`
	// MaxOrderIDs bounds client order ids per client.
	MaxOrderIDs int `mapstructure:"max_order_ids"`
	// MaxPriceLevels bounds distinct live prices per side and sizes the
	// direct-mapped price index (price modulo MaxPriceLevels).
	MaxPriceLevels int `mapstructure:"max_price_levels"`
	// MaxOrders sizes each book's order pool.
	MaxOrders int `mapstructure:"max_orders"`

	// Ring capacities, each a power of 2.
	RequestRingSize  int `mapstructure:"request_ring_size"`
	ResponseRingSize int `mapstructure:"response_ring_size"`
	UpdateRingSize   int `mapstructure:"update_ring_size"`

	Failure FailurePolicy `mapstructure:"-"`

	// FailureMode is the file/env spelling of Failure: "stop" or "panic".
	FailureMode string `mapstructure:"failure_mode"`

	Logger *slog.Logger `mapstructure:"-"`
}

// DefaultConfig returns a configuration sized for tests and small
// deployments. Production deployments are expected to size every bound
// explicitly.
func DefaultConfig() *Config {
	return &Config{
		MaxInstruments:   8,
		MaxClients:       256,
		MaxOrderIDs:      1024,
		MaxPriceLevels:   256,
		MaxOrders:        16384,
		RequestRingSize:  64 * 1024,
		ResponseRingSize: 64 * 1024,
		UpdateRingSize:   64 * 1024,
		Failure:          FailStop,
	}
}

// Validate checks bounds and ring sizes.
func (c *Config) Validate() error {
	if c.MaxInstruments <= 0 || c.MaxClients <= 0 || c.MaxOrderIDs <= 0 ||
		c.MaxPriceLevels <= 0 || c.MaxOrders <= 0 {
		return fmt.Errorf("%w: capacity bounds must be positive", ErrInvalidConfig)
	}
	for _, size := range []int{c.RequestRingSize, c.ResponseRingSize, c.UpdateRingSize} {
		if size <= 0 || size&(size-1) != 0 {
			return fmt.Errorf("%w: ring sizes must be powers of 2", ErrInvalidConfig)
		}
	}
	return nil
}

// LoadConfig reads a config file (YAML/TOML/JSON, decided by extension)
// over the defaults. Every key can also be supplied through the
// environment with the EXCHANGE_ prefix, e.g. EXCHANGE_MAX_CLIENTS.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetDefault("max_instruments", cfg.MaxInstruments)
	v.SetDefault("max_clients", cfg.MaxClients)
	v.SetDefault("max_order_ids", cfg.MaxOrderIDs)
	v.SetDefault("max_price_levels", cfg.MaxPriceLevels)
	v.SetDefault("max_orders", cfg.MaxOrders)
	v.SetDefault("request_ring_size", cfg.RequestRingSize)
	v.SetDefault("response_ring_size", cfg.ResponseRingSize)
	v.SetDefault("update_ring_size", cfg.UpdateRingSize)
	v.SetDefault("failure_mode", "stop")

	v.SetEnvPrefix("EXCHANGE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	switch cfg.FailureMode {
	case "", "stop":
		cfg.Failure = FailStop
	case "panic":
		cfg.Failure = FailPanic
	default:
		return nil, fmt.Errorf("%w: unknown failure_mode %q", ErrInvalidConfig, cfg.FailureMode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger
}
