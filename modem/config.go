package modem

import (
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/oscgw/at"
)

const (
	// DefaultMaxRetries is the number of attempts an operation gets.
	DefaultMaxRetries = 1
	// DefaultATTimeout bounds a single attempt of an operation.
	DefaultATTimeout = 10 * time.Second
	// DefaultPollInterval is the pause after a read that returned nothing.
	DefaultPollInterval = 10 * time.Millisecond
)

// Config holds the settings of a Modem. It is immutable once the Modem has
// been created; use ConfigBuilder to assemble one.
type Config struct {
	dialer       Dialer
	clock        Clock
	logger       *slog.Logger
	maxRetries   int
	atTimeout    time.Duration
	rxBufferSize int
	pollInterval time.Duration
}

// MaxRetries returns how many times an operation is attempted.
func (c Config) MaxRetries() int { return c.maxRetries }

// ATTimeout returns the time budget of a single attempt.
func (c Config) ATTimeout() time.Duration { return c.atTimeout }

// RxBufferSize returns the capacity of the rolling response window.
func (c Config) RxBufferSize() int { return c.rxBufferSize }

func (c *Config) setDefaults() {
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.atTimeout == 0 {
		c.atTimeout = DefaultATTimeout
	}
	if c.rxBufferSize == 0 {
		c.rxBufferSize = at.DefaultCapacity
	}
	if c.pollInterval == 0 {
		c.pollInterval = DefaultPollInterval
	}
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	if c.maxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidConfig, c.maxRetries)
	}
	if c.atTimeout <= 0 {
		return fmt.Errorf("%w: AT timeout must be positive, got %s", ErrInvalidConfig, c.atTimeout)
	}
	if c.rxBufferSize < 0 {
		return fmt.Errorf("%w: rx buffer size must not be negative, got %d", ErrInvalidConfig, c.rxBufferSize)
	}
	if c.pollInterval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative, got %s", ErrInvalidConfig, c.pollInterval)
	}
	return nil
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with every setting unset. Unset
// settings take their defaults in Build.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the Dialer used to reach the module. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithClock sets the time source used for timeouts.
func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.clock = c
	return b
}

// WithLogger sets the logger. Defaults to discarding all records.
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithMaxRetries sets how many times an operation is attempted as a whole.
func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	b.config.maxRetries = n
	return b
}

// WithATTimeout sets the time budget of one attempt of an operation.
func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.atTimeout = d
	return b
}

// WithRxBufferSize sets the capacity of the rolling response window.
func (b *ConfigBuilder) WithRxBufferSize(n int) *ConfigBuilder {
	b.config.rxBufferSize = n
	return b
}

// WithPollInterval sets the pause after a read that returned no bytes.
func (b *ConfigBuilder) WithPollInterval(d time.Duration) *ConfigBuilder {
	b.config.pollInterval = d
	return b
}

// Build applies defaults and validates the configuration.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	c.setDefaults()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
