package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/observability/log"
)

const (
	DefaultTickLength  = 1.0 / 120
	DefaultTimeRatio   = 1.0
	DefaultRestitution = 0.6
)

// Config holds the engine coefficients.
type Config struct {
	// TickLength is the fixed step in seconds.
	TickLength float64 `mapstructure:"tick_length"`
	// TimeRatio scales wall-clock time into simulated time.
	TimeRatio float64 `mapstructure:"time_ratio"`
	// Restitution is the coefficient of restitution for every contact.
	Restitution float64 `mapstructure:"restitution"`
}

func DefaultConfig() Config {
	return Config{
		TickLength:  DefaultTickLength,
		TimeRatio:   DefaultTimeRatio,
		Restitution: DefaultRestitution,
	}
}

func (c Config) Validate() error {
	if !(c.TickLength > 0) || math.IsInf(c.TickLength, 0) {
		return fmt.Errorf("%w: tick length %v", ErrInvalidConfig, c.TickLength)
	}
	if !(c.TimeRatio > 0) || math.IsInf(c.TimeRatio, 0) {
		return fmt.Errorf("%w: time ratio %v", ErrInvalidConfig, c.TimeRatio)
	}
	if !(c.Restitution >= 0) || math.IsInf(c.Restitution, 0) {
		return fmt.Errorf("%w: restitution %v", ErrInvalidConfig, c.Restitution)
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger log.Log) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithBus publishes a collision event for every resolved contact.
func WithBus(b bus.EventBus) Option {
	return func(e *Engine) { e.bus = b }
}

// WithClock replaces time.Now for execution metrics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
