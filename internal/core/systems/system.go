package systems

import (
	"context"
	"time"
)

// Source is a simulation stage advanced from wall-clock time. After every
// Update the loop takes a Snapshot and hands it to the sinks.
type Source[F any] interface {
	Name() string
	// Update advances the source to the given timestamp in milliseconds.
	Update(timestampMillis float64) error
	Snapshot() F
	Metrics() Metrics
}

// Sink consumes frames produced by a Source. Consume runs on the loop
// goroutine and must not block for long.
type Sink[F any] interface {
	Name() string
	Consume(ctx context.Context, frame F) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc[F any] struct {
	SinkName string
	Fn       func(ctx context.Context, frame F) error
}

func (s SinkFunc[F]) Name() string { return s.SinkName }

func (s SinkFunc[F]) Consume(ctx context.Context, frame F) error { return s.Fn(ctx, frame) }

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64

	// Ticks is the number of fixed steps run.
	Ticks uint64
	// Collisions is the number of contacts resolved.
	Collisions uint64
}

// Record accounts for one execution that took d and processed entities.
func (m *Metrics) Record(at time.Time, d time.Duration, entities int, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.MaxExecutionTime = max(m.MaxExecutionTime, d)
	if m.ExecutionCount == 1 || d < m.MinExecutionTime {
		m.MinExecutionTime = d
	}
	m.EntitiesProcessed += uint64(entities)
	m.LastExecutionTime = at
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
