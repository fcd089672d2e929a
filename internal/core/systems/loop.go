package systems

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/physim/internal/core/observability/log"
)

// DefaultFrameInterval is roughly one display frame at 60 Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop drives a Source from wall-clock time, one Update per frame interval,
// and fans every resulting frame out to its sinks in order.
type Loop[F any] struct {
	source   Source[F]
	sinks    []Sink[F]
	interval time.Duration
	logger   log.Log
	now      func() time.Time

	frames uint64
}

// NewLoop creates a loop; a non-positive interval falls back to
// DefaultFrameInterval.
func NewLoop[F any](source Source[F], interval time.Duration, logger log.Log, sinks ...Sink[F]) *Loop[F] {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop[F]{
		source:   source,
		sinks:    sinks,
		interval: interval,
		logger:   logger.With(log.Component("loop"), log.String("source", source.Name())),
		now:      time.Now,
	}
}

// Frames is the number of frames delivered so far. Only valid after Run returns.
func (l *Loop[F]) Frames() uint64 { return l.frames }

// Run blocks until ctx is cancelled, returning nil, or until the source or a
// sink fails, returning that error. Timestamps handed to the source are
// milliseconds since Run started.
func (l *Loop[F]) Run(ctx context.Context) error {
	start := l.now()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("loop started", log.Duration("interval", l.interval), log.Int("sinks", len(l.sinks)))

	if err := l.frame(ctx, start, start); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			m := l.source.Metrics()
			l.logger.Info("loop stopped",
				log.Uint64("frames", l.frames),
				log.Uint64("ticks", m.Ticks),
				log.Uint64("collisions", m.Collisions),
			)
			return nil
		case <-ticker.C:
			if err := l.frame(ctx, start, l.now()); err != nil {
				return err
			}
		}
	}
}

func (l *Loop[F]) frame(ctx context.Context, start, now time.Time) error {
	ts := float64(now.Sub(start)) / float64(time.Millisecond)
	if err := l.source.Update(ts); err != nil {
		l.logger.Error("update failed", log.Error(err))
		return fmt.Errorf("%s: %w", l.source.Name(), err)
	}
	frame := l.source.Snapshot()
	for _, sink := range l.sinks {
		if err := sink.Consume(ctx, frame); err != nil {
			l.logger.Error("sink failed", log.String("sink", sink.Name()), log.Error(err))
			return fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	l.frames++
	return nil
}
