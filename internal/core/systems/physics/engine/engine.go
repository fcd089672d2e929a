// Package engine advances bodies in fixed ticks: per tick and per simulated
// body, the first contact found wins, otherwise the body's global effects
// apply, followed by a semi-implicit Euler step.
package engine

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/systems"
	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/collision"
)

var _ systems.Source[Frame] = (*Engine)(nil)

// Engine is single-threaded: Update, Step and Add must be called from one
// goroutine. Bodies are mutated in place.
type Engine struct {
	cfg      Config
	collider *collision.Collider
	bodies   []*models.Body

	started  bool
	previous float64 // timestamp in ms of the last update that ran ticks
	tick     uint64

	logger  log.Log
	bus     bus.EventBus
	now     func() time.Time
	metrics systems.Metrics
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		collider: collision.NewCollider(cfg.Restitution, cfg.TickLength),
		logger:   log.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(log.Component("engine"))
	return e, nil
}

func (e *Engine) Name() string { return "physics" }

func (e *Engine) Config() Config { return e.cfg }

// Tick is the number of fixed steps run so far.
func (e *Engine) Tick() uint64 { return e.tick }

// Add appends bodies in order. Duplicates are not filtered; bodies are
// expected to pass Validate.
func (e *Engine) Add(bodies ...*models.Body) {
	e.bodies = append(e.bodies, bodies...)
}

// Bodies returns the bodies in insertion order. The slice is a copy, the
// bodies are not.
func (e *Engine) Bodies() []*models.Body {
	return slices.Clone(e.bodies)
}

func (e *Engine) Metrics() systems.Metrics { return e.metrics }

// Update advances the simulation to timestampMillis. The first call only
// records the baseline. Afterwards the elapsed time, scaled by the time
// ratio, is run as whole ticks; the remainder is dropped and the timestamp
// is recorded only when at least one tick ran.
func (e *Engine) Update(timestampMillis float64) error {
	if !e.started {
		e.started = true
		e.previous = timestampMillis
		return nil
	}

	elapsed := (timestampMillis - e.previous) * e.cfg.TimeRatio / 1000
	ticks := int(math.Floor(elapsed / e.cfg.TickLength))
	if ticks <= 0 {
		return nil
	}
	e.previous = timestampMillis

	if err := e.run(ticks); err != nil {
		return fmt.Errorf("update at %.3fms: %w", timestampMillis, err)
	}
	return nil
}

// Step runs exactly n ticks regardless of wall-clock time.
func (e *Engine) Step(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSteps, n)
	}
	return e.run(n)
}

func (e *Engine) run(ticks int) error {
	start := e.now()
	collisions := e.metrics.Collisions

	var err error
	for range ticks {
		if err = e.step(); err != nil {
			break
		}
	}

	e.metrics.Record(start, e.now().Sub(start), len(e.bodies), err)
	e.logger.Debug("ticks run",
		log.Int("ticks", ticks),
		log.Uint64("tick", e.tick),
		log.Uint64("collisions", e.metrics.Collisions-collisions),
	)
	return err
}

func (e *Engine) step() error {
	for _, b := range e.bodies {
		if !b.Simulated {
			continue
		}
		if err := e.advance(b); err != nil {
			return fmt.Errorf("tick %d: %w", e.tick, err)
		}
	}
	e.tick++
	e.metrics.Ticks++
	return nil
}

func (e *Engine) advance(b *models.Body) error {
	hit, ok, err := e.contact(b)
	if err != nil {
		return err
	}

	var force physics.Vec2
	if ok {
		b.Position = hit.Position
		force = hit.Force
		e.collided(b, hit)
	} else {
		for _, effect := range b.GlobalEffects {
			force = force.Add(effect.ForceOn(b))
		}
	}

	dt := e.cfg.TickLength
	b.Velocity = b.Velocity.Add(force.Div(b.Mass).Mul(dt))
	b.PreviousPosition = b.Position
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	return nil
}

// contact returns the first collision of b against the other bodies in
// insertion order.
func (e *Engine) contact(b *models.Body) (collision.Collision, bool, error) {
	for _, other := range e.bodies {
		hit, ok, err := e.collider.Collide(b, other)
		if err != nil || ok {
			return hit, ok, err
		}
	}
	return collision.Collision{}, false, nil
}

func (e *Engine) collided(b *models.Body, hit collision.Collision) {
	e.metrics.Collisions++
	e.logger.Debug("collision",
		log.Stringer("body", b),
		log.Stringer("other", hit.Other),
		log.Uint64("tick", e.tick),
		log.Float64("speed", hit.Speed),
		log.Bool("plane", hit.Plane),
	)
	if e.bus == nil {
		return
	}

	event := CollisionEvent{
		Tick:      e.tick,
		Body:      b.ID,
		BodyName:  b.Name,
		Other:     hit.Other.ID,
		OtherName: hit.Other.Name,
		Plane:     hit.Plane,
		Position:  hit.Position,
		Normal:    hit.Normal,
		Force:     hit.Force,
		Speed:     hit.Speed,
	}
	if err := e.bus.Publish(bus.NewEvent(EventCollision, e.Name(), event)); err != nil {
		// subscribers do not get to stop the simulation
		e.logger.Warn("collision handler failed", log.Error(err))
	}
}
