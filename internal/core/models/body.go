package models

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// BodyID uniquely identifies a body for the lifetime of a run.
type BodyID = uuid.UUID

// Body is a simulated point mass carrying collision components and the
// global effects acting on it. The engine mutates Position, PreviousPosition
// and Velocity in place every tick.
type Body struct {
	ID   BodyID
	Name string

	Position         physics.Vec2
	PreviousPosition physics.Vec2 // position at the previous tick
	Velocity         physics.Vec2
	Mass             float64 // kg

	// Collidable bodies take part in collision checks. Simulated bodies are
	// integrated; static scenery such as the ground is not.
	Collidable bool
	Simulated  bool

	CollisionComponents []CollisionComponent
	GlobalEffects       []GlobalEffect
}

// BodyConfig holds the construction parameters of a Body.
type BodyConfig struct {
	Name       string
	Position   physics.Vec2
	Velocity   physics.Vec2
	Mass       float64
	Collidable bool
	Simulated  bool

	Components []CollisionComponent
	Effects    []GlobalEffect
}

// NewBody creates a body at rest at its previous position.
func NewBody(cfg BodyConfig) *Body {
	return &Body{
		ID:                  uuid.New(),
		Name:                cfg.Name,
		Position:            cfg.Position,
		PreviousPosition:    cfg.Position,
		Velocity:            cfg.Velocity,
		Mass:                cfg.Mass,
		Collidable:          cfg.Collidable,
		Simulated:           cfg.Simulated,
		CollisionComponents: append([]CollisionComponent(nil), cfg.Components...),
		GlobalEffects:       append([]GlobalEffect(nil), cfg.Effects...),
	}
}

func (b *Body) AddComponent(c CollisionComponent) {
	b.CollisionComponents = append(b.CollisionComponents, c)
}

func (b *Body) AddEffect(e GlobalEffect) {
	b.GlobalEffects = append(b.GlobalEffects, e)
}

// Radius is the radius of the first circular collision shape, or zero when
// the body has none.
func (b *Body) Radius() float64 {
	for _, c := range b.CollisionComponents {
		if s, ok := c.(CollisionShape); ok {
			if circle, ok := s.Shape.(shapes.Circle); ok {
				return circle.Radius()
			}
		}
	}
	return 0
}

// String returns the body name, falling back to its ID.
func (b *Body) String() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID.String()
}

// Validate checks the invariants the engine relies on.
func (b *Body) Validate() error {
	// static shapes still enter the reduced mass of a contact; use +Inf
	// for immovable ones
	if (b.Simulated || b.hasShape()) && !(b.Mass > 0) {
		return fmt.Errorf("body %s: %w: %v", b, ErrInvalidMass, b.Mass)
	}
	if b.Simulated && math.IsInf(b.Mass, 1) {
		return fmt.Errorf("body %s: %w: simulated bodies need a finite mass", b, ErrInvalidMass)
	}
	if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
		return fmt.Errorf("body %s: %w", b, ErrNonFiniteState)
	}
	for i, c := range b.CollisionComponents {
		if err := validateComponent(c); err != nil {
			return fmt.Errorf("body %s: component %d: %w", b, i, err)
		}
	}
	for i, e := range b.GlobalEffects {
		if e == nil {
			return fmt.Errorf("body %s: effect %d: %w", b, i, ErrNilEffect)
		}
	}
	return nil
}

func (b *Body) hasShape() bool {
	for _, c := range b.CollisionComponents {
		if _, ok := c.(CollisionShape); ok {
			return true
		}
	}
	return false
}
