package models

import (
	"math"

	"github.com/zeusync/physim/internal/core/systems/physics"
)

// StandardGravity is one g in m/s².
const StandardGravity = 9.8

// GlobalEffect produces a force on its body from the body's own state.
type GlobalEffect interface {
	ForceOn(b *Body) physics.Vec2
}

// Gravity pulls towards -Y with Gs times standard gravity.
type Gravity struct {
	Gs float64
}

func (g Gravity) ForceOn(b *Body) physics.Vec2 {
	return physics.V(0, -StandardGravity*g.Gs*b.Mass)
}

// Drag is quadratic air resistance opposing the velocity:
// ½ · ρ · |v|² · A · Cd. A zero Area falls back to the cross-section of the
// body's circle.
type Drag struct {
	AirDensity      float64
	DragCoefficient float64
	Area            float64
}

func (d Drag) ForceOn(b *Body) physics.Vec2 {
	speed := b.Velocity.Magnitude()
	if speed == 0 {
		return physics.Zero
	}
	area := d.Area
	if area == 0 {
		r := b.Radius()
		area = math.Pi * r * r
	}
	magnitude := 0.5 * d.AirDensity * speed * speed * area * d.DragCoefficient
	return b.Velocity.Div(speed).Mul(-magnitude)
}
