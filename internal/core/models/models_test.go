package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

func ball() *Body {
	return NewBody(BodyConfig{
		Name:       "ball",
		Position:   physics.V(0, 20),
		Mass:       10,
		Collidable: true,
		Simulated:  true,
		Components: []CollisionComponent{NewCollisionShape(shapes.NewCircle(physics.Zero, 1))},
		Effects:    []GlobalEffect{Gravity{Gs: 1}},
	})
}

func TestNewBody(t *testing.T) {
	b := ball()

	assert.NotEqual(t, BodyID{}, b.ID)
	assert.Equal(t, b.Position, b.PreviousPosition)
	assert.Equal(t, 1.0, b.Radius())
	assert.Equal(t, "ball", b.String())
	require.NoError(t, b.Validate())

	other := ball()
	assert.NotEqual(t, b.ID, other.ID, "ids are unique")
}

func TestNewBody_CopiesSlices(t *testing.T) {
	components := []CollisionComponent{NewCollisionPlane(physics.V(0, 1), physics.Zero)}
	b := NewBody(BodyConfig{Components: components})
	components[0] = NewCollisionShape(shapes.NewCircle(physics.Zero, 1))

	_, isPlane := b.CollisionComponents[0].(CollisionPlane)
	assert.True(t, isPlane)
}

func TestBody_Radius(t *testing.T) {
	b := NewBody(BodyConfig{})
	assert.Zero(t, b.Radius())

	b.AddComponent(NewCollisionShape(shapes.NewSquare(physics.V(-1, 1), 2)))
	assert.Zero(t, b.Radius(), "polygons have no radius")

	b.AddComponent(NewCollisionShape(shapes.NewCircle(physics.Zero, 3)))
	b.AddComponent(NewCollisionShape(shapes.NewCircle(physics.Zero, 4)))
	assert.Equal(t, 3.0, b.Radius(), "first circle wins")
}

func TestBody_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(b *Body)
		want   error
	}{
		{"zero mass", func(b *Body) { b.Mass = 0 }, ErrInvalidMass},
		{"nan mass", func(b *Body) { b.Mass = math.NaN() }, ErrInvalidMass},
		{"infinite simulated mass", func(b *Body) { b.Mass = math.Inf(1) }, ErrInvalidMass},
		{"static shape without mass", func(b *Body) { b.Simulated = false; b.Mass = 0 }, ErrInvalidMass},
		{"nan position", func(b *Body) { b.Position = physics.V(math.NaN(), 0) }, ErrNonFiniteState},
		{"infinite velocity", func(b *Body) { b.Velocity = physics.V(0, math.Inf(-1)) }, ErrNonFiniteState},
		{"nil shape", func(b *Body) { b.AddComponent(CollisionShape{}) }, ErrNilShape},
		{"zero normal", func(b *Body) { b.AddComponent(CollisionPlane{}) }, ErrInvalidNormal},
		{"nil component", func(b *Body) { b.AddComponent(nil) }, ErrUnknownComponent},
		{"nil effect", func(b *Body) { b.AddEffect(nil) }, ErrNilEffect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ball()
			tc.mutate(b)
			assert.ErrorIs(t, b.Validate(), tc.want)
		})
	}
}

func TestBody_ValidateStatic(t *testing.T) {
	ground := NewBody(BodyConfig{
		Name:       "ground",
		Collidable: true,
		Components: []CollisionComponent{NewCollisionPlane(physics.V(0, 5), physics.Zero)},
	})
	require.NoError(t, ground.Validate(), "planes need no mass")

	peg := NewBody(BodyConfig{
		Collidable: true,
		Mass:       math.Inf(1),
		Components: []CollisionComponent{NewCollisionShape(shapes.NewCircle(physics.Zero, 1))},
	})
	require.NoError(t, peg.Validate(), "immovable shapes use infinite mass")
}

func TestNewCollisionPlane_Normalizes(t *testing.T) {
	p := NewCollisionPlane(physics.V(0, 5), physics.V(1, 2))
	assert.Equal(t, physics.V(0, 1), p.Normal)
	assert.Equal(t, physics.V(1, 2), p.Position)
}

func TestGravity(t *testing.T) {
	b := ball()
	assert.Equal(t, physics.V(0, -98), Gravity{Gs: 1}.ForceOn(b))
	assert.Equal(t, physics.V(0, -196), Gravity{Gs: 2}.ForceOn(b))
}

func TestDrag(t *testing.T) {
	b := ball()
	assert.Equal(t, physics.Zero, Drag{AirDensity: 1.2, DragCoefficient: 0.47}.ForceOn(b), "at rest")

	b.Velocity = physics.V(0, -2)
	f := Drag{AirDensity: 1, DragCoefficient: 1, Area: 0.5}.ForceOn(b)
	assert.InDelta(t, 0, f.X, 1e-12)
	assert.InDelta(t, 1.0, f.Y, 1e-12, "0.5 * 1 * 4 * 0.5 * 1, opposing velocity")

	f = Drag{AirDensity: 1, DragCoefficient: 1}.ForceOn(b)
	assert.InDelta(t, 2*math.Pi, f.Y, 1e-12, "area falls back to the circle cross-section")
}
