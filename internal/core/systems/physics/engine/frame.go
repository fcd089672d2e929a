package engine

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// Frame is an immutable copy of the world after a tick, safe to hand to
// other goroutines.
type Frame struct {
	Tick   uint64      `json:"tick"`
	Time   float64     `json:"time"` // simulated seconds
	Bodies []BodyState `json:"bodies"`
	// Hash digests the tick and every body's position and velocity.
	Hash uint64 `json:"hash"`
}

type BodyState struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	Simulated bool         `json:"simulated"`
	Position  physics.Vec2 `json:"position"`
	Velocity  physics.Vec2 `json:"velocity"`
	Shapes    []ShapeState `json:"shapes,omitempty"`
	Planes    []PlaneState `json:"planes,omitempty"`
}

// ShapeState is a collision shape in world space.
type ShapeState struct {
	Kind   string         `json:"kind"`
	Center physics.Vec2   `json:"center"`
	Radius float64        `json:"radius,omitempty"`
	Points []physics.Vec2 `json:"points,omitempty"`
}

// Shape rebuilds the world-space shape. It reports false for an unknown
// kind or for points that cannot form the kind.
func (s ShapeState) Shape() (shapes.Shape, bool) {
	switch s.Kind {
	case shapes.KindCircle.String():
		return shapes.NewCircle(s.Center, s.Radius), true
	case shapes.KindLine.String():
		if len(s.Points) == 2 {
			return shapes.NewLine(s.Points[0], s.Points[1]), true
		}
	case shapes.KindPolygon.String():
		if len(s.Points) >= 3 {
			return shapes.NewPolygon(s.Points...), true
		}
	}
	return nil, false
}

type PlaneState struct {
	Position physics.Vec2 `json:"position"`
	Normal   physics.Vec2 `json:"normal"`
}

// Snapshot copies the current state of every body.
func (e *Engine) Snapshot() Frame {
	f := Frame{
		Tick:   e.tick,
		Time:   float64(e.tick) * e.cfg.TickLength,
		Bodies: make([]BodyState, 0, len(e.bodies)),
	}
	for _, b := range e.bodies {
		f.Bodies = append(f.Bodies, bodyState(b))
	}
	f.Hash = f.Digest()
	return f
}

func bodyState(b *models.Body) BodyState {
	s := BodyState{
		ID:        b.ID.String(),
		Name:      b.Name,
		Simulated: b.Simulated,
		Position:  b.Position,
		Velocity:  b.Velocity,
	}
	for _, c := range b.CollisionComponents {
		switch c := c.(type) {
		case models.CollisionShape:
			s.Shapes = append(s.Shapes, shapeState(c.Shape.RelativeTo(b.Position)))
		case models.CollisionPlane:
			s.Planes = append(s.Planes, PlaneState{Position: c.Position, Normal: c.Normal})
		}
	}
	return s
}

func shapeState(shape shapes.Shape) ShapeState {
	s := ShapeState{Kind: shape.Kind().String(), Center: shape.Position()}
	switch shape := shape.(type) {
	case shapes.Circle:
		s.Radius = shape.Radius()
	case shapes.Line:
		s.Points = []physics.Vec2{shape.Start(), shape.End()}
	case interface{ Points() []physics.Vec2 }:
		s.Points = shape.Points()
	}
	return s
}

// Digest hashes the numeric state of the frame. Body IDs are left out, so
// two runs of the same scene produce the same digest.
func (f Frame) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	write(f.Tick)
	for _, b := range f.Bodies {
		write(math.Float64bits(b.Position.X))
		write(math.Float64bits(b.Position.Y))
		write(math.Float64bits(b.Velocity.X))
		write(math.Float64bits(b.Velocity.Y))
	}
	return h.Sum64()
}
