package models

import (
	"fmt"

	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// CollisionComponent is the closed set of things a body can collide with:
// CollisionShape and CollisionPlane.
type CollisionComponent interface {
	collisionComponent()
}

// CollisionShape is a shape in body-local space; it is moved into world space
// with RelativeTo(body.Position) when checked.
type CollisionShape struct {
	Shape shapes.Shape
}

func NewCollisionShape(s shapes.Shape) CollisionShape { return CollisionShape{Shape: s} }

func (CollisionShape) collisionComponent() {}

// CollisionPlane is an infinite one-sided half-plane in world space. Bodies
// only collide with it from the side its Normal points to.
type CollisionPlane struct {
	Normal   physics.Vec2
	Position physics.Vec2
}

// NewCollisionPlane normalizes normal.
func NewCollisionPlane(normal, position physics.Vec2) CollisionPlane {
	return CollisionPlane{Normal: normal.Normalize(), Position: position}
}

func (CollisionPlane) collisionComponent() {}

func validateComponent(c CollisionComponent) error {
	switch c := c.(type) {
	case CollisionShape:
		if c.Shape == nil {
			return ErrNilShape
		}
	case CollisionPlane:
		if !c.Normal.IsFinite() || c.Normal.IsZero() {
			return fmt.Errorf("%w: %v", ErrInvalidNormal, c.Normal)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownComponent, c)
	}
	return nil
}
