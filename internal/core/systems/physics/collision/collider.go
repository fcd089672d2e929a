// Package collision turns overlapping collision components of two bodies into
// a contact force and a corrected position for the first body.
package collision

import (
	"fmt"

	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// Collision is the resolved contact for the first body of a pair.
type Collision struct {
	// Force is the impulse spread over one tick that reflects the body's
	// approach speed along the contact normal, scaled by restitution.
	Force physics.Vec2
	// Position is where the body is moved to before integrating.
	Position physics.Vec2
	// Normal points from the other body (or plane) towards this body.
	Normal physics.Vec2
	// Speed is the approach speed along Normal, always positive.
	Speed float64

	Other *models.Body
	Plane bool
}

// Collider is stateless apart from its coefficients and safe to share.
type Collider struct {
	restitution float64
	tickLength  float64
}

// NewCollider creates a collider for the given coefficient of restitution and
// tick length in seconds.
func NewCollider(restitution, tickLength float64) *Collider {
	return &Collider{restitution: restitution, tickLength: tickLength}
}

func (c *Collider) Restitution() float64 { return c.restitution }

func (c *Collider) TickLength() float64 { return c.tickLength }

// Collide checks every component of a against every component of b, in
// order, and returns the first contact. A body never collides with itself
// and bodies that are not collidable never collide.
func (c *Collider) Collide(a, b *models.Body) (Collision, bool, error) {
	if a == b || !a.Collidable || !b.Collidable {
		return Collision{}, false, nil
	}
	for i, ca := range a.CollisionComponents {
		for j, cb := range b.CollisionComponents {
			hit, ok, err := c.collideComponents(a, ca, b, cb)
			if err != nil {
				return Collision{}, false, fmt.Errorf("collide %s[%d] with %s[%d]: %w", a, i, b, j, err)
			}
			if ok {
				hit.Other = b
				return hit, true, nil
			}
		}
	}
	return Collision{}, false, nil
}

func (c *Collider) collideComponents(a *models.Body, ca models.CollisionComponent, b *models.Body, cb models.CollisionComponent) (Collision, bool, error) {
	switch ca := ca.(type) {
	case models.CollisionShape:
		switch cb := cb.(type) {
		case models.CollisionShape:
			return c.collideShapes(a, ca, b, cb)
		case models.CollisionPlane:
			hit, ok := c.collideShapeWithPlane(a, ca, cb)
			return hit, ok, nil
		default:
			return Collision{}, false, fmt.Errorf("%w: %T", models.ErrUnknownComponent, cb)
		}
	case models.CollisionPlane:
		// planes are static scenery; things collide with them, not the reverse
		return Collision{}, false, nil
	default:
		return Collision{}, false, fmt.Errorf("%w: %T", models.ErrUnknownComponent, ca)
	}
}

func (c *Collider) collideShapes(a *models.Body, sa models.CollisionShape, b *models.Body, sb models.CollisionShape) (Collision, bool, error) {
	shapeA := sa.Shape.RelativeTo(a.Position)
	shapeB := sb.Shape.RelativeTo(b.Position)
	if !shapes.Intersects(shapeA, shapeB) {
		return Collision{}, false, nil
	}

	towardsA := shapeA.Position().Sub(shapeB.Position())
	if towardsA.IsZero() {
		return Collision{}, false, nil
	}
	normal := towardsA.Normalize()

	speed := a.Velocity.Sub(b.Velocity).Dot(normal)
	if speed >= 0 {
		return Collision{}, false, nil
	}

	distance, err := shapes.BackupDistance(shapeA, shapeB)
	if err != nil {
		return Collision{}, false, err
	}

	mass := 1 / (1/a.Mass + 1/b.Mass)
	return Collision{
		Force:    normal.Mul(c.impulse(speed) * mass),
		Position: a.Position.Sub(normal.Mul(distance)),
		Normal:   normal,
		Speed:    -speed,
	}, true, nil
}

func (c *Collider) collideShapeWithPlane(a *models.Body, sa models.CollisionShape, plane models.CollisionPlane) (Collision, bool) {
	shape := sa.Shape.RelativeTo(a.Position)
	if shapes.PlaneBackupDistance(shape, plane.Position, plane.Normal) < 0 {
		return Collision{}, false
	}

	speed := a.Velocity.Dot(plane.Normal)
	if speed >= 0 {
		return Collision{}, false
	}

	frame := physics.NewPlaneFrame(plane.Position, plane.Normal)
	previous := frame.ToLocal(a.PreviousPosition)
	current := frame.ToLocal(a.Position)

	offset := shape.Position().Sub(a.Position).Dot(plane.Normal)
	if previous.Y+offset < 0 {
		// came from behind the plane
		return Collision{}, false
	}

	// height of the body position above the plane when the shape just touches it
	touchY := shape.Extent(plane.Normal.Mul(-1)) - offset

	touchX := current.X
	if dy := current.Y - previous.Y; dy != 0 {
		ratio := min(max((touchY-previous.Y)/dy, 0), 1)
		touchX = previous.X + ratio*(current.X-previous.X)
	}

	return Collision{
		Force:    plane.Normal.Mul(c.impulse(speed) * a.Mass),
		Position: frame.ToWorld(physics.V(touchX, touchY)),
		Normal:   plane.Normal,
		Speed:    -speed,
		Plane:    true,
	}, true
}

// impulse is the acceleration along the normal that turns an approach speed
// into a rebound of restitution times that speed within one tick.
func (c *Collider) impulse(speed float64) float64 {
	return -speed * (1 + c.restitution) / c.tickLength
}
