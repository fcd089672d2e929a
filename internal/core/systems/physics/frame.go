package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a rigid 2D coordinate frame anchored on a plane: the plane's
// position maps to the origin and its normal maps to +Y.
type Frame struct {
	toLocal mgl64.Mat3
	toWorld mgl64.Mat3
}

// NewPlaneFrame builds the frame for a plane through origin with the given
// normal. The normal need not be unit length but must be non-zero.
func NewPlaneFrame(origin, normal Vec2) Frame {
	angle := math.Pi/2 - math.Atan2(normal.Y, normal.X)
	toLocal := mgl64.HomogRotate2D(angle).Mul3(mgl64.Translate2D(-origin.X, -origin.Y))
	return Frame{
		toLocal: toLocal,
		toWorld: toLocal.Inv(),
	}
}

// ToLocal maps a world-space point into the frame.
func (f Frame) ToLocal(p Vec2) Vec2 { return apply(f.toLocal, p) }

// ToWorld maps a frame-space point back into world space.
func (f Frame) ToWorld(p Vec2) Vec2 { return apply(f.toWorld, p) }

func apply(m mgl64.Mat3, p Vec2) Vec2 {
	r := m.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return Vec2{X: r.X(), Y: r.Y()}
}
