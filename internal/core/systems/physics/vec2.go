package physics

import "math"

// Vec2 is an immutable 2D vector. Every operation returns a new value.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Zero is the zero vector.
var Zero = Vec2{}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Mul(n float64) Vec2 { return Vec2{X: v.X * n, Y: v.Y * n} }

func (v Vec2) Div(n float64) Vec2 { return Vec2{X: v.X / n, Y: v.Y / n} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product of v and o.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Normal returns v rotated a quarter turn counter-clockwise.
func (v Vec2) Normal() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Normalize returns the unit vector in the direction of v.
// The zero vector has no direction and normalizes to NaN components.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	return Vec2{X: v.X / m, Y: v.Y / m}
}

func (v Vec2) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) Distance(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// AngleBetween returns the unsigned angle between v and o in radians, in [0, π].
func (v Vec2) AngleBetween(o Vec2) float64 {
	return math.Atan2(math.Abs(v.Cross(o)), v.Dot(o))
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
