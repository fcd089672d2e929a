// Package shapes holds the immutable 2D collision primitives and the
// stateless intersection tests between them.
package shapes

import "github.com/zeusync/physim/internal/core/systems/physics"

// Kind identifies a shape variant. Rectangles and squares are polygons.
type Kind uint8

const (
	KindCircle Kind = iota + 1
	KindLine
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Shape is the closed set of collision primitives.
//
// Intersection is resolved by double dispatch: Intersects hands the receiver
// to the other shape's typed method, so every variant has to answer for
// every other variant at compile time.
type Shape interface {
	Kind() Kind

	// Position is the shape's center: circle center, segment midpoint or
	// polygon vertex average.
	Position() physics.Vec2

	// RelativeTo returns a copy translated by offset.
	RelativeTo(offset physics.Vec2) Shape

	// Extent is the support distance from Position along a unit direction.
	Extent(direction physics.Vec2) float64

	Intersects(other Shape) bool

	intersectsCircle(c Circle) bool
	intersectsLine(l Line) bool
	intersectsPolygon(p Polygon) bool
}

// Intersects reports whether a and b overlap. Touching counts as overlapping.
func Intersects(a, b Shape) bool {
	return a.Intersects(b)
}

var (
	_ Shape = Circle{}
	_ Shape = Line{}
	_ Shape = Polygon{}
	_ Shape = Rectangle{}
	_ Shape = Square{}
)
