package shapes

import (
	"math"
	"slices"

	"github.com/zeusync/physim/internal/core/systems/physics"
)

// Polygon is a closed polygon over an ordered vertex list. The intersection
// tests assume it is convex; see IsConvex.
type Polygon struct {
	points []physics.Vec2
}

func NewPolygon(points ...physics.Vec2) Polygon {
	return Polygon{points: slices.Clone(points)}
}

func (p Polygon) Kind() Kind { return KindPolygon }

// Points returns a copy of the vertices.
func (p Polygon) Points() []physics.Vec2 { return slices.Clone(p.points) }

// Lines returns the edges, closing the last vertex back to the first.
func (p Polygon) Lines() []Line {
	lines := make([]Line, len(p.points))
	for i, point := range p.points {
		lines[i] = NewLine(point, p.points[(i+1)%len(p.points)])
	}
	return lines
}

func (p Polygon) Position() physics.Vec2 {
	sum := physics.Zero
	for _, point := range p.points {
		sum = sum.Add(point)
	}
	return sum.Div(float64(len(p.points)))
}

func (p Polygon) RelativeTo(offset physics.Vec2) Shape { return p.translate(offset) }

func (p Polygon) translate(offset physics.Vec2) Polygon {
	points := make([]physics.Vec2, len(p.points))
	for i, point := range p.points {
		points[i] = offset.Add(point)
	}
	return Polygon{points: points}
}

func (p Polygon) Extent(direction physics.Vec2) float64 {
	center := p.Position()
	extent := math.Inf(-1)
	for _, point := range p.points {
		extent = max(extent, point.Sub(center).Dot(direction))
	}
	return extent
}

// ContainsPoint reports whether point is on the same side of every edge.
// Points on an edge count as inside. The answer is only meaningful for
// convex polygons.
func (p Polygon) ContainsPoint(point physics.Vec2) bool {
	if len(p.points) < 3 {
		return false
	}
	var left, right bool
	for _, edge := range p.Lines() {
		side := edge.Side(point)
		left = left || side > 0
		right = right || side < 0
		if left && right {
			return false
		}
	}
	return true
}

// IsConvex reports whether the polygon is convex with a consistent winding.
// Collinear vertices are allowed; fewer than three vertices or zero area is not.
func (p Polygon) IsConvex() bool {
	n := len(p.points)
	if n < 3 {
		return false
	}
	var left, right bool
	for i := range p.points {
		a, b, c := p.points[i], p.points[(i+1)%n], p.points[(i+2)%n]
		turn := b.Sub(a).Cross(c.Sub(b))
		left = left || turn > 0
		right = right || turn < 0
	}
	return left != right
}

func (p Polygon) asPolygon() Polygon { return p }

func (p Polygon) Intersects(other Shape) bool { return other.intersectsPolygon(p) }

func (p Polygon) intersectsCircle(c Circle) bool { return polygonIntersectsCircle(p, c) }

func (p Polygon) intersectsLine(l Line) bool { return lineIntersectsPolygon(l, p) }

func (p Polygon) intersectsPolygon(o Polygon) bool { return polygonsIntersect(p, o) }

// Rectangle is an axis-aligned polygon hanging down and right of its top-left
// corner (Y grows upwards).
type Rectangle struct {
	Polygon
	topLeft    physics.Vec2
	dimensions physics.Vec2
}

func NewRectangle(topLeft, dimensions physics.Vec2) Rectangle {
	return Rectangle{
		Polygon: NewPolygon(
			topLeft,
			physics.V(topLeft.X+dimensions.X, topLeft.Y),
			physics.V(topLeft.X+dimensions.X, topLeft.Y-dimensions.Y),
			physics.V(topLeft.X, topLeft.Y-dimensions.Y),
		),
		topLeft:    topLeft,
		dimensions: dimensions,
	}
}

func (r Rectangle) TopLeft() physics.Vec2 { return r.topLeft }

func (r Rectangle) Width() float64 { return r.dimensions.X }

func (r Rectangle) Height() float64 { return r.dimensions.Y }

func (r Rectangle) RelativeTo(offset physics.Vec2) Shape {
	return NewRectangle(offset.Add(r.topLeft), r.dimensions)
}

type Square struct {
	Rectangle
}

func NewSquare(topLeft physics.Vec2, size float64) Square {
	return Square{Rectangle: NewRectangle(topLeft, physics.V(size, size))}
}

func (s Square) Size() float64 { return s.Width() }

func (s Square) RelativeTo(offset physics.Vec2) Shape {
	return NewSquare(offset.Add(s.TopLeft()), s.Width())
}

type polygonal interface {
	asPolygon() Polygon
}
