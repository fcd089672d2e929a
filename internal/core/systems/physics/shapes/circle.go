package shapes

import "github.com/zeusync/physim/internal/core/systems/physics"

type Circle struct {
	center physics.Vec2
	radius float64
}

func NewCircle(center physics.Vec2, radius float64) Circle {
	return Circle{center: center, radius: radius}
}

func (c Circle) Kind() Kind { return KindCircle }

func (c Circle) Position() physics.Vec2 { return c.center }

func (c Circle) Radius() float64 { return c.radius }

func (c Circle) RelativeTo(offset physics.Vec2) Shape {
	return Circle{center: offset.Add(c.center), radius: c.radius}
}

func (c Circle) Extent(physics.Vec2) float64 { return c.radius }

func (c Circle) Intersects(other Shape) bool { return other.intersectsCircle(c) }

func (c Circle) intersectsCircle(o Circle) bool { return circlesIntersect(c, o) }

func (c Circle) intersectsLine(l Line) bool { return lineIntersectsCircle(l, c) }

func (c Circle) intersectsPolygon(p Polygon) bool { return polygonIntersectsCircle(p, c) }
