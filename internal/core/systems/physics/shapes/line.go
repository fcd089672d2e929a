package shapes

import "github.com/zeusync/physim/internal/core/systems/physics"

// Line is a segment from Start to End.
type Line struct {
	start physics.Vec2
	end   physics.Vec2
}

func NewLine(start, end physics.Vec2) Line {
	return Line{start: start, end: end}
}

func (l Line) Kind() Kind { return KindLine }

func (l Line) Start() physics.Vec2 { return l.start }

func (l Line) End() physics.Vec2 { return l.end }

func (l Line) Position() physics.Vec2 { return l.start.Add(l.end).Div(2) }

func (l Line) Length() float64 { return l.start.Distance(l.end) }

func (l Line) RelativeTo(offset physics.Vec2) Shape {
	return Line{start: offset.Add(l.start), end: offset.Add(l.end)}
}

func (l Line) Extent(direction physics.Vec2) float64 {
	center := l.Position()
	return max(l.start.Sub(center).Dot(direction), l.end.Sub(center).Dot(direction))
}

// ClosestPointToPoint returns the point on the segment nearest to p.
func (l Line) ClosestPointToPoint(p physics.Vec2) physics.Vec2 {
	aToB := l.end.Sub(l.start)
	length := aToB.Magnitude()
	if length == 0 {
		return l.start
	}
	direction := aToB.Div(length)
	along := p.Sub(l.start).Dot(direction)
	switch {
	case along <= 0:
		return l.start
	case along >= length:
		return l.end
	default:
		return l.start.Add(direction.Mul(along))
	}
}

func (l Line) DistanceToPoint(p physics.Vec2) float64 {
	return l.ClosestPointToPoint(p).Distance(p)
}

// Side is positive when p is left of the directed segment, negative when it
// is right of it and zero when p lies on the supporting line.
func (l Line) Side(p physics.Vec2) float64 {
	return l.end.Sub(l.start).Cross(p.Sub(l.start))
}

// OnLeft reports whether p is on the left of, or on, the directed segment.
func (l Line) OnLeft(p physics.Vec2) bool { return l.Side(p) >= 0 }

func (l Line) Intersects(other Shape) bool { return other.intersectsLine(l) }

func (l Line) intersectsCircle(c Circle) bool { return lineIntersectsCircle(l, c) }

func (l Line) intersectsLine(o Line) bool { return linesIntersect(l, o) }

func (l Line) intersectsPolygon(p Polygon) bool { return lineIntersectsPolygon(l, p) }
