package shapes

import (
	"fmt"
	"math"

	"github.com/zeusync/physim/internal/core/systems/physics"
)

func circlesIntersect(a, b Circle) bool {
	return a.center.Distance(b.center) <= a.radius+b.radius
}

func lineIntersectsCircle(l Line, c Circle) bool {
	return l.DistanceToPoint(c.center) <= c.radius
}

func lineIntersectsPolygon(l Line, p Polygon) bool {
	if p.ContainsPoint(l.start) {
		return true
	}
	for _, edge := range p.Lines() {
		if linesIntersect(l, edge) {
			return true
		}
	}
	return false
}

// linesIntersect projects both segments onto a frame aligned with a and
// requires their intervals to overlap on both axes.
func linesIntersect(a, b Line) bool {
	aToB := a.end.Sub(a.start)
	if aToB.IsZero() {
		return b.DistanceToPoint(a.start) == 0
	}
	aToC := b.start.Sub(a.start)
	aToD := b.end.Sub(a.start)
	y := aToB.Normalize()
	x := y.Normal()
	return rangesOverlap(0, aToB.Dot(y), aToC.Dot(y), aToD.Dot(y)) &&
		rangesOverlap(0, aToB.Dot(x), aToC.Dot(x), aToD.Dot(x))
}

func polygonIntersectsCircle(p Polygon, c Circle) bool {
	if p.ContainsPoint(c.center) {
		return true
	}
	for _, edge := range p.Lines() {
		if lineIntersectsCircle(edge, c) {
			return true
		}
	}
	return false
}

// polygonsIntersect is the separating axis test over every edge normal of
// both polygons.
func polygonsIntersect(a, b Polygon) bool {
	for _, edge := range append(a.Lines(), b.Lines()...) {
		if lineSeparates(edge, a, b) {
			return false
		}
	}
	return true
}

func lineSeparates(edge Line, a, b Polygon) bool {
	direction := edge.end.Sub(edge.start)
	if direction.IsZero() {
		return false
	}
	axis := direction.Normalize().Normal()
	minA, maxA := project(a, axis)
	minB, maxB := project(b, axis)
	return !rangesOverlap(minA, maxA, minB, maxB)
}

func project(p Polygon, axis physics.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, point := range p.points {
		d := point.Dot(axis)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}

func rangesOverlap(a, b, c, d float64) bool {
	if a > b {
		a, b = b, a
	}
	if c > d {
		c, d = d, c
	}
	return rangeContains(a, b, c) || rangeContains(a, b, d) || rangeContains(c, d, a)
}

func rangeContains(start, end, value float64) bool {
	return value >= start && value <= end
}

// BackupDistance returns the signed gap between two shapes: positive while
// apart, negative by the penetration depth while overlapping. Only pairs
// involving a circle and a circle, line or polygon are supported; the rest
// return ErrNotImplemented.
func BackupDistance(a, b Shape) (float64, error) {
	switch {
	case a.Kind() == KindCircle && b.Kind() == KindCircle:
		ca, cb := a.(Circle), b.(Circle)
		return ca.center.Sub(cb.center).Magnitude() - ca.radius - cb.radius, nil
	case a.Kind() == KindCircle && b.Kind() == KindLine:
		return circleLineGap(a.(Circle), b.(Line)), nil
	case a.Kind() == KindLine && b.Kind() == KindCircle:
		return circleLineGap(b.(Circle), a.(Line)), nil
	case a.Kind() == KindCircle && b.Kind() == KindPolygon:
		return circlePolygonGap(a.(Circle), b.(polygonal).asPolygon()), nil
	case a.Kind() == KindPolygon && b.Kind() == KindCircle:
		return circlePolygonGap(b.(Circle), a.(polygonal).asPolygon()), nil
	default:
		return 0, fmt.Errorf("%w: backup distance %s-%s", ErrNotImplemented, a.Kind(), b.Kind())
	}
}

func circleLineGap(c Circle, l Line) float64 {
	return l.DistanceToPoint(c.center) - c.radius
}

func circlePolygonGap(c Circle, p Polygon) float64 {
	nearest := math.Inf(1)
	for _, edge := range p.Lines() {
		nearest = min(nearest, edge.DistanceToPoint(c.center))
	}
	if p.ContainsPoint(c.center) {
		return -(nearest + c.radius)
	}
	return nearest - c.radius
}

// PlaneBackupDistance returns how far shape reaches past the plane through
// planePosition facing planeNormal (unit length): positive while penetrating,
// negative while clear.
func PlaneBackupDistance(shape Shape, planePosition, planeNormal physics.Vec2) float64 {
	plane := planePosition.Dot(planeNormal)
	center := shape.Position().Dot(planeNormal)
	return plane + shape.Extent(planeNormal.Mul(-1)) - center
}
