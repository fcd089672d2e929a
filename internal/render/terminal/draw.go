package terminal

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// viewport maps world coordinates (Y up) to screen cells (Y down).
type viewport struct {
	cols, rows int
	scale      float64 // columns per meter
	left, top  float64
}

func (v *Viewer) viewport() viewport {
	cols, rows := v.screen.Size()
	scale := float64(cols) / v.cfg.Width
	height := float64(rows) * cellAspect / scale
	return viewport{
		cols:  cols,
		rows:  rows,
		scale: scale,
		left:  v.cfg.Center.X - v.cfg.Width/2,
		top:   v.cfg.Center.Y + height/2,
	}
}

// bounds is the visible world rectangle.
func (vp viewport) bounds() shapes.Rectangle {
	return shapes.NewRectangle(
		physics.V(vp.left, vp.top),
		physics.V(float64(vp.cols)/vp.scale, float64(vp.rows)*cellAspect/vp.scale),
	)
}

func (vp viewport) cell(p physics.Vec2) (x, y int) {
	return int(math.Floor((p.X - vp.left) * vp.scale)),
		int(math.Floor((vp.top - p.Y) * vp.scale / cellAspect))
}

// world is the center of a cell in world space.
func (vp viewport) world(x, y int) physics.Vec2 {
	return physics.V(
		vp.left+(float64(x)+0.5)/vp.scale,
		vp.top-(float64(y)+0.5)*cellAspect/vp.scale,
	)
}

func (vp viewport) contains(x, y int) bool {
	return x >= 0 && x < vp.cols && y >= 0 && y < vp.rows
}

type canvas struct {
	screen tcell.Screen
	vp     viewport
}

func (c canvas) set(x, y int, r rune, style tcell.Style) {
	if c.vp.contains(x, y) {
		c.screen.SetContent(x, y, r, nil, style)
	}
}

func (c canvas) point(p physics.Vec2, r rune, style tcell.Style) {
	x, y := c.vp.cell(p)
	c.set(x, y, r, style)
}

// draw renders frame and returns how many shapes were inside the viewport.
func (v *Viewer) draw(frame engine.Frame) int {
	v.screen.Clear()
	c := canvas{screen: v.screen, vp: v.viewport()}
	bounds := c.vp.bounds()

	visible := 0
	for _, b := range frame.Bodies {
		style := styleStatic
		if b.Simulated {
			style = styleDynamic
		}
		for _, p := range b.Planes {
			c.plane(p)
		}
		for _, s := range b.Shapes {
			shape, ok := s.Shape()
			if !ok || !shapes.Intersects(bounds, shape) {
				continue
			}
			visible++
			c.shape(shape, style)
		}
	}

	c.hud(fmt.Sprintf(" tick %d  t=%.2fs  bodies %d  visible %d  [q] quit ",
		frame.Tick, frame.Time, len(frame.Bodies), visible))
	return visible
}

func (c canvas) shape(shape shapes.Shape, style tcell.Style) {
	switch s := shape.(type) {
	case shapes.Circle:
		c.circle(s.Position(), s.Radius(), style)
	case shapes.Line:
		c.segment(s.Start(), s.End(), runeLine, style)
	case shapes.Polygon:
		points := s.Points()
		for i, p := range points {
			c.segment(p, points[(i+1)%len(points)], runeEdge, style)
		}
		for _, p := range points {
			c.point(p, runeVertex, style)
		}
	}
}

// circle fills every cell whose center lies inside it, or the center cell
// when the circle is smaller than a cell.
func (c canvas) circle(center physics.Vec2, radius float64, style tcell.Style) {
	x0, y0 := c.vp.cell(center.Add(physics.V(-radius, radius)))
	x1, y1 := c.vp.cell(center.Add(physics.V(radius, -radius)))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.vp.cols-1), min(y1, c.vp.rows-1)

	filled := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if c.vp.world(x, y).Distance(center) <= radius {
				c.set(x, y, runeCircle, style)
				filled = true
			}
		}
	}
	if !filled {
		c.point(center, runeCircle, style)
	}
}

func (c canvas) segment(a, b physics.Vec2, r rune, style tcell.Style) {
	d := b.Sub(a)
	cells := max(math.Abs(d.X)*c.vp.scale, math.Abs(d.Y)*c.vp.scale/cellAspect)
	limit := float64(4 * (c.vp.cols + c.vp.rows))
	steps := int(math.Ceil(min(max(cells, 1), limit)))
	for i := 0; i <= steps; i++ {
		c.point(a.Add(d.Mul(float64(i)/float64(steps))), r, style)
	}
}

// plane draws the plane's line across the viewport.
func (c canvas) plane(p engine.PlaneState) {
	tangent := p.Normal.Normal()
	if tangent.IsZero() {
		return
	}
	center := c.vp.world(c.vp.cols/2, c.vp.rows/2)
	foot := p.Position.Add(tangent.Mul(center.Sub(p.Position).Dot(tangent)))
	reach := float64(c.vp.cols+c.vp.rows) * cellAspect / c.vp.scale
	c.segment(foot.Sub(tangent.Mul(reach)), foot.Add(tangent.Mul(reach)), planeRune(tangent), stylePlane)
}

// planeRune picks a line glyph for a world-space direction.
func planeRune(tangent physics.Vec2) rune {
	sx, sy := math.Abs(tangent.X), math.Abs(tangent.Y)/cellAspect
	switch {
	case sy < 0.4*sx:
		return '─'
	case sx < 0.4*sy:
		return '│'
	case tangent.X*tangent.Y > 0:
		return '/'
	default:
		return '\\'
	}
}

func (c canvas) hud(text string) {
	x := 0
	for _, r := range text {
		c.set(x, 0, r, styleHUD)
		x++
	}
}
