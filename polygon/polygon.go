// The polygon package provides bounded convex polygons in the (time, value)
// plane. A slice of a tube together with its derivative bounds spans such a
// polygon; projecting it back onto the value axis gives the tightest
// envelope consistent with both gates.
package polygon

import (
	"fmt"
	"math"

	"github.com/teichholz/go-tubes/interval"
	"gonum.org/v1/gonum/floats"
)

type Point struct {
	X, Y float64
}

// A Polygon is a convex region given by its vertices in boundary order.
// Degenerate polygons (segments, single points) are valid; a polygon
// without vertices is empty.
type Polygon struct {
	vertices []Point
}

// Return the convex polygon with the given vertices, listed in boundary
// order. Panics on infinite or NaN coordinates.
func New(points ...Point) Polygon {
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			panic(fmt.Sprintf("Invariance: polygon vertex (%v, %v) is not finite", p.X, p.Y))
		}
	}
	return Polygon{vertices: append([]Point(nil), points...)}
}

// Return the rectangle x × y. Panics if one side is unbounded.
func Box(x, y interval.Interval) Polygon {
	if x.IsEmpty() || y.IsEmpty() {
		return Polygon{}
	}
	return New(
		Point{x.Lb(), y.Lb()},
		Point{x.Ub(), y.Lb()},
		Point{x.Ub(), y.Ub()},
		Point{x.Lb(), y.Ub()},
	)
}

func (p Polygon) Vertices() []Point {
	return append([]Point(nil), p.vertices...)
}

func (p Polygon) IsEmpty() bool {
	return len(p.vertices) == 0
}

// Return the part of p where a·x + b·y <= c.
func (p Polygon) ClipHalfPlane(a, b, c float64) Polygon {
	n := len(p.vertices)
	if n == 0 {
		return p
	}
	side := func(q Point) float64 { return a*q.X + b*q.Y - c }

	var out []Point
	for i, cur := range p.vertices {
		prev := p.vertices[(i+n-1)%n]
		sp, sc := side(prev), side(cur)
		switch {
		case sc <= 0 && sp <= 0:
			out = append(out, cur)
		case sc <= 0:
			out = append(out, cut(prev, cur, sp, sc), cur)
		case sp <= 0:
			out = append(out, cut(prev, cur, sp, sc))
		}
	}
	return Polygon{vertices: out}
}

// Return the part of p inside x × y. Infinite sides do not clip.
func (p Polygon) ClipBox(x, y interval.Interval) Polygon {
	if x.IsEmpty() || y.IsEmpty() {
		return Polygon{}
	}
	if finite(x.Lb()) {
		p = p.ClipHalfPlane(-1, 0, -x.Lb())
	}
	if finite(x.Ub()) {
		p = p.ClipHalfPlane(1, 0, x.Ub())
	}
	if finite(y.Lb()) {
		p = p.ClipHalfPlane(0, -1, -y.Lb())
	}
	if finite(y.Ub()) {
		p = p.ClipHalfPlane(0, 1, y.Ub())
	}
	return p
}

// Return the projections of p onto both axes.
func (p Polygon) Bounds() (x, y interval.Interval) {
	if p.IsEmpty() {
		return interval.Empty(), interval.Empty()
	}
	xs := make([]float64, len(p.vertices))
	ys := make([]float64, len(p.vertices))
	for i, v := range p.vertices {
		xs[i], ys[i] = v.X, v.Y
	}
	return interval.New(floats.Min(xs), floats.Max(xs)), interval.New(floats.Min(ys), floats.Max(ys))
}

// The crossing point of segment [p, q] with the clipping line, where sp and
// sc have opposite signs.
func cut(p, q Point, sp, sc float64) Point {
	t := sp / (sp - sc)
	return Point{p.X + t*(q.X-p.X), p.Y + t*(q.Y-p.Y)}
}

func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
