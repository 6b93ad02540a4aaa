// Package geo provides the planar geometry used by graph construction,
// reconciliation and layout metrics.
//
// Coordinates follow diagram conventions: X grows to the right, Y grows
// downward, and a [Rect] is positioned by its top-left corner. Points are
// gonum [r2.Vec] values so callers can use the r2 vector functions directly.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle positioned by its top-left corner.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// FromBox converts an r2.Box into a Rect.
func FromBox(b r2.Box) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// Box returns r as an r2.Box.
func (r Rect) Box() r2.Box {
	return r2.Box{Min: r2.Vec{X: r.X, Y: r.Y}, Max: r2.Vec{X: r.X + r.Width, Y: r.Y + r.Height}}
}

// Center returns the geometric center of r.
func (r Rect) Center() r2.Vec {
	return r2.Vec{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() [4]r2.Vec {
	return [4]r2.Vec{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Sides returns the four border segments of r.
func (r Rect) Sides() [4]Segment {
	c := r.Corners()
	return [4]Segment{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
}

// MoveTo returns r with its top-left corner at (x, y).
func (r Rect) MoveTo(x, y float64) Rect {
	r.X, r.Y = x, y
	return r
}

// Union returns the smallest rectangle containing every rect.
// The union of no rectangles is the zero Rect.
func Union(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	b := rects[0].Box()
	for _, r := range rects[1:] {
		o := r.Box()
		b.Min.X = math.Min(b.Min.X, o.Min.X)
		b.Min.Y = math.Min(b.Min.Y, o.Min.Y)
		b.Max.X = math.Max(b.Max.X, o.Max.X)
		b.Max.Y = math.Max(b.Max.Y, o.Max.Y)
	}
	return FromBox(b)
}

// Segment is a straight line segment between two points.
type Segment struct {
	A, B r2.Vec
}

// Length returns the Euclidean length of s.
func (s Segment) Length() float64 { return r2.Norm(r2.Sub(s.B, s.A)) }

// orientation returns the sign of the turn p→q→r: >0 counter-clockwise,
// <0 clockwise and 0 collinear (in y-down coordinates the senses swap, which
// does not matter for intersection tests).
func orientation(p, q, r r2.Vec) int {
	v := r2.Cross(r2.Sub(q, p), r2.Sub(r, p))
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	default:
		return 0
	}
}

const eps = 1e-9

func onSegment(p, q, r r2.Vec) bool {
	return q.X <= math.Max(p.X, r.X)+eps && q.X >= math.Min(p.X, r.X)-eps &&
		q.Y <= math.Max(p.Y, r.Y)+eps && q.Y >= math.Min(p.Y, r.Y)-eps
}

// Intersects reports whether s and o share at least one point, using the
// standard orientation test with collinear special cases.
func (s Segment) Intersects(o Segment) bool {
	o1 := orientation(s.A, s.B, o.A)
	o2 := orientation(s.A, s.B, o.B)
	o3 := orientation(o.A, o.B, s.A)
	o4 := orientation(o.A, o.B, s.B)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(s.A, o.A, s.B):
		return true
	case o2 == 0 && onSegment(s.A, o.B, s.B):
		return true
	case o3 == 0 && onSegment(o.A, s.A, o.B):
		return true
	case o4 == 0 && onSegment(o.A, s.B, o.B):
		return true
	}
	return false
}

// IntersectsRect reports whether s touches r: it crosses one of the four
// sides, or lies entirely inside r.
func (s Segment) IntersectsRect(r Rect) bool {
	for _, side := range r.Sides() {
		if s.Intersects(side) {
			return true
		}
	}
	return r.Contains(s.A) && r.Contains(s.B)
}

// ClipToBorder returns the point where the ray from r's center toward p
// leaves r. If p is inside r (or equals the center) the center is returned.
func ClipToBorder(r Rect, p r2.Vec) r2.Vec {
	c := r.Center()
	d := r2.Sub(p, c)
	if r.Contains(p) || (d.X == 0 && d.Y == 0) {
		return c
	}
	hw, hh := r.Width/2, r.Height/2
	t := math.Inf(1)
	if d.X != 0 {
		t = math.Min(t, hw/math.Abs(d.X))
	}
	if d.Y != 0 {
		t = math.Min(t, hh/math.Abs(d.Y))
	}
	return r2.Add(c, r2.Scale(t, d))
}

// Connect returns the segment between the borders of a and b along the line
// joining their centers.
func Connect(a, b Rect) Segment {
	return Segment{A: ClipToBorder(a, b.Center()), B: ClipToBorder(b, a.Center())}
}
