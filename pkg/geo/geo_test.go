package geo

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestUnion(t *testing.T) {
	tests := []struct {
		name  string
		rects []Rect
		want  Rect
	}{
		{"empty", nil, Rect{}},
		{"single", []Rect{{1, 2, 3, 4}}, Rect{1, 2, 3, 4}},
		{"disjoint", []Rect{{0, 0, 10, 10}, {20, 30, 5, 5}}, Rect{0, 0, 25, 35}},
		{"negative", []Rect{{-5, -5, 1, 1}, {0, 0, 1, 1}}, Rect{-5, -5, 6, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Union(tt.rects...); got != tt.want {
				t.Errorf("Union = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSegmentIntersects(t *testing.T) {
	v := func(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }
	tests := []struct {
		name string
		s, o Segment
		want bool
	}{
		{"cross", Segment{v(0, 0), v(10, 10)}, Segment{v(0, 10), v(10, 0)}, true},
		{"parallel", Segment{v(0, 0), v(10, 0)}, Segment{v(0, 1), v(10, 1)}, false},
		{"touching end", Segment{v(0, 0), v(5, 5)}, Segment{v(5, 5), v(10, 0)}, true},
		{"collinear overlap", Segment{v(0, 0), v(5, 0)}, Segment{v(3, 0), v(8, 0)}, true},
		{"collinear apart", Segment{v(0, 0), v(2, 0)}, Segment{v(3, 0), v(8, 0)}, false},
		{"near miss", Segment{v(0, 0), v(4, 4)}, Segment{v(5, 0), v(5, 10)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Intersects(tt.o); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.o.Intersects(tt.s); got != tt.want {
				t.Errorf("Intersects (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 10, Height: 10}
	v := func(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }
	tests := []struct {
		name string
		s    Segment
		want bool
	}{
		{"through", Segment{v(0, 15), v(30, 15)}, true},
		{"inside", Segment{v(12, 12), v(18, 18)}, true},
		{"above", Segment{v(0, 5), v(30, 5)}, false},
		{"diagonal miss", Segment{v(0, 30), v(5, 25)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IntersectsRect(r); got != tt.want {
				t.Errorf("IntersectsRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipToBorder(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 4}
	tests := []struct {
		name string
		p    r2.Vec
		want r2.Vec
	}{
		{"right", r2.Vec{X: 100, Y: 2}, r2.Vec{X: 10, Y: 2}},
		{"below", r2.Vec{X: 5, Y: 50}, r2.Vec{X: 5, Y: 4}},
		{"inside", r2.Vec{X: 6, Y: 3}, r2.Vec{X: 5, Y: 2}},
		{"corner direction", r2.Vec{X: 15, Y: 7}, r2.Vec{X: 9, Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipToBorder(r, tt.p)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("ClipToBorder = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 30, Y: 0, Width: 10, Height: 10}
	s := Connect(a, b)
	if s.A != (r2.Vec{X: 10, Y: 5}) || s.B != (r2.Vec{X: 30, Y: 5}) {
		t.Errorf("Connect = %+v", s)
	}
	if s.Length() != 20 {
		t.Errorf("Length = %v, want 20", s.Length())
	}
}
