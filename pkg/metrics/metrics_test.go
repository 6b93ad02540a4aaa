package metrics

import (
	"math"
	"testing"

	"github.com/matzehuels/ontolayout/pkg/geo"
	"github.com/matzehuels/ontolayout/pkg/graph"
)

type place struct {
	id         string
	x, y, w, h float64
}

func snapshot(t *testing.T, nodes []place, edges [][2]string) graph.Snapshot {
	t.Helper()
	mg := graph.NewMainGraph()
	for _, p := range nodes {
		if err := mg.AddNode(&graph.Node{ID: p.id, Geometry: geo.Rect{X: p.x, Y: p.y, Width: p.w, Height: p.h}}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := mg.AddEdge(graph.EdgeSpec{ID: e[0] + "-" + e[1], Start: e[0], End: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return mg.Snapshot()
}

func approx(a, b Value) bool {
	return math.Abs(a.Absolute-b.Absolute) < 1e-9 && math.Abs(a.Relative-b.Relative) < 1e-9
}

// The two diagonals of a square of nodes cross once.
var square = []place{
	{"a", 0, 0, 10, 10},
	{"b", 100, 0, 10, 10},
	{"c", 100, 100, 10, 10},
	{"d", 0, 100, 10, 10},
}

func TestEdgeCrossings(t *testing.T) {
	tests := []struct {
		name  string
		nodes []place
		edges [][2]string
		want  Value
	}{
		{"no edges", square, nil, Value{0, 1}},
		{"diagonals", square, [][2]string{{"a", "c"}, {"b", "d"}}, Value{1, 0}},
		{"shared endpoint", square, [][2]string{{"a", "c"}, {"a", "b"}}, Value{0, 1}},
		{"mutual reverse", square, [][2]string{{"a", "c"}, {"c", "a"}}, Value{0, 1}},
		{"cycle", square, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}}, Value{0, 1}},
		{"cycle and diagonals", square, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}, {"a", "c"}, {"b", "d"}}, Value{1, 2.0 / 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot(t, tt.nodes, tt.edges)
			if got := EdgeCrossings(&s); !approx(got, tt.want) {
				t.Errorf("EdgeCrossings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEdgeNodeCollisions(t *testing.T) {
	nodes := []place{
		{"a", 0, 0, 10, 10},
		{"b", 100, 0, 10, 10},
		{"mid", 50, 0, 10, 10},
		{"off", 50, 50, 10, 10},
	}
	s := snapshot(t, nodes, [][2]string{{"a", "b"}})
	got := EdgeNodeCollisions(&s)
	if got.Absolute != 1 || got.Relative != 0.5 {
		t.Errorf("EdgeNodeCollisions = %+v, want {1 0.5}", got)
	}

	empty := snapshot(t, nodes, nil)
	if got := EdgeNodeCollisions(&empty); got != (Value{0, 1}) {
		t.Errorf("no edges = %+v", got)
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name  string
		nodes []place
		want  float64
	}{
		{"empty", nil, 1},
		{"packed grid", []place{{"a", 0, 0, 10, 10}, {"b", 10, 0, 10, 10}, {"c", 0, 10, 10, 10}, {"d", 10, 10, 10, 10}}, 1},
		{"spread out", []place{{"a", 0, 0, 10, 10}, {"b", 90, 0, 10, 10}}, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot(t, tt.nodes, nil)
			if got := Area(&s); math.Abs(got.Relative-tt.want) > 1e-9 {
				t.Errorf("Area = %+v, want relative %v", got, tt.want)
			}
		})
	}
}

func TestOrthogonality(t *testing.T) {
	nodes := []place{
		{"a", 0, 0, 10, 10},
		{"b", 3, 200, 10, 10},
		{"c", 77, 333, 20, 20},
		{"d", 500, 600, 8, 8},
	}
	s := snapshot(t, nodes, nil)
	got := Orthogonality(&s)
	if got.Absolute != 2 || got.Relative != 0.5 {
		t.Errorf("Orthogonality = %+v, want {2 0.5}", got)
	}
}

func TestEvaluate(t *testing.T) {
	s := snapshot(t, square, [][2]string{{"a", "b"}})
	r := Evaluate(&s)
	if r.Crossings != (Value{0, 1}) {
		t.Errorf("crossings = %+v", r.Crossings)
	}
	if r.Mean() <= 0 || r.Mean() > 1 {
		t.Errorf("Mean = %v", r.Mean())
	}
}
