package metrics

import (
	"math"

	"github.com/matzehuels/ontolayout/pkg/geo"
	"github.com/matzehuels/ontolayout/pkg/graph"
)

// AlignmentTolerance is the distance in pixels within which two node
// borders or centers count as aligned.
const AlignmentTolerance = 5.0

// Value is the result of one metric.
type Value struct {
	Absolute float64 `json:"absoluteValue"`
	Relative float64 `json:"relativeValue"`
}

// Report holds every metric of one layout.
type Report struct {
	Crossings     Value `json:"edgeCrossings"`
	Collisions    Value `json:"edgeNodeCollisions"`
	Area          Value `json:"area"`
	Orthogonality Value `json:"orthogonality"`
}

// Mean returns the average relative score.
func (r Report) Mean() float64 {
	return (r.Crossings.Relative + r.Collisions.Relative + r.Area.Relative + r.Orthogonality.Relative) / 4
}

// Evaluate computes every metric.
func Evaluate(s *graph.Snapshot) Report {
	return Report{
		Crossings:     EdgeCrossings(s),
		Collisions:    EdgeNodeCollisions(s),
		Area:          Area(s),
		Orthogonality: Orthogonality(s),
	}
}

type segment struct {
	edge graph.EdgeView
	seg  geo.Segment
}

// segments returns the border-clipped segment of every layout edge that
// connects two distinct endpoints with known geometry.
func segments(s *graph.Snapshot) []segment {
	rects := s.Rects()
	var out []segment
	for _, e := range s.LayoutEdges() {
		if e.Start == e.End {
			continue
		}
		a, okA := rects[e.Start]
		b, okB := rects[e.End]
		if !okA || !okB {
			continue
		}
		out = append(out, segment{edge: e, seg: geo.Connect(a, b)})
	}
	return out
}

func sharesEndpoint(a, b graph.EdgeView) bool {
	return a.Start == b.Start || a.Start == b.End || a.End == b.Start || a.End == b.End
}

// relative maps count out of bound to a score where 0 of bound is 1.
func relative(count, bound float64) float64 {
	if bound <= 0 {
		if count > 0 {
			return 0
		}
		return 1
	}
	return math.Max(0, 1-count/bound)
}

// EdgeCrossings counts pairs of edges whose segments intersect. Pairs that
// share an endpoint (including mutual reverses) are not compared.
//
// The bound is the number of pairs that could cross:
// E(E-1)/2 - Σ deg(v)(deg(v)-1)/2.
func EdgeCrossings(s *graph.Snapshot) Value {
	segs := segments(s)
	crossings := 0
	degree := make(map[graph.Ref]int)
	for i, a := range segs {
		degree[a.edge.Start]++
		degree[a.edge.End]++
		for _, b := range segs[i+1:] {
			if sharesEndpoint(a.edge, b.edge) {
				continue
			}
			if a.seg.Intersects(b.seg) {
				crossings++
			}
		}
	}

	e := float64(len(segs))
	bound := e * (e - 1) / 2
	for _, d := range degree {
		bound -= float64(d*(d-1)) / 2
	}
	return Value{Absolute: float64(crossings), Relative: relative(float64(crossings), bound)}
}

// EdgeNodeCollisions counts (edge, node) pairs where the edge's segment
// touches a visible node that is not one of its endpoints.
func EdgeNodeCollisions(s *graph.Snapshot) Value {
	segs := segments(s)
	nodes := s.VisibleNodes()
	collisions := 0
	for _, sg := range segs {
		for _, n := range nodes {
			r := graph.NodeRef(n.ID)
			if r == sg.edge.Start || r == sg.edge.End {
				continue
			}
			if sg.seg.IntersectsRect(n.Geometry) {
				collisions++
			}
		}
	}
	bound := float64(len(nodes)-2) * float64(len(segs))
	return Value{Absolute: float64(collisions), Relative: relative(float64(collisions), bound)}
}

// Area compares the bounding box of the visible nodes with the area of a
// square-ish grid of cells the size of the largest node. The ratio is
// folded into [0, 1] so both sparse and overlapping layouts score below 1.
func Area(s *graph.Snapshot) Value {
	nodes := s.VisibleNodes()
	if len(nodes) == 0 {
		return Value{Absolute: 0, Relative: 1}
	}
	rects := make([]geo.Rect, len(nodes))
	var maxW, maxH float64
	for i, n := range nodes {
		rects[i] = n.Geometry
		maxW = math.Max(maxW, n.Geometry.Width)
		maxH = math.Max(maxH, n.Geometry.Height)
	}
	actual := geo.Union(rects...).Area()

	cols := math.Ceil(math.Sqrt(float64(len(nodes))))
	rows := math.Ceil(float64(len(nodes)) / cols)
	ideal := cols * maxW * rows * maxH
	if actual <= 0 || ideal <= 0 {
		return Value{Absolute: actual, Relative: 0}
	}
	ratio := ideal / actual
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return Value{Absolute: actual, Relative: ratio}
}

// Orthogonality returns the number and fraction of visible nodes aligned
// with at least one other node: matching left, right or top, bottom borders,
// or matching horizontal or vertical centers, within AlignmentTolerance.
func Orthogonality(s *graph.Snapshot) Value {
	nodes := s.VisibleNodes()
	if len(nodes) < 2 {
		return Value{Absolute: 0, Relative: 1}
	}
	aligned := make([]bool, len(nodes))
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if isAligned(nodes[i].Geometry, nodes[j].Geometry) {
				aligned[i], aligned[j] = true, true
			}
		}
	}
	count := 0
	for _, a := range aligned {
		if a {
			count++
		}
	}
	return Value{Absolute: float64(count), Relative: float64(count) / float64(len(nodes))}
}

func isAligned(a, b geo.Rect) bool {
	near := func(x, y float64) bool { return math.Abs(x-y) <= AlignmentTolerance }
	ca, cb := a.Center(), b.Center()
	return near(a.X, b.X) || near(a.X+a.Width, b.X+b.Width) || near(ca.X, cb.X) ||
		near(a.Y, b.Y) || near(a.Y+a.Height, b.Y+b.Height) || near(ca.Y, cb.Y)
}
