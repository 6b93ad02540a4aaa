package solver

import (
	"context"
	"math"

	"github.com/matzehuels/ontolayout/pkg/geo"
	"github.com/matzehuels/ontolayout/pkg/graph"
)

// Grid parameter defaults.
const (
	DefaultGap     = 40.0
	DefaultPadding = 20.0
)

// Grid packs unanchored endpoints into rows and columns.
//
// Every subgraph is laid out recursively: its members form an inner grid and
// the subgraph takes the grid's size plus padding. At the top level, anchored
// nodes and subgraphs holding an anchored node stay where they are, and the
// free items are placed in a grid below their bounding box.
//
// Parameters: "gap" (space between cells), "padding" (inset inside
// subgraphs) and "columns" (cells per row; zero picks ceil(sqrt(n))).
type Grid struct{}

// Name implements Solver.
func (Grid) Name() string { return "grid" }

// Solve implements Solver.
func (Grid) Solve(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	l := gridLayout{
		dims:    req.Dimensions,
		gap:     req.Config.Float("gap", DefaultGap),
		padding: req.Config.Float("padding", DefaultPadding),
		columns: req.Config.Int("columns", 0),
		nodes:   make(map[string]graph.NodeView, len(req.Graph.Nodes)),
		subs:    make(map[string]graph.SubgraphView, len(req.Graph.Subgraphs)),
		out:     make(map[string]geo.Rect),
	}
	for _, n := range req.Graph.Nodes {
		l.nodes[n.ID] = n
	}
	for _, g := range req.Graph.Subgraphs {
		l.subs[g.ID] = g
	}

	var pinned []geo.Rect
	var free []graph.Ref
	for _, r := range req.Graph.Top {
		if req.Graph.Anchored(r) {
			pinned = append(pinned, l.rect(r))
			continue
		}
		free = append(free, r)
	}
	if len(free) == 0 {
		return Result{Positions: l.out}, nil
	}

	var x, y float64
	if len(pinned) > 0 {
		bounds := geo.Union(pinned...)
		x, y = bounds.X, bounds.Y+bounds.Height+l.gap
	}
	_, _, emit := l.grid(free)
	emit(x, y)
	return Result{Positions: l.out}, nil
}

type gridLayout struct {
	dims    graph.DimensionProvider
	gap     float64
	padding float64
	columns int
	nodes   map[string]graph.NodeView
	subs    map[string]graph.SubgraphView
	out     map[string]geo.Rect
}

// placer writes the positions of an item laid out at (x, y).
type placer func(x, y float64)

func (l *gridLayout) rect(r graph.Ref) geo.Rect {
	if r.IsSubgraph() {
		return l.subs[r.ID].Geometry
	}
	return l.nodes[r.ID].Geometry
}

func (l *gridLayout) item(r graph.Ref) (w, h float64, emit placer) {
	if !r.IsSubgraph() {
		n := l.nodes[r.ID]
		w, h = Size(n, l.dims)
		return w, h, func(x, y float64) {
			l.out[n.ID] = geo.Rect{X: x, Y: y, Width: w, Height: h}
		}
	}
	g := l.subs[r.ID]
	if len(g.Members) == 0 {
		return g.Geometry.Width, g.Geometry.Height, func(float64, float64) {}
	}
	iw, ih, inner := l.grid(g.Members)
	return iw + 2*l.padding, ih + 2*l.padding, func(x, y float64) {
		inner(x+l.padding, y+l.padding)
	}
}

// grid arranges items row by row. Column widths and row heights are the
// maxima of their cells.
func (l *gridLayout) grid(items []graph.Ref) (w, h float64, emit placer) {
	cols := l.columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(items)))))
	}
	cols = min(cols, len(items))
	rows := (len(items) + cols - 1) / cols

	widths := make([]float64, cols)
	heights := make([]float64, rows)
	placers := make([]placer, len(items))
	for i, r := range items {
		iw, ih, p := l.item(r)
		c, row := i%cols, i/cols
		widths[c] = max(widths[c], iw)
		heights[row] = max(heights[row], ih)
		placers[i] = p
	}

	xs := offsets(widths, l.gap)
	ys := offsets(heights, l.gap)
	w = xs[cols-1] + widths[cols-1]
	h = ys[rows-1] + heights[rows-1]
	return w, h, func(x, y float64) {
		for i, p := range placers {
			p(x+xs[i%cols], y+ys[i/cols])
		}
	}
}

func offsets(sizes []float64, gap float64) []float64 {
	out := make([]float64, len(sizes))
	for i := 1; i < len(sizes); i++ {
		out[i] = out[i-1] + sizes[i-1] + gap
	}
	return out
}
