package graph

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/geo"
)

// NodeView is an immutable copy of a node.
type NodeView struct {
	ID         string   `json:"id"`
	Semantic   string   `json:"semantic,omitempty"`
	Label      string   `json:"label,omitempty"`
	Parent     string   `json:"parent"`
	Geometry   geo.Rect `json:"geometry"`
	Anchored   bool     `json:"anchored,omitempty"`
	IsOutsider bool     `json:"isOutsider,omitempty"`
	IsDummy    bool     `json:"isDummy,omitempty"`
}

// SubgraphView is an immutable copy of a subgraph.
type SubgraphView struct {
	ID       string   `json:"id"`
	Parent   string   `json:"parent"`
	Members  []Ref    `json:"members"`
	Geometry geo.Rect `json:"geometry"`
	IsDummy  bool     `json:"isDummy,omitempty"`
}

// EdgeView is an immutable copy of an edge.
type EdgeView struct {
	ID                 string   `json:"id"`
	Kind               EdgeKind `json:"kind"`
	Start              Ref      `json:"start"`
	End                Ref      `json:"end"`
	IsDummy            bool     `json:"isDummy,omitempty"`
	ConsideredInLayout bool     `json:"consideredInLayout"`
	BendPoints         []r2.Vec `json:"bendPoints,omitempty"`
}

// Snapshot is a read-only copy of a Main Graph handed to layout solvers and
// metrics. It shares no memory with the graph it was taken from.
type Snapshot struct {
	Nodes     []NodeView     `json:"nodes"`
	Subgraphs []SubgraphView `json:"subgraphs,omitempty"`
	Edges     []EdgeView     `json:"edges"`
	// Top lists the endpoints directly contained in the root.
	Top []Ref `json:"top"`
}

// Snapshot copies the current state of the graph without marking it busy.
func (mg *MainGraph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes:     make([]NodeView, 0, len(mg.nodeOrder)),
		Subgraphs: make([]SubgraphView, 0, len(mg.subOrder)),
		Edges:     make([]EdgeView, 0, len(mg.edgeOrder)),
		Top:       slices.Clone(mg.top),
	}
	for _, n := range mg.Nodes() {
		s.Nodes = append(s.Nodes, NodeView{
			ID:         n.ID,
			Semantic:   n.Semantic,
			Label:      n.Label,
			Parent:     n.Parent,
			Geometry:   n.Geometry,
			Anchored:   n.Anchored,
			IsOutsider: n.IsOutsider,
			IsDummy:    n.IsDummy,
		})
	}
	for _, g := range mg.Subgraphs() {
		s.Subgraphs = append(s.Subgraphs, SubgraphView{
			ID:       g.ID,
			Parent:   g.Parent,
			Members:  g.Members(),
			Geometry: g.Geometry,
			IsDummy:  g.IsDummy,
		})
	}
	for _, e := range mg.Edges() {
		s.Edges = append(s.Edges, EdgeView{
			ID:                 e.ID,
			Kind:               e.Kind,
			Start:              e.Start,
			End:                e.End,
			IsDummy:            e.IsDummy,
			ConsideredInLayout: e.ConsideredInLayout,
			BendPoints:         slices.Clone(e.BendPoints),
		})
	}
	return s
}

// BeginSolve marks the graph busy and returns the snapshot to solve.
// Every mutator fails with ErrGraphBusy until ApplySolution or AbortSolve.
func (mg *MainGraph) BeginSolve() (Snapshot, error) {
	if mg.busy {
		return Snapshot{}, ErrGraphBusy
	}
	mg.busy = true
	return mg.Snapshot(), nil
}

// Rects returns the geometry of every node and subgraph.
func (s *Snapshot) Rects() map[Ref]geo.Rect {
	out := make(map[Ref]geo.Rect, len(s.Nodes)+len(s.Subgraphs))
	for _, n := range s.Nodes {
		out[NodeRef(n.ID)] = n.Geometry
	}
	for _, g := range s.Subgraphs {
		out[SubgraphRef(g.ID)] = g.Geometry
	}
	return out
}

// Node returns the view of the node with the given id.
func (s *Snapshot) Node(id string) (NodeView, bool) {
	i := slices.IndexFunc(s.Nodes, func(n NodeView) bool { return n.ID == id })
	if i < 0 {
		return NodeView{}, false
	}
	return s.Nodes[i], true
}

// Subgraph returns the view of the subgraph with the given id.
func (s *Snapshot) Subgraph(id string) (SubgraphView, bool) {
	i := slices.IndexFunc(s.Subgraphs, func(g SubgraphView) bool { return g.ID == id })
	if i < 0 {
		return SubgraphView{}, false
	}
	return s.Subgraphs[i], true
}

// Anchored reports whether r is pinned. A subgraph is pinned when any
// member, transitively, is pinned.
func (s *Snapshot) Anchored(r Ref) bool {
	if !r.IsSubgraph() {
		n, ok := s.Node(r.ID)
		return ok && n.Anchored
	}
	g, ok := s.Subgraph(r.ID)
	if !ok {
		return false
	}
	for _, m := range g.Members {
		if s.Anchored(m) {
			return true
		}
	}
	return false
}

// LayoutEdges returns the edges considered in layout. Dummy edges are
// included: both halves of a split edge constrain the layout even though
// only SPLIT-0- is written back.
func (s *Snapshot) LayoutEdges() []EdgeView {
	out := make([]EdgeView, 0, len(s.Edges))
	for _, e := range s.Edges {
		if e.ConsideredInLayout {
			out = append(out, e)
		}
	}
	return out
}

// VisibleNodes returns the non-dummy nodes.
func (s *Snapshot) VisibleNodes() []NodeView {
	out := make([]NodeView, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if !n.IsDummy {
			out = append(out, n)
		}
	}
	return out
}
