package graph

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/geo"
)

// Solution is a layout solver's output: geometry per node or subgraph id
// and optional bend points per edge id. A zero width or height keeps the
// current size.
type Solution struct {
	Positions  map[string]geo.Rect `json:"positions"`
	BendPoints map[string][]r2.Vec `json:"bendPoints,omitempty"`
}

// ApplyStats summarizes an applied solution.
type ApplyStats struct {
	Moved   int // Nodes whose geometry changed
	Pinned  int // Anchored nodes the solution tried to move
	Unknown int // Solution ids not in the graph
}

// ApplySolution writes solver geometry into the graph and settles the
// outstanding solve.
//
// A node takes its own position when the solution has one; otherwise it is
// translated with its nearest positioned ancestor subgraph. Anchored nodes
// are never moved. Subgraph geometry is then recomputed bottom-up from the
// members.
func (mg *MainGraph) ApplySolution(sol Solution) (ApplyStats, error) {
	if !mg.busy {
		return ApplyStats{}, ErrNotSolving
	}
	var stats ApplyStats
	for id := range sol.Positions {
		if _, ok := mg.Lookup(id); !ok {
			stats.Unknown++
		}
	}

	for _, n := range mg.Nodes() {
		target, ok := mg.targetFor(n, sol.Positions)
		if !ok || target == n.Geometry {
			continue
		}
		if n.Anchored {
			stats.Pinned++
			continue
		}
		n.Geometry = target
		n.moved = true
		stats.Moved++
	}

	for id, pts := range sol.BendPoints {
		if e, ok := mg.edges[id]; ok {
			e.BendPoints = append([]r2.Vec(nil), pts...)
		} else {
			stats.Unknown++
		}
	}

	mg.recomputeBounds()
	mg.busy = false
	return stats, nil
}

func (mg *MainGraph) targetFor(n *Node, positions map[string]geo.Rect) (geo.Rect, bool) {
	if p, ok := positions[n.ID]; ok {
		return sized(p, n.Geometry), true
	}
	for parent := n.Parent; parent != "" && parent != RootID; {
		g := mg.subgraphs[parent]
		if p, ok := positions[g.ID]; ok {
			dx, dy := p.X-g.Geometry.X, p.Y-g.Geometry.Y
			return n.Geometry.MoveTo(n.Geometry.X+dx, n.Geometry.Y+dy), true
		}
		parent = g.Parent
	}
	return geo.Rect{}, false
}

func sized(p, current geo.Rect) geo.Rect {
	if p.Width <= 0 {
		p.Width = current.Width
	}
	if p.Height <= 0 {
		p.Height = current.Height
	}
	return p
}

// AbortSolve settles an outstanding solve without changing geometry.
// The graph is left as built and may be solved again.
func (mg *MainGraph) AbortSolve() error {
	if !mg.busy {
		return ErrNotSolving
	}
	mg.busy = false
	return nil
}

func (mg *MainGraph) recomputeBounds() {
	done := make(map[string]bool, len(mg.subgraphs))
	var visit func(g *Graph)
	visit = func(g *Graph) {
		if done[g.ID] {
			return
		}
		for _, m := range g.members {
			if m.IsSubgraph() {
				visit(mg.subgraphs[m.ID])
			}
		}
		g.Geometry = mg.unionOf(g.Members())
		done[g.ID] = true
	}
	for _, g := range mg.Subgraphs() {
		visit(g)
	}
}

// ResetForNewLayout restores the geometry every node had when it was built
// and clears per-run state, keeping nodes, subgraphs and edges. It fails
// with ErrGraphBusy while a solve is outstanding.
func (mg *MainGraph) ResetForNewLayout() error {
	if mg.busy {
		return ErrGraphBusy
	}
	for _, n := range mg.Nodes() {
		n.Geometry = n.original
		n.moved = false
	}
	mg.recomputeBounds()
	return nil
}

// Reanchor resolves every node's anchoring again with a new override.
// Diagram nodes resolve by their id with the diagram's value as default;
// outsiders resolve by their semantic id with default false.
func (mg *MainGraph) Reanchor(anchors anchor.Explicit) error {
	if mg.busy {
		return ErrGraphBusy
	}
	if err := anchors.Validate(); err != nil {
		return err
	}
	for _, n := range mg.Nodes() {
		anchored, err := anchor.Resolve(anchorKey(n), n.OriginalAnchored, anchors)
		if err != nil {
			return err
		}
		n.Anchored = anchored
	}
	return nil
}

func anchorKey(n *Node) string {
	if n.IsOutsider && n.Semantic != "" {
		return n.Semantic
	}
	return n.ID
}
