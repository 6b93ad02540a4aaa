package graph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/ontolayout/pkg/geo"
)

// SplitPrefix0 and SplitPrefix1 prefix the ids of the two edges that replace
// a boundary-crossing edge: start → subgraph and subgraph → end.
const (
	SplitPrefix0 = "SPLIT-0-"
	SplitPrefix1 = "SPLIT-1-"
)

// CreateSubgraph moves members out of the parent graph into a new subgraph
// with the given id, and inserts the subgraph into the parent.
//
// All preconditions are checked before anything changes: the parent must
// exist, id must be unused, and members must be a non-empty set of immediate
// members of the parent. On failure the graph is left unmodified.
//
// The subgraph's geometry is the union of its members' geometry. When split
// is true every edge crossing the new boundary is replaced by two edges
// through the subgraph (see SplitBoundaryEdges).
func (mg *MainGraph) CreateSubgraph(parentID, id string, members []string, isDummy, split bool) (*Graph, error) {
	if mg.busy {
		return nil, ErrGraphBusy
	}
	parent, ok := mg.Subgraph(parentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGraph, parentID)
	}
	if id == "" || mg.idTaken(id) {
		return nil, fmt.Errorf("%w: subgraph %q", ErrDuplicateID, id)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: %s has no members", ErrInvalidSubgraph, id)
	}
	refs := make([]Ref, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m] {
			return nil, fmt.Errorf("%w: %s lists %s twice", ErrInvalidSubgraph, id, m)
		}
		seen[m] = true
		r, ok := parent.members[m]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a member of %s", ErrInvalidSubgraph, m, parentID)
		}
		refs = append(refs, r)
	}
	slices.SortFunc(refs, compareRefs)

	sg := newGraph(id, parent.ID)
	sg.IsDummy = isDummy
	sg.IsOutsider = true
	sg.Geometry = mg.unionOf(refs)

	for _, r := range refs {
		delete(parent.members, r.ID)
		sg.members[r.ID] = r
		mg.setParent(r, sg.ID)
	}
	parent.members[sg.ID] = sg.Ref()
	mg.subgraphs[sg.ID] = sg
	mg.subOrder = append(mg.subOrder, sg.ID)
	if parent.IsRoot() {
		mg.replaceTop(refs, sg.Ref())
	}

	if split {
		mg.splitBoundaryEdges(sg, refs)
	}
	return sg, nil
}

// replaceTop removes refs from the solver-facing list and puts sg where the
// first removed member was.
func (mg *MainGraph) replaceTop(refs []Ref, sg Ref) {
	at := -1
	out := mg.top[:0]
	for _, r := range mg.top {
		if slices.Contains(refs, r) {
			if at < 0 {
				at = len(out)
			}
			continue
		}
		out = append(out, r)
	}
	if at < 0 {
		at = len(out)
	}
	mg.top = slices.Insert(out, at, sg)
}

func (mg *MainGraph) unionOf(refs []Ref) geo.Rect {
	rects := make([]geo.Rect, 0, len(refs))
	for _, r := range refs {
		if g, ok := mg.Geometry(r); ok {
			rects = append(rects, g)
		}
	}
	return geo.Union(rects...)
}

// SplitBoundaryEdges replaces every edge that crosses the boundary of the
// subgraph with two edges through it, and returns the replaced edge ids.
//
// Outgoing and incoming edges of the members are processed in two
// independent passes. An edge crosses the boundary when its far endpoint is
// neither a member nor the subgraph itself. A crossing edge e from a to b is
// removed and replaced by SPLIT-0-e (a → subgraph) and SPLIT-1-e
// (subgraph → b) with e's kind, semantic reference and model. Edges between
// two members are left untouched.
func (mg *MainGraph) SplitBoundaryEdges(subgraphID string) ([]string, error) {
	if mg.busy {
		return nil, ErrGraphBusy
	}
	sg, ok := mg.subgraphs[subgraphID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGraph, subgraphID)
	}
	return mg.splitBoundaryEdges(sg, sg.Members()), nil
}

func (mg *MainGraph) splitBoundaryEdges(sg *Graph, members []Ref) []string {
	inside := make(map[Ref]bool, len(members)+1)
	for _, m := range members {
		inside[m] = true
	}
	inside[sg.Ref()] = true

	var replaced []string
	for _, dir := range []Direction{Out, In} {
		var crossing []*Edge
		for _, m := range members {
			for _, e := range mg.IncidentEdges(m, dir) {
				if !inside[e.Far(dir)] {
					crossing = append(crossing, e)
				}
			}
		}
		for _, e := range crossing {
			mg.replaceWithSplit(e, sg)
			replaced = append(replaced, e.ID)
		}
	}
	return replaced
}

// replaceWithSplit removes e and inserts its two replacements. The first
// replacement keeps e's committed identity and endpoints so reconciliation
// emits the same diagram edge as before the split; the second is a dummy.
func (mg *MainGraph) replaceWithSplit(e *Edge, sg *Graph) {
	mg.removeEdge(e)

	startVisual, endVisual := e.StartVisual, e.EndVisual
	if startVisual == "" {
		startVisual = e.Start.ID
	}
	if endVisual == "" {
		endVisual = e.End.ID
	}

	first := &Edge{
		ID:                 SplitPrefix0 + e.ID,
		Kind:               e.Kind,
		Start:              e.Start,
		End:                sg.Ref(),
		IsDummy:            e.IsDummy,
		ConsideredInLayout: e.ConsideredInLayout,
		IsOutsider:         e.IsOutsider,
		Semantic:           e.Semantic,
		Model:              e.Model,
		Visual:             e.CommittedID(),
		StartVisual:        startVisual,
		EndVisual:          endVisual,
		SplitFrom:          e.ID,
		BendPoints:         e.BendPoints,
	}
	second := &Edge{
		ID:                 SplitPrefix1 + e.ID,
		Kind:               e.Kind,
		Start:              sg.Ref(),
		End:                e.End,
		IsDummy:            true,
		ConsideredInLayout: e.ConsideredInLayout,
		IsOutsider:         e.IsOutsider,
		Semantic:           e.Semantic,
		Model:              e.Model,
		SplitFrom:          e.ID,
	}
	mg.insertEdge(first)
	mg.insertEdge(second)
}
