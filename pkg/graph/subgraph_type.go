package graph

import (
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/geo"
)

// RootID is the id of every Main Graph's root graph.
const RootID = "root"

// Graph is a container of nodes and nested subgraphs. The root of a Main
// Graph is a Graph; every other Graph is a subgraph and is itself a valid
// edge endpoint.
type Graph struct {
	ID         string
	Parent     string   // Immediate parent graph id, empty for the root
	Geometry   geo.Rect // Union of the members' geometry
	IsDummy    bool     // Synthetic grouping, never emitted by Convert
	IsOutsider bool     // Not present in the diagram

	members map[string]Ref
	adj     adjacency
}

func newGraph(id, parent string) *Graph {
	return &Graph{ID: id, Parent: parent, members: make(map[string]Ref)}
}

// Ref returns a reference to g as an endpoint.
func (g *Graph) Ref() Ref { return SubgraphRef(g.ID) }

// IsRoot reports whether g is the root of its Main Graph.
func (g *Graph) IsRoot() bool { return g.Parent == "" }

// Member returns the member stored under id.
func (g *Graph) Member(id string) (Ref, bool) {
	r, ok := g.members[id]
	return r, ok
}

// HasMember reports whether id is an immediate member of g.
func (g *Graph) HasMember(id string) bool {
	_, ok := g.members[id]
	return ok
}

// Members returns the immediate members ordered by id.
func (g *Graph) Members() []Ref {
	refs := lo.Values(g.members)
	slices.SortFunc(refs, func(a, b Ref) int { return compareRefs(a, b) })
	return refs
}

// MemberIDs returns the immediate member ids in ascending order.
func (g *Graph) MemberIDs() []string {
	ids := lo.Keys(g.members)
	slices.Sort(ids)
	return ids
}

// Len returns the number of immediate members.
func (g *Graph) Len() int { return len(g.members) }

// Edges returns the ids of g's own edges in one (direction, kind) bucket.
func (g *Graph) Edges(dir Direction, kind EdgeKind) []string {
	return g.adj.edges(dir, kind)
}

func compareRefs(a, b Ref) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return int(a.Kind) - int(b.Kind)
	}
}
