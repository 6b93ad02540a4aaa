package graph

import (
	"slices"

	"github.com/matzehuels/ontolayout/pkg/diagram"
)

// Convert reconciles the graph into the diagram entities to commit, keyed
// by diagram id.
//
// Every non-dummy node is emitted with its current geometry and anchoring,
// every non-dummy subgraph as a group of its visible members, and every
// non-dummy edge with its committed endpoint ids. IsOutsider marks
// entities that do not exist in the diagram yet.
func (mg *MainGraph) Convert() map[string]diagram.Converted {
	out := make(map[string]diagram.Converted, len(mg.nodes)+len(mg.edges))

	for _, n := range mg.Nodes() {
		if n.IsDummy {
			continue
		}
		out[n.ID] = diagram.Converted{
			Entity: diagram.Entity{
				ID:          n.ID,
				Kind:        diagram.KindNode,
				Represented: n.Semantic,
				Model:       n.Model,
				Label:       n.Label,
				Position:    n.Geometry,
				Anchored:    n.Anchored,
			},
			IsOutsider: n.IsOutsider,
		}
	}

	for _, g := range mg.Subgraphs() {
		if g.IsDummy {
			continue
		}
		out[g.ID] = diagram.Converted{
			Entity: diagram.Entity{
				ID:       g.ID,
				Kind:     diagram.KindGroup,
				Position: g.Geometry,
				Members:  mg.visibleMembers(g),
			},
			IsOutsider: g.IsOutsider,
		}
	}

	for _, e := range mg.Edges() {
		if e.IsDummy {
			continue
		}
		kind := diagram.KindRelationship
		if e.Kind == ProfileOfClass {
			kind = diagram.KindProfileEdge
		}
		id := e.CommittedID()
		out[id] = diagram.Converted{
			Entity: diagram.Entity{
				ID:          id,
				Kind:        kind,
				Represented: e.Semantic,
				Model:       e.Model,
				Source:      committedEnd(e.StartVisual, e.Start),
				Target:      committedEnd(e.EndVisual, e.End),
				Waypoints:   slices.Clone(e.BendPoints),
			},
			IsOutsider: e.IsOutsider,
		}
	}
	return out
}

func committedEnd(cached string, r Ref) string {
	if cached != "" {
		return cached
	}
	return r.ID
}

// visibleMembers lists g's member ids, expanding dummy subgraphs in place.
func (mg *MainGraph) visibleMembers(g *Graph) []string {
	var ids []string
	for _, m := range g.Members() {
		if sg, ok := mg.subgraphs[m.ID]; ok && m.IsSubgraph() && sg.IsDummy {
			ids = append(ids, mg.visibleMembers(sg)...)
			continue
		}
		if n, ok := mg.nodes[m.ID]; ok && n.IsDummy {
			continue
		}
		ids = append(ids, m.ID)
	}
	slices.Sort(ids)
	return ids
}
