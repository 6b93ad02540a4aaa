package graph

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// GeneralizationPrefix prefixes the ids of generalization subgraphs.
const GeneralizationPrefix = "GENERALIZATION-"

// GeneralizationComponents partitions every endpoint touched by a live
// generalization edge into the connected components of the undirected
// parent/child relation.
//
// Child keys are visited in ascending id order and each component is
// discovered with an iterative stack traversal, so the result is
// deterministic. Member ids within a component are sorted.
func (mg *MainGraph) GeneralizationComponents() [][]string {
	parents := make(map[string][]string)
	children := make(map[string][]string)
	for _, e := range mg.Edges() {
		if e.Kind != Generalization {
			continue
		}
		parents[e.Start.ID] = append(parents[e.Start.ID], e.End.ID)
		children[e.End.ID] = append(children[e.End.ID], e.Start.ID)
	}

	component := make(map[string]int)
	var components [][]string
	for _, start := range slices.Sorted(maps.Keys(parents)) {
		if _, seen := component[start]; seen {
			continue
		}
		idx := len(components)
		components = append(components, nil)
		component[start] = idx
		stack := []string{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			components[idx] = append(components[idx], id)
			for _, adj := range [][]string{parents[id], children[id]} {
				for _, next := range adj {
					if _, seen := component[next]; !seen {
						component[next] = idx
						stack = append(stack, next)
					}
				}
			}
		}
		slices.Sort(components[idx])
	}
	return components
}

// CreateGeneralizationSubgraphs groups each generalization component into a
// dummy subgraph of the given parent graph, and returns the new subgraphs.
//
// Components are filtered to the parent's immediate members first; members
// already grouped elsewhere are out of scope. Grouping is a single flat
// level and is not incremental: calling it again re-derives the components
// from the current edges.
func (mg *MainGraph) CreateGeneralizationSubgraphs(parentID string, split bool) ([]*Graph, error) {
	if mg.busy {
		return nil, ErrGraphBusy
	}
	parent, ok := mg.Subgraph(parentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGraph, parentID)
	}

	var created []*Graph
	for _, comp := range mg.GeneralizationComponents() {
		members := lo.Filter(comp, func(id string, _ int) bool { return parent.HasMember(id) })
		if len(members) == 0 {
			continue
		}
		id := mg.nextGeneralizationID()
		sg, err := mg.CreateSubgraph(parentID, id, members, true, split)
		if err != nil {
			return created, err
		}
		created = append(created, sg)
	}
	return created, nil
}

func (mg *MainGraph) nextGeneralizationID() string {
	for {
		id := fmt.Sprintf("%s%d", GeneralizationPrefix, mg.generalizationSeq)
		mg.generalizationSeq++
		if !mg.idTaken(id) {
			return id
		}
	}
}
