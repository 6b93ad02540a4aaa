// Package graph is the in-memory layout graph of a diagram.
//
// A [MainGraph] is built once per layout request from extracted semantic
// model data and the current diagram. It owns every [Node], [Edge] and
// subgraph ([Graph]) created during the run; everything else refers to them
// by id through [Ref], a tagged union naming either a node or a subgraph.
//
// # Construction
//
// [Build] creates one node per diagram occurrence of every class and class
// profile, plus "outsider" nodes for requested entities that are not in the
// diagram yet. Anchoring for every node is resolved with [anchor.Resolve].
// Relationships, relationship profiles, generalizations and class profile
// links then become edges. One semantic edge may fan out into several graph
// edges when its ends have several occurrences. Edges whose ends are missing
// are dropped and reported as warnings in the [BuildReport].
//
// # Subgraphs
//
// [MainGraph.CreateSubgraph] moves a set of members out of a parent graph
// into a new subgraph in one atomic step, optionally splitting every edge
// that crosses the new boundary into two edges through the subgraph:
//
//	a ──e──▶ b      becomes      a ──SPLIT-0-e──▶ S ──SPLIT-1-e──▶ b
//
// [MainGraph.CreateGeneralizationSubgraphs] groups every connected component
// of the generalization relation into one subgraph. Grouping is flat: a
// chain A←B←C yields a single subgraph.
//
// # Solving and reconciliation
//
// Construction is synchronous. [MainGraph.BeginSolve] freezes the graph and
// returns an immutable [Snapshot] for the layout solver; until the solve is
// settled with [MainGraph.ApplySolution] or [MainGraph.AbortSolve] every
// mutator fails with [ErrGraphBusy]. Anchored nodes are never moved.
// [MainGraph.Convert] finally produces the diagram entities to commit.
//
// # Concurrency
//
// A MainGraph is single-owner: one per in-flight layout request. No method
// is safe for concurrent use.
package graph
