package graph

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Edge is a directed connector between two endpoints.
type Edge struct {
	ID    string
	Kind  EdgeKind
	Start Ref
	End   Ref

	IsDummy            bool // Synthetic, never emitted by Convert
	ConsideredInLayout bool // False excludes the edge from solving without removing it
	IsOutsider         bool // Synthesized rather than sourced from the diagram

	Semantic string // Represented semantic entity id
	Model    string // Owning semantic model id

	// Visual is the diagram id the edge is committed under. It is the id of
	// the pre-existing diagram entity when there is one.
	Visual string

	// StartVisual and EndVisual cache the committed endpoint ids. When unset
	// the ids are resolved through Start and End.
	StartVisual string
	EndVisual   string

	// SplitFrom is the id of the edge this one replaced at a subgraph boundary.
	SplitFrom string

	BendPoints []r2.Vec
}

// Other returns the endpoint of e opposite to r.
func (e *Edge) Other(r Ref) Ref {
	if e.Start == r {
		return e.End
	}
	return e.Start
}

// Far returns the endpoint e points to when walked in direction dir from
// its near end: End for Out, Start for In.
func (e *Edge) Far(dir Direction) Ref {
	if dir == Out {
		return e.End
	}
	return e.Start
}

// IsReverseOf reports whether e and o connect the same endpoints in
// opposite directions.
func (e *Edge) IsReverseOf(o *Edge) bool {
	return e.Start == o.End && e.End == o.Start
}

// SharesEndpoint reports whether e and o have an endpoint in common.
func (e *Edge) SharesEndpoint(o *Edge) bool {
	return e.Start == o.Start || e.Start == o.End || e.End == o.Start || e.End == o.End
}

// CommittedID returns the id Convert emits the edge under.
func (e *Edge) CommittedID() string {
	if e.Visual != "" {
		return e.Visual
	}
	return e.ID
}
