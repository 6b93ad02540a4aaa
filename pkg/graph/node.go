package graph

import (
	"github.com/matzehuels/ontolayout/pkg/geo"
)

// Node is a graph vertex: one diagram occurrence of a class or class
// profile, or an outsider not yet present in the diagram.
type Node struct {
	ID         string   // Unique in the Main Graph (diagram id or minted id for outsiders)
	Semantic   string   // Represented semantic entity id (may be empty)
	Model      string   // Owning semantic model id
	Label      string   // Display label, used by dimension estimation
	Geometry   geo.Rect // Current position and size
	Anchored   bool     // Pinned: the solver must not move it
	IsOutsider bool     // Not yet present in the diagram
	IsDummy    bool     // Synthetic, never emitted by Convert

	// Parent is the id of the graph this node is an immediate member of.
	Parent string

	// OriginalAnchored is the anchoring stored in the diagram (false for
	// outsiders) and is the default for re-resolving anchors.
	OriginalAnchored bool

	original geo.Rect
	moved    bool
	adj      adjacency
}

// Ref returns a reference to n.
func (n *Node) Ref() Ref { return NodeRef(n.ID) }

// Moved reports whether the last applied solution changed n's geometry.
func (n *Node) Moved() bool { return n.moved }

// Original returns the geometry n had when it was built.
func (n *Node) Original() geo.Rect { return n.original }

// Edges returns the ids of n's edges in one (direction, kind) bucket.
func (n *Node) Edges(dir Direction, kind EdgeKind) []string {
	return n.adj.edges(dir, kind)
}

// Degree returns the number of edges incident to n.
func (n *Node) Degree() int { return n.adj.degree() }
