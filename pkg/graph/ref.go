package graph

import (
	"fmt"
	"slices"
)

// RefKind discriminates the two kinds of edge endpoints.
type RefKind uint8

const (
	RefNode RefKind = iota
	RefSubgraph
)

// String returns "node" or "subgraph".
func (k RefKind) String() string {
	if k == RefSubgraph {
		return "subgraph"
	}
	return "node"
}

// MarshalText implements encoding.TextMarshaler.
func (k RefKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RefKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "node":
		*k = RefNode
	case "subgraph":
		*k = RefSubgraph
	default:
		return fmt.Errorf("unknown endpoint kind %q", text)
	}
	return nil
}

// Ref names an edge endpoint: a node or a subgraph of the Main Graph.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// NodeRef returns a reference to the node with the given id.
func NodeRef(id string) Ref { return Ref{Kind: RefNode, ID: id} }

// SubgraphRef returns a reference to the subgraph with the given id.
func SubgraphRef(id string) Ref { return Ref{Kind: RefSubgraph, ID: id} }

// IsZero reports whether r names nothing.
func (r Ref) IsZero() bool { return r.ID == "" }

// IsSubgraph reports whether r names a subgraph.
func (r Ref) IsSubgraph() bool { return r.Kind == RefSubgraph }

func (r Ref) String() string { return r.Kind.String() + ":" + r.ID }

// EdgeKind is the relationship kind an edge represents. It also selects the
// adjacency bucket the edge is stored in.
type EdgeKind uint8

const (
	Relationship EdgeKind = iota
	Generalization
	ProfileOfRelationship
	ProfileOfClass

	numEdgeKinds
)

// EdgeKinds lists all edge kinds.
var EdgeKinds = []EdgeKind{Relationship, Generalization, ProfileOfRelationship, ProfileOfClass}

var edgeKindNames = [numEdgeKinds]string{
	"relationship", "generalization", "profile-of-relationship", "profile-of-class",
}

func (k EdgeKind) String() string {
	if k < numEdgeKinds {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("EdgeKind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKind) UnmarshalText(text []byte) error {
	i := slices.Index(edgeKindNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown edge kind %q", text)
	}
	*k = EdgeKind(i)
	return nil
}

// Direction selects outgoing or incoming adjacency.
type Direction uint8

const (
	Out Direction = iota
	In
)

// adjacency is the per-endpoint edge index, keyed by (direction, kind).
type adjacency [2][numEdgeKinds][]string

func (a *adjacency) add(dir Direction, kind EdgeKind, edgeID string) {
	a[dir][kind] = append(a[dir][kind], edgeID)
}

func (a *adjacency) remove(dir Direction, kind EdgeKind, edgeID string) {
	a[dir][kind] = slices.DeleteFunc(a[dir][kind], func(id string) bool { return id == edgeID })
}

// edges returns the ids in one bucket.
func (a *adjacency) edges(dir Direction, kind EdgeKind) []string {
	return a[dir][kind]
}

// all returns the ids of every bucket in one direction, in kind order.
func (a *adjacency) all(dir Direction) []string {
	var out []string
	for k := range numEdgeKinds {
		out = append(out, a[dir][k]...)
	}
	return out
}

func (a *adjacency) degree() int {
	n := 0
	for d := range a {
		for k := range a[d] {
			n += len(a[d][k])
		}
	}
	return n
}
