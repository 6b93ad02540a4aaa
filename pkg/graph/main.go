package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/geo"
)

// idNamespace seeds the deterministic ids minted for outsiders and
// synthesized edges, so rebuilding the same input yields the same ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ontolayout.dev/graph"))

// MintID returns a deterministic id for the given key parts.
func MintID(parts ...string) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += "\x00"
		}
		key += p
	}
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// MainGraph is the top-level graph of one layout request. It owns all
// nodes, subgraphs and edges; everything else refers to them by id.
//
// The zero value is not usable - use NewMainGraph.
type MainGraph struct {
	root *Graph

	nodes     map[string]*Node
	nodeOrder []string
	subgraphs map[string]*Graph
	subOrder  []string
	edges     map[string]*Edge
	edgeOrder []string

	// top is the solver-facing endpoint list: absorbed members are replaced
	// by their subgraph.
	top []Ref

	semanticNodes map[string][]Ref
	semanticEdges map[string][]string

	generalizationSeq int
	busy              bool
}

// NewMainGraph creates an empty Main Graph whose root has id RootID.
func NewMainGraph() *MainGraph {
	return &MainGraph{
		root:          newGraph(RootID, ""),
		nodes:         make(map[string]*Node),
		subgraphs:     make(map[string]*Graph),
		edges:         make(map[string]*Edge),
		semanticNodes: make(map[string][]Ref),
		semanticEdges: make(map[string][]string),
	}
}

// =============================================================================
// Lookups
// =============================================================================

// Root returns the root graph.
func (mg *MainGraph) Root() *Graph { return mg.root }

// Node returns the node with the given id.
func (mg *MainGraph) Node(id string) (*Node, bool) {
	n, ok := mg.nodes[id]
	return n, ok
}

// Subgraph returns the graph with the given id. RootID returns the root.
func (mg *MainGraph) Subgraph(id string) (*Graph, bool) {
	if id == RootID {
		return mg.root, true
	}
	g, ok := mg.subgraphs[id]
	return g, ok
}

// Edge returns the edge with the given id.
func (mg *MainGraph) Edge(id string) (*Edge, bool) {
	e, ok := mg.edges[id]
	return e, ok
}

// Lookup resolves an id in the flat node index (nodes and subgraphs).
func (mg *MainGraph) Lookup(id string) (Ref, bool) {
	if _, ok := mg.nodes[id]; ok {
		return NodeRef(id), true
	}
	if _, ok := mg.subgraphs[id]; ok {
		return SubgraphRef(id), true
	}
	return Ref{}, false
}

// Nodes returns every node ever created, in creation order.
func (mg *MainGraph) Nodes() []*Node {
	return lo.Map(mg.nodeOrder, func(id string, _ int) *Node { return mg.nodes[id] })
}

// Subgraphs returns every subgraph ever created, in creation order.
// The root is not included.
func (mg *MainGraph) Subgraphs() []*Graph {
	return lo.Map(mg.subOrder, func(id string, _ int) *Graph { return mg.subgraphs[id] })
}

// Edges returns every live edge in creation order. Edges replaced by a
// boundary split are not included.
func (mg *MainGraph) Edges() []*Edge {
	return lo.Map(mg.edgeOrder, func(id string, _ int) *Edge { return mg.edges[id] })
}

// AllNodes returns the solver-facing endpoint list: every node and
// subgraph whose immediate parent is the root. Creating a subgraph of k
// root members therefore shrinks the list by k-1.
func (mg *MainGraph) AllNodes() []Ref { return slices.Clone(mg.top) }

// NodesFor returns the endpoints representing a semantic entity.
func (mg *MainGraph) NodesFor(semantic string) []Ref {
	return slices.Clone(mg.semanticNodes[semantic])
}

// EdgesFor returns the live edges representing a semantic entity.
func (mg *MainGraph) EdgesFor(semantic string) []*Edge {
	return lo.Map(mg.semanticEdges[semantic], func(id string, _ int) *Edge { return mg.edges[id] })
}

// Busy reports whether a solve is outstanding.
func (mg *MainGraph) Busy() bool { return mg.busy }

// Geometry returns the geometry of a node or subgraph.
func (mg *MainGraph) Geometry(r Ref) (geo.Rect, bool) {
	if r.IsSubgraph() {
		g, ok := mg.Subgraph(r.ID)
		if !ok {
			return geo.Rect{}, false
		}
		return g.Geometry, true
	}
	n, ok := mg.nodes[r.ID]
	if !ok {
		return geo.Rect{}, false
	}
	return n.Geometry, true
}

func (mg *MainGraph) adjacencyOf(r Ref) *adjacency {
	if r.IsSubgraph() {
		if g, ok := mg.Subgraph(r.ID); ok {
			return &g.adj
		}
		return nil
	}
	if n, ok := mg.nodes[r.ID]; ok {
		return &n.adj
	}
	return nil
}

func (mg *MainGraph) parentOf(r Ref) string {
	if r.IsSubgraph() {
		if g, ok := mg.subgraphs[r.ID]; ok {
			return g.Parent
		}
		return ""
	}
	if n, ok := mg.nodes[r.ID]; ok {
		return n.Parent
	}
	return ""
}

func (mg *MainGraph) setParent(r Ref, parent string) {
	if r.IsSubgraph() {
		mg.subgraphs[r.ID].Parent = parent
		return
	}
	mg.nodes[r.ID].Parent = parent
}

func (mg *MainGraph) idTaken(id string) bool {
	if id == RootID {
		return true
	}
	_, n := mg.nodes[id]
	_, s := mg.subgraphs[id]
	return n || s
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode adds n as a member of the root graph.
// The node's Parent is set and its current geometry is remembered as the
// original for ResetForNewLayout.
func (mg *MainGraph) AddNode(n *Node) error {
	if mg.busy {
		return ErrGraphBusy
	}
	if n.ID == "" {
		return fmt.Errorf("%w: empty node id", ErrDuplicateID)
	}
	if mg.idTaken(n.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	n.Parent = RootID
	n.original = n.Geometry
	n.adj = adjacency{}
	mg.nodes[n.ID] = n
	mg.nodeOrder = append(mg.nodeOrder, n.ID)
	mg.root.members[n.ID] = n.Ref()
	mg.top = append(mg.top, n.Ref())
	if n.Semantic != "" {
		mg.semanticNodes[n.Semantic] = append(mg.semanticNodes[n.Semantic], n.Ref())
	}
	return nil
}

// =============================================================================
// Edges
// =============================================================================

// EdgeSpec describes an edge to create.
type EdgeSpec struct {
	ID       string // Explicit id (optional)
	Visual   string // Id of the pre-existing diagram entity (optional)
	Semantic string // Represented semantic entity id
	Model    string // Owning semantic model id
	Start    string // Start endpoint id in the flat node index
	End      string // End endpoint id in the flat node index
	Kind     EdgeKind

	IsDummy    bool
	IsOutsider bool
	BendPoints []r2.Vec
}

// AddEdge creates an edge between two endpoints of the flat node index.
//
// If either endpoint is missing the edge is not created and the returned
// error wraps ErrUnknownSourceNode or ErrUnknownTargetNode; nothing is
// modified. The id is spec.ID, else spec.Visual, else a minted id derived
// from the semantic id and endpoints.
func (mg *MainGraph) AddEdge(spec EdgeSpec) (*Edge, error) {
	if mg.busy {
		return nil, ErrGraphBusy
	}
	start, ok := mg.Lookup(spec.Start)
	if !ok {
		return nil, fmt.Errorf("%w: %q (edge %s)", ErrUnknownSourceNode, spec.Start, spec.Semantic)
	}
	end, ok := mg.Lookup(spec.End)
	if !ok {
		return nil, fmt.Errorf("%w: %q (edge %s)", ErrUnknownTargetNode, spec.End, spec.Semantic)
	}

	id := spec.ID
	if id == "" {
		id = spec.Visual
	}
	if id == "" {
		id = MintID(spec.Kind.String(), spec.Semantic, spec.Start, spec.End)
	}
	if _, exists := mg.edges[id]; exists {
		return nil, fmt.Errorf("%w: edge %s", ErrDuplicateID, id)
	}

	e := &Edge{
		ID:                 id,
		Kind:               spec.Kind,
		Start:              start,
		End:                end,
		IsDummy:            spec.IsDummy,
		ConsideredInLayout: true,
		IsOutsider:         spec.IsOutsider,
		Semantic:           spec.Semantic,
		Model:              spec.Model,
		Visual:             spec.Visual,
	}
	e.BendPoints = slices.Clone(spec.BendPoints)
	mg.insertEdge(e)
	return e, nil
}

func (mg *MainGraph) insertEdge(e *Edge) {
	mg.adjacencyOf(e.Start).add(Out, e.Kind, e.ID)
	mg.adjacencyOf(e.End).add(In, e.Kind, e.ID)
	mg.edges[e.ID] = e
	mg.edgeOrder = append(mg.edgeOrder, e.ID)
	if e.Semantic != "" {
		mg.semanticEdges[e.Semantic] = append(mg.semanticEdges[e.Semantic], e.ID)
	}
}

func (mg *MainGraph) removeEdge(e *Edge) {
	mg.adjacencyOf(e.Start).remove(Out, e.Kind, e.ID)
	mg.adjacencyOf(e.End).remove(In, e.Kind, e.ID)
	delete(mg.edges, e.ID)
	mg.edgeOrder = slices.DeleteFunc(mg.edgeOrder, func(id string) bool { return id == e.ID })
	if e.Semantic != "" {
		ids := slices.DeleteFunc(mg.semanticEdges[e.Semantic], func(id string) bool { return id == e.ID })
		if len(ids) == 0 {
			delete(mg.semanticEdges, e.Semantic)
		} else {
			mg.semanticEdges[e.Semantic] = ids
		}
	}
}

// IncidentEdges returns the live edges of an endpoint in one direction.
func (mg *MainGraph) IncidentEdges(r Ref, dir Direction) []*Edge {
	adj := mg.adjacencyOf(r)
	if adj == nil {
		return nil
	}
	return lo.Map(adj.all(dir), func(id string, _ int) *Edge { return mg.edges[id] })
}
