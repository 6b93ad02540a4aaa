package graphviz

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/ontolayout/pkg/graph"
)

// pointsPerInch converts between diagram units and Graphviz inches.
const pointsPerInch = 72.0

// document is a snapshot rendered to DOT along with the generated Graphviz
// names.
type document struct {
	dot   []byte
	names map[string]string      // Node id -> Graphviz name
	edges map[[2]string][]string // (tail, head) names -> edge ids, in DOT order
}

type dotWriter struct {
	buf      bytes.Buffer
	nodes    map[string]graph.NodeView
	subs     map[string]graph.SubgraphView
	clusters map[string]string // subgraph id -> cluster name
	doc      document
}

// toDOT renders the snapshot as a DOT digraph of fixed-size boxes with one
// cluster per subgraph. Anchored nodes carry pos="x,y!", which neato and fdp
// honor.
func toDOT(snap *graph.Snapshot, rankdir string) document {
	w := &dotWriter{
		nodes:    make(map[string]graph.NodeView, len(snap.Nodes)),
		subs:     make(map[string]graph.SubgraphView, len(snap.Subgraphs)),
		clusters: make(map[string]string, len(snap.Subgraphs)),
		doc: document{
			names: make(map[string]string, len(snap.Nodes)),
			edges: make(map[[2]string][]string),
		},
	}
	for i, n := range snap.Nodes {
		w.nodes[n.ID] = n
		name := "n" + strconv.Itoa(i)
		w.doc.names[n.ID] = name
	}
	for i, g := range snap.Subgraphs {
		w.subs[g.ID] = g
		w.clusters[g.ID] = "cluster_" + strconv.Itoa(i)
	}

	w.buf.WriteString("digraph G {\n")
	w.buf.WriteString("  compound=true;\n")
	fmt.Fprintf(&w.buf, "  rankdir=%s;\n", rankdir)
	w.buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	w.buf.WriteString("\n")
	for _, r := range snap.Top {
		w.writeRef(r, "  ")
	}
	w.buf.WriteString("\n")
	for _, e := range snap.LayoutEdges() {
		w.writeEdge(e)
	}
	w.buf.WriteString("}\n")
	w.doc.dot = w.buf.Bytes()
	return w.doc
}

func (w *dotWriter) writeRef(r graph.Ref, indent string) {
	if !r.IsSubgraph() {
		w.writeNode(w.nodes[r.ID], indent)
		return
	}
	g := w.subs[r.ID]
	fmt.Fprintf(&w.buf, "%ssubgraph %s {\n", indent, w.clusters[g.ID])
	for _, m := range g.Members {
		w.writeRef(m, indent+"  ")
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

func (w *dotWriter) writeNode(n graph.NodeView, indent string) {
	fmt.Fprintf(&w.buf, "%s%s [width=%s, height=%s", indent, w.doc.names[n.ID],
		inches(n.Geometry.Width), inches(n.Geometry.Height))
	if n.Anchored {
		c := n.Geometry.Center()
		// Graphviz's y axis points up.
		fmt.Fprintf(&w.buf, ", pos=\"%s,%s!\"", inches(c.X), inches(-c.Y))
	}
	w.buf.WriteString("];\n")
}

func (w *dotWriter) writeEdge(e graph.EdgeView) {
	tail, ltail, ok := w.endpoint(e.Start)
	if !ok {
		return
	}
	head, lhead, ok := w.endpoint(e.End)
	if !ok {
		return
	}
	fmt.Fprintf(&w.buf, "  %s -> %s", tail, head)
	switch {
	case ltail != "" && lhead != "":
		fmt.Fprintf(&w.buf, " [ltail=%s, lhead=%s]", ltail, lhead)
	case ltail != "":
		fmt.Fprintf(&w.buf, " [ltail=%s]", ltail)
	case lhead != "":
		fmt.Fprintf(&w.buf, " [lhead=%s]", lhead)
	}
	w.buf.WriteString(";\n")
	key := [2]string{tail, head}
	w.doc.edges[key] = append(w.doc.edges[key], e.ID)
}

// endpoint returns the Graphviz node standing for r. A subgraph is
// represented by its first descendant node and clipped to its cluster.
func (w *dotWriter) endpoint(r graph.Ref) (name, cluster string, ok bool) {
	if !r.IsSubgraph() {
		name, ok = w.doc.names[r.ID]
		return name, "", ok
	}
	id, ok := w.firstNode(r.ID)
	if !ok {
		return "", "", false
	}
	return w.doc.names[id], w.clusters[r.ID], true
}

func (w *dotWriter) firstNode(subgraph string) (string, bool) {
	for _, m := range w.subs[subgraph].Members {
		if !m.IsSubgraph() {
			return m.ID, true
		}
		if id, ok := w.firstNode(m.ID); ok {
			return id, true
		}
	}
	return "", false
}

func inches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 4, 64)
}
