// Package graphviz provides a layout solver backed by Graphviz.
//
// The snapshot is rendered to DOT with nodes at their fixed sizes and
// subgraphs as clusters, laid out by the configured engine, and read back
// from Graphviz's "plain" output. Graphviz positions are translated so the
// first anchored node lands on its diagram position; anchored nodes are
// also pinned with pos="x,y!" for the neato and fdp engines.
//
// Parameters:
//
//	engine   dot (default), neato, fdp, sfdp, circo, twopi, osage
//	rankdir  TB (default), LR, BT, RL; only used by dot
package graphviz

import (
	"bytes"
	"context"
	"slices"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/geo"
	"github.com/matzehuels/ontolayout/pkg/graph"
	"github.com/matzehuels/ontolayout/pkg/solver"
)

// Name is the registry name of the Graphviz solver.
const Name = "graphviz"

// Engines lists the supported Graphviz layout engines.
var Engines = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi", "osage"}

var rankdirs = []string{"TB", "LR", "BT", "RL"}

// Solver lays out graphs with Graphviz.
type Solver struct{}

// New returns a Graphviz solver.
func New() Solver { return Solver{} }

// Name implements solver.Solver.
func (Solver) Name() string { return Name }

// Solve implements solver.Solver.
func (s Solver) Solve(ctx context.Context, req solver.Request) (solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return solver.Result{}, err
	}
	engine := req.Config.String("engine", "dot")
	if !slices.Contains(Engines, engine) {
		return solver.Result{}, errors.New(errors.ErrCodeInvalidConfig, "unknown graphviz engine %q (must be one of %v)", engine, Engines)
	}
	rankdir := req.Config.String("rankdir", "TB")
	if !slices.Contains(rankdirs, rankdir) {
		return solver.Result{}, errors.New(errors.ErrCodeInvalidConfig, "unknown rankdir %q (must be one of %v)", rankdir, rankdirs)
	}

	snap := req.Graph
	snap.Nodes = slices.Clone(req.Graph.Nodes)
	for i, n := range snap.Nodes {
		snap.Nodes[i].Geometry.Width, snap.Nodes[i].Geometry.Height = solver.Size(n, req.Dimensions)
	}
	doc := toDOT(&snap, rankdir)

	plain, err := render(ctx, doc.dot, engine)
	if err != nil {
		return solver.Result{}, solver.Failed(Name, err)
	}
	layout, err := parsePlain(plain)
	if err != nil {
		return solver.Result{}, solver.Failed(Name, err)
	}

	offset := anchorOffset(doc, layout, snap)
	res := solver.Result{
		Positions:  make(map[string]geo.Rect, len(layout.Nodes)),
		BendPoints: make(map[string][]r2.Vec),
	}
	for _, n := range snap.Nodes {
		if n.Anchored {
			continue
		}
		r, ok := layout.Nodes[doc.names[n.ID]]
		if !ok {
			continue
		}
		res.Positions[n.ID] = r.MoveTo(r.X+offset.X, r.Y+offset.Y)
	}

	pending := make(map[[2]string][]string, len(doc.edges))
	for k, ids := range doc.edges {
		pending[k] = slices.Clone(ids)
	}
	for _, e := range layout.Edges {
		key := [2]string{e.Tail, e.Head}
		ids := pending[key]
		if len(ids) == 0 || len(e.Points) < 3 {
			continue
		}
		pts := make([]r2.Vec, 0, len(e.Points)-2)
		for _, p := range e.Points[1 : len(e.Points)-1] {
			pts = append(pts, r2.Add(p, offset))
		}
		res.BendPoints[ids[0]] = pts
		pending[key] = ids[1:]
	}
	return res, nil
}

func render(ctx context.Context, dot []byte, engine string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	gv.SetLayout(graphviz.Layout(engine))
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// anchorOffset is the translation that moves the first anchored node from
// its Graphviz position back to its diagram position.
func anchorOffset(doc document, layout plainLayout, snap graph.Snapshot) r2.Vec {
	for _, n := range snap.Nodes {
		if !n.Anchored {
			continue
		}
		if r, ok := layout.Nodes[doc.names[n.ID]]; ok {
			return r2.Sub(n.Geometry.Center(), r.Center())
		}
	}
	return r2.Vec{}
}
