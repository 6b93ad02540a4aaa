// Package solver defines the contract between the layout pipeline and
// geometric layout solvers.
//
// A [Solver] receives an immutable [graph.Snapshot] and returns geometry for
// the nodes and subgraphs it placed. It is a black box: it may be slow, may
// call out to another process, and may fail. Solvers must not place
// anchored endpoints; the graph ignores such positions anyway.
//
// Solvers are looked up by name in a [Registry]. This package provides
// [Identity] (keeps every position) and [Grid] (packs unanchored endpoints
// into a grid); package solver/graphviz adds a Graphviz-backed solver.
package solver

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/geo"
	"github.com/matzehuels/ontolayout/pkg/graph"
)

// Result is a solver's output.
type Result = graph.Solution

// Request is one solver invocation.
type Request struct {
	Graph      graph.Snapshot
	Models     []string // Ids of the semantic models the graph was built from
	Config     Params
	Dimensions graph.DimensionProvider // Sizes for nodes that have none; nil uses graph.DefaultEstimator
	Anchors    anchor.Explicit
}

// Solver computes a layout.
type Solver interface {
	Name() string
	Solve(ctx context.Context, req Request) (Result, error)
}

// Func adapts a function to the Solver interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, req Request) (Result, error)
}

// Name implements Solver.
func (f Func) Name() string { return f.ID }

// Solve implements Solver.
func (f Func) Solve(ctx context.Context, req Request) (Result, error) { return f.Fn(ctx, req) }

// Registry maps solver names to solvers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	solvers map[string]Solver
}

// NewRegistry creates a registry holding solvers.
func NewRegistry(solvers ...Solver) *Registry {
	r := &Registry{solvers: make(map[string]Solver)}
	for _, s := range solvers {
		r.Register(s)
	}
	return r
}

// Default returns a registry with the built-in solvers.
func Default() *Registry { return NewRegistry(Identity{}, Grid{}) }

// Register adds or replaces a solver.
func (r *Registry) Register(s Solver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solvers[s.Name()] = s
}

// Get returns the solver registered under name.
func (r *Registry) Get(name string) (Solver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.solvers[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeSolverNotFound, "unknown solver %q (available: %v)", name, r.namesLocked())
	}
	return s, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.solvers))
	for n := range r.solvers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Params are solver-specific settings. Their schema belongs to the solver.
type Params map[string]any

// Float returns the numeric parameter key, or def when it is absent or not
// a number.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns the integer parameter key, or def.
func (p Params) Int(key string, def int) int {
	return int(p.Float(key, float64(def)))
}

// String returns the string parameter key, or def.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Failed wraps a solver error with SOLVER_FAILED.
func Failed(name string, err error) error {
	return errors.Wrap(errors.ErrCodeSolverFailed, err, "solver %s", name)
}

// Identity keeps every position. It is the no-op fallback layout.
type Identity struct{}

// Name implements Solver.
func (Identity) Name() string { return "identity" }

// Solve implements Solver.
func (Identity) Solve(ctx context.Context, _ Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Positions: map[string]geo.Rect{}}, nil
}

// Size returns a node's current size, asking dims when it has none.
func Size(n graph.NodeView, dims graph.DimensionProvider) (w, h float64) {
	w, h = n.Geometry.Width, n.Geometry.Height
	if w > 0 && h > 0 {
		return w, h
	}
	dw, dh := graph.Dimensions(dims, &graph.Node{ID: n.ID, Semantic: n.Semantic, Label: n.Label})
	if w <= 0 {
		w = dw
	}
	if h <= 0 {
		h = dh
	}
	return w, h
}
