// Package pipeline provides the core layout pipeline for ontolayout.
//
// This package implements the complete build → solve → reconcile pipeline
// used by the CLI and the HTTP API. By centralizing this logic, both entry
// points resolve anchors, group generalizations, cache solver results and
// reconcile positions in exactly the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Construct the Main Graph from model data and the diagram, then
//     create explicit groups and generalization subgraphs
//  2. Solve: Hand a snapshot to the configured solver (or the cache) and
//     apply the returned geometry
//  3. Reconcile: Convert the graph back into diagram changes
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, solver.Default(), logger)
//	opts := pipeline.Options{
//	    AnchorMode:           anchor.MergeWithOriginal,
//	    Solver:               "grid",
//	    GroupGeneralizations: true,
//	}
//	result, err := runner.Execute(ctx, extraction, diagram, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	changes := result.Changes
//
// Run individual stages:
//
//	// Build only
//	mg, report, err := runner.Build(ctx, extraction, diagram, opts)
//
//	// Solve an existing graph
//	info, err := runner.Solve(ctx, mg, models, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/cache"
	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/graph"
	"github.com/matzehuels/ontolayout/pkg/solver"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSolver is the solver used when a request names none.
	DefaultSolver = "grid"

	// DefaultAnchorMode is the anchor override mode used when a request
	// names none.
	DefaultAnchorMode = anchor.DefaultMode
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Group is an explicit subgraph requested by the caller. Members are node
// or subgraph ids; an id that names no endpoint is taken as a semantic id
// and expands to every node representing it.
type Group struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Anchor options
	AnchorMode  anchor.Mode `json:"anchorMode,omitempty"`
	Anchored    []string    `json:"anchored,omitempty"`
	NotAnchored []string    `json:"notAnchored,omitempty"`

	// Build options
	Groups               []Group  `json:"groups,omitempty"`
	GroupGeneralizations bool     `json:"groupGeneralizations,omitempty"`
	SplitBoundaryEdges   *bool    `json:"splitBoundaryEdges,omitempty"` // Default: true
	IncludeOutsiders     []string `json:"includeOutsiders,omitempty"`   // Semantic ids to lay out without a diagram node
	AllOutsiders         bool     `json:"allOutsiders,omitempty"`

	// Solve options
	Solver             string        `json:"solver,omitempty"`
	SolverParams       solver.Params `json:"solverParams,omitempty"`
	FallbackToOriginal bool          `json:"fallbackToOriginal,omitempty"` // Return unmoved geometry when the solver fails
	Refresh            bool          `json:"refresh,omitempty"`            // Bypass the solution cache

	// Runtime options (not serialized)
	Logger     *log.Logger             `json:"-"`
	Dimensions graph.DimensionProvider `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the Main Graph after solving.
	Graph *graph.MainGraph

	// Report lists the entities that were skipped while building.
	Report *graph.BuildReport

	// Changes maps diagram entity ids to their new state.
	Changes map[string]diagram.Converted

	// Fallback is set when the solver failed and FallbackToOriginal kept
	// the built geometry. SolverErr holds the failure.
	Fallback  bool
	SolverErr error

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	SubgraphCount int
	Moved         int // Nodes the solution moved
	Pinned        int // Anchored nodes the solution tried to move
	BuildTime     time.Duration
	SolveTime     time.Duration
	ReconcileTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolutionHit bool // Whether the solver result came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	mode, err := anchor.ParseMode(string(o.AnchorMode))
	if err != nil {
		return err
	}
	o.AnchorMode = mode
	if err := o.validateIdentifiers(); err != nil {
		return err
	}
	if err := o.validateGroups(); err != nil {
		return err
	}
	if o.Solver == "" {
		o.Solver = DefaultSolver
	}
	if o.SplitBoundaryEdges == nil {
		o.SplitBoundaryEdges = lo.ToPtr(true)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateIdentifiers() error {
	for _, ids := range [][]string{o.Anchored, o.NotAnchored, o.IncludeOutsiders} {
		if err := errors.ValidateIdentifiers(ids); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) validateGroups() error {
	seen := make(map[string]bool, len(o.Groups))
	for _, g := range o.Groups {
		if err := errors.ValidateIdentifier(g.ID); err != nil {
			return err
		}
		if seen[g.ID] {
			return errors.New(errors.ErrCodeInvalidSubgraph, "group %q declared twice", g.ID)
		}
		seen[g.ID] = true
		if len(g.Members) == 0 {
			return errors.New(errors.ErrCodeInvalidSubgraph, "group %q has no members", g.ID)
		}
		if err := errors.ValidateIdentifiers(g.Members); err != nil {
			return err
		}
	}
	return nil
}

// Anchors returns the explicit anchor override described by the options.
func (o *Options) Anchors() anchor.Explicit {
	return anchor.New(o.AnchorMode, o.Anchored, o.NotAnchored)
}

// Split reports whether subgraph creation splits boundary edges.
func (o *Options) Split() bool {
	return o.SplitBoundaryEdges == nil || *o.SplitBoundaryEdges
}

// BuildOptions returns the graph construction options.
func (o *Options) BuildOptions() graph.BuildOptions {
	return graph.BuildOptions{
		Anchors:      o.Anchors(),
		Outsiders:    o.IncludeOutsiders,
		AllOutsiders: o.AllOutsiders,
		Dimensions:   o.Dimensions,
		Logger:       o.Logger,
	}
}

// SolutionKeyOpts returns cache key options for solver results.
func (o *Options) SolutionKeyOpts() cache.SolutionKeyOpts {
	return cache.SolutionKeyOpts{
		Solver: o.Solver,
		Params: o.SolverParams,
	}
}
