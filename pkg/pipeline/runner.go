package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/cache"
	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/graph"
	"github.com/matzehuels/ontolayout/pkg/metrics"
	"github.com/matzehuels/ontolayout/pkg/model"
	"github.com/matzehuels/ontolayout/pkg/observability"
	"github.com/matzehuels/ontolayout/pkg/solver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, solvers and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options; each run builds its own graph.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Solvers *solver.Registry
	Backoff cache.Backoff // Retries for solver errors marked cache.Retryable
	TTL     time.Duration // Lifetime of cached solutions
	Timeout time.Duration // Limit per solver call; zero means none
	Logger  *log.Logger
}

// SolveInfo describes one solve.
type SolveInfo struct {
	Solver   string
	CacheHit bool
	Applied  graph.ApplyStats
	Duration time.Duration
}

// NewRunner creates a runner with the given cache, keyer and solvers.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If solvers is nil, solver.Default() is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, solvers *solver.Registry, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if solvers == nil {
		solvers = solver.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Solvers: solvers,
		Backoff: cache.DefaultBackoff,
		TTL:     cache.TTLSolution,
		Logger:  logger,
	}
}

// Execute runs the complete build → solve → reconcile pipeline. It does not
// score the layout; callers that want metrics pass res.Graph.Snapshot() to
// Evaluate.
//
// A solver failure is returned as SOLVER_FAILED, and a solver exceeding
// r.Timeout as TIMEOUT, unless opts.FallbackToOriginal is set, in which case
// the result carries the built geometry and Fallback is true. Cancellation
// of ctx itself never falls back.
func (r *Runner) Execute(ctx context.Context, ex *model.Extraction, d diagram.Reader, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	mg, report, err := r.Build(ctx, ex, d, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = mg
	result.Report = report
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(mg.Nodes())
	result.Stats.EdgeCount = len(mg.Edges())
	result.Stats.SubgraphCount = len(mg.Subgraphs())

	// Stage 2: Solve
	info, err := r.Solve(ctx, mg, ex.Models, opts)
	switch {
	case err == nil:
		result.CacheInfo.SolutionHit = info.CacheHit
		result.Stats.Moved = info.Applied.Moved
		result.Stats.Pinned = info.Applied.Pinned
	case opts.FallbackToOriginal && fallbackAllowed(ctx, err):
		r.Logger.Warn("solver failed, keeping original positions", "solver", opts.Solver, "error", err)
		result.Fallback = true
		result.SolverErr = err
	default:
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Stats.SolveTime = info.Duration

	// Stage 3: Reconcile
	reconcileStart := time.Now()
	result.Changes = mg.Convert()
	result.Stats.ReconcileTime = time.Since(reconcileStart)

	created := len(lo.PickBy(result.Changes, func(_ string, c diagram.Converted) bool { return c.IsOutsider }))
	observability.Pipeline().OnReconcile(ctx, len(result.Changes)-created, created)
	r.Logger.Info("reconciled layout",
		"entities", len(result.Changes),
		"created", created,
		"duration", result.Stats.ReconcileTime)

	return result, nil
}

// fallbackAllowed reports whether a solve error may be replaced by the
// unmoved layout.
func fallbackAllowed(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, errors.ErrCodeSolverFailed) || errors.Is(err, errors.ErrCodeTimeout)
}

// Build constructs the Main Graph, then creates the explicit groups and,
// when requested, one subgraph per generalization component of the root.
// Entities that could not be built are logged and returned in the report.
func (r *Runner) Build(ctx context.Context, ex *model.Extraction, d diagram.Reader, opts Options) (*graph.MainGraph, *graph.BuildReport, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, ex.Models)
	mg, report, err := r.build(ctx, ex, d, opts)
	duration := time.Since(start)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, duration, err)
		return nil, nil, err
	}
	observability.Pipeline().OnBuildComplete(ctx, len(mg.Nodes()), len(mg.Edges()), duration, nil)

	for _, w := range report.Warnings {
		r.Logger.Debug("skipped edge", "reason", w)
	}
	for _, e := range report.Errors {
		r.Logger.Warn("skipped entity", "reason", e)
	}
	r.Logger.Info("built graph",
		"nodes", len(mg.Nodes()),
		"outsiders", report.Outsiders,
		"edges", len(mg.Edges()),
		"subgraphs", len(mg.Subgraphs()),
		"duration", duration)
	return mg, report, nil
}

func (r *Runner) build(ctx context.Context, ex *model.Extraction, d diagram.Reader, opts Options) (*graph.MainGraph, *graph.BuildReport, error) {
	mg, report, err := graph.Build(ctx, ex, d, opts.BuildOptions())
	if err != nil {
		return nil, nil, err
	}
	for _, g := range opts.Groups {
		members := resolveMembers(mg, g.Members)
		if _, err := mg.CreateSubgraph(graph.RootID, g.ID, members, false, opts.Split()); err != nil {
			return nil, nil, fmt.Errorf("group %s: %w", g.ID, err)
		}
	}
	if opts.GroupGeneralizations {
		created, err := mg.CreateGeneralizationSubgraphs(graph.RootID, opts.Split())
		if err != nil {
			return nil, nil, fmt.Errorf("group generalizations: %w", err)
		}
		r.Logger.Debug("grouped generalizations", "subgraphs", len(created))
	}
	return mg, report, nil
}

// resolveMembers maps group member ids to graph endpoint ids. Unknown ids
// are taken as semantic ids; members that resolve to nothing are kept so
// subgraph creation reports them.
func resolveMembers(mg *graph.MainGraph, ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := mg.Lookup(id); ok {
			out = append(out, id)
			continue
		}
		refs := mg.NodesFor(id)
		if len(refs) == 0 {
			out = append(out, id)
			continue
		}
		for _, ref := range refs {
			out = append(out, ref.ID)
		}
	}
	return lo.Uniq(out)
}

// Solve lays out mg with the configured solver and applies the result.
//
// The solution is cached under the snapshot hash, the solver name and its
// parameters. On failure the graph is left as built and may be solved again.
func (r *Runner) Solve(ctx context.Context, mg *graph.MainGraph, models []string, opts Options) (SolveInfo, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return SolveInfo{}, err
	}

	info := SolveInfo{Solver: opts.Solver}
	s, err := r.Solvers.Get(opts.Solver)
	if err != nil {
		return info, err
	}
	snap, err := mg.BeginSolve()
	if err != nil {
		return info, err
	}

	start := time.Now()
	observability.Pipeline().OnSolveStart(ctx, s.Name(), len(snap.Nodes))
	sol, hit, err := r.solve(ctx, s, snap, models, opts)
	info.Duration = time.Since(start)
	observability.Pipeline().OnSolveComplete(ctx, s.Name(), info.Duration, err)
	if err != nil {
		_ = mg.AbortSolve()
		return info, err
	}

	info.CacheHit = hit
	info.Applied, err = mg.ApplySolution(sol)
	if err != nil {
		return info, err
	}
	r.Logger.Info("solved layout",
		"solver", s.Name(),
		"cached", hit,
		"moved", info.Applied.Moved,
		"pinned", info.Applied.Pinned,
		"duration", info.Duration)
	if info.Applied.Unknown > 0 {
		r.Logger.Debug("solution referenced unknown ids", "count", info.Applied.Unknown)
	}
	return info, nil
}

func (r *Runner) solve(ctx context.Context, s solver.Solver, snap graph.Snapshot, models []string, opts Options) (graph.Solution, bool, error) {
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return graph.Solution{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash snapshot")
	}
	key := r.Keyer.SolutionKey(hash, opts.SolutionKeyOpts())

	if !opts.Refresh {
		if sol, ok := r.cachedSolution(ctx, key); ok {
			return sol, true, nil
		}
	}

	req := solver.Request{
		Graph:      snap,
		Models:     models,
		Config:     opts.SolverParams,
		Dimensions: opts.Dimensions,
		Anchors:    opts.Anchors(),
	}
	solveCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	var sol solver.Result
	err = r.Backoff.Do(solveCtx, func() error {
		var err error
		sol, err = s.Solve(solveCtx, req)
		return err
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return graph.Solution{}, false, errors.Wrap(errors.ErrCodeTimeout, err, "solver %s", s.Name())
		}
		if stderrors.Is(err, context.Canceled) {
			return graph.Solution{}, false, err
		}
		return graph.Solution{}, false, solver.Failed(s.Name(), err)
	}

	if data, err := json.Marshal(sol); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Debug("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "solution", len(data))
		}
	}
	return sol, false, nil
}

func (r *Runner) cachedSolution(ctx context.Context, key string) (graph.Solution, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "solution")
		return graph.Solution{}, false
	}
	var sol graph.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		// Corrupt entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, "solution")
		return graph.Solution{}, false
	}
	observability.Cache().OnCacheHit(ctx, "solution")
	return sol, true
}

// Evaluate scores a snapshot's layout, caching reports under the snapshot hash.
func (r *Runner) Evaluate(ctx context.Context, snap graph.Snapshot) (metrics.Report, bool, error) {
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return metrics.Report{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash snapshot")
	}
	key := r.Keyer.MetricsKey(hash)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var report metrics.Report
		if err := json.Unmarshal(data, &report); err == nil {
			observability.Cache().OnCacheHit(ctx, "metrics")
			return report, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "metrics")

	report := metrics.Evaluate(&snap)
	if data, err := json.Marshal(report); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLMetrics); err == nil {
			observability.Cache().OnCacheSet(ctx, "metrics", len(data))
		}
	}
	return report, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
