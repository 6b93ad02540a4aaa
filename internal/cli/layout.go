package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/config"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/io"
	"github.com/matzehuels/ontolayout/pkg/model"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
	"github.com/matzehuels/ontolayout/pkg/solver"
)

// optionFlags are the pipeline options settable on the command line.
// Flags the user set override the request document, which overrides the
// config file.
type optionFlags struct {
	anchorMode   string
	anchored     []string
	notAnchored  []string
	include      []string
	allOutsiders bool
	groupGen     bool
	noSplit      bool
	solver       string
	params       map[string]string
	fallback     bool
	refresh      bool
	noCache      bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.anchorMode, "anchor-mode", "", "anchor override mode: "+modeNames())
	fs.StringSliceVar(&f.anchored, "anchor", nil, "ids to anchor")
	fs.StringSliceVar(&f.notAnchored, "unanchor", nil, "ids to leave free")
	fs.StringSliceVar(&f.include, "include", nil, "semantic ids to lay out without a diagram node")
	fs.BoolVar(&f.allOutsiders, "all-outsiders", false, "lay out every semantic entity missing from the diagram")
	fs.BoolVar(&f.groupGen, "group-generalizations", false, "group generalization hierarchies into subgraphs")
	fs.BoolVar(&f.noSplit, "no-split", false, "keep edges crossing a subgraph boundary unsplit")
	fs.StringVarP(&f.solver, "solver", "s", "", "layout solver: "+strings.Join(newSolvers().Names(), ", "))
	fs.StringToStringVarP(&f.params, "param", "p", nil, "solver parameter key=value (repeatable)")
	fs.BoolVar(&f.fallback, "fallback", false, "keep original positions when the solver fails")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached solutions")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply copies the flags the user set into opts.
func (f *optionFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("anchor-mode") {
		opts.AnchorMode = anchor.Mode(f.anchorMode)
	}
	if changed("anchor") {
		opts.Anchored = f.anchored
	}
	if changed("unanchor") {
		opts.NotAnchored = f.notAnchored
	}
	if changed("include") {
		opts.IncludeOutsiders = f.include
	}
	if changed("no-split") {
		split := !f.noSplit
		opts.SplitBoundaryEdges = &split
	}
	if changed("solver") {
		opts.Solver = f.solver
	}
	if len(f.params) > 0 {
		if opts.SolverParams == nil {
			opts.SolverParams = solver.Params{}
		}
		for k, v := range f.params {
			opts.SolverParams[k] = parseParam(v)
		}
	}
	opts.AllOutsiders = opts.AllOutsiders || f.allOutsiders
	opts.GroupGeneralizations = opts.GroupGeneralizations || f.groupGen
	opts.FallbackToOriginal = opts.FallbackToOriginal || f.fallback
	opts.Refresh = opts.Refresh || f.refresh
}

// parseParam turns numeric flag values into numbers so solvers see the
// same types they get from TOML and JSON.
func parseParam(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func modeNames() string {
	names := make([]string, len(anchor.Modes))
	for i, m := range anchor.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// loaded is a parsed request ready to run.
type loaded struct {
	cfg  config.Config
	req  *io.Request
	ex   *model.Extraction
	opts pipeline.Options
}

// load reads the config and the request, extracts its models and merges
// the options.
func (c *CLI) load(ctx context.Context, cmd *cobra.Command, input string, f *optionFlags) (*loaded, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	req, err := io.ImportRequest(input)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", input, err)
	}
	ex, err := model.Extract(ctx, req.Sources()...)
	if err != nil {
		return nil, fmt.Errorf("extract models: %w", err)
	}
	for _, u := range ex.Unclassified {
		c.Logger.Warn("skipping entity", "id", u.Entity.ID, "model", u.Model, "error", u.Err)
	}
	prog.done(fmt.Sprintf("Loaded %d model(s) with %d entities", len(ex.Models), ex.Len()))

	opts := req.Options
	f.apply(cmd, &opts)
	cfg.ApplyTo(&opts)
	opts.Logger = c.Logger
	return &loaded{cfg: cfg, req: req, ex: ex, opts: opts}, nil
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
		apply  string
		score  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [request.json]",
		Short: "Compute diagram positions for a layout request",
		Long: `Compute diagram positions for a layout request.

The request document holds the semantic models, the current diagram and the
layout options. The command builds the layout graph, runs the solver and
writes a response document with one change per diagram entity. Anchored
entities keep their position.

With --apply the changes are also committed to the request's diagram and the
updated diagram is written to the given file. With --metrics the solved layout
is scored and the report is added to the response.

Solutions are cached, so repeating a layout of an unchanged diagram is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], &flags, output, apply, score)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "response file (default: <input>.response.json)")
	cmd.Flags().StringVar(&apply, "apply", "", "write the updated diagram to this file")
	cmd.Flags().BoolVar(&score, "metrics", false, "score the solved layout and include the report in the response")
	flags.register(cmd)

	return cmd
}

// runLayout runs the pipeline on a request file and writes the response.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input string, flags *optionFlags, output, apply string, score bool) error {
	l, err := c.load(ctx, cmd, input, flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, l.cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d := l.req.Diagram.Memory()
	_, stop := trackPipeline(ctx, "Computing layout...")
	res, err := runner.Execute(ctx, l.ex, d, l.opts)
	stop()
	if err != nil {
		printError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".response.json"
	}
	resp := io.NewResponse(res)
	if score {
		report, _, err := runner.Evaluate(ctx, res.Graph.Snapshot())
		if err != nil {
			return fmt.Errorf("score layout: %w", err)
		}
		resp.Metrics = &report
	}
	if err := io.ExportResponse(resp, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, res.CacheInfo.SolutionHit)
	if resp.Metrics != nil {
		printMetrics(*resp.Metrics)
	}
	if res.Fallback {
		printWarning("Solver failed, original positions kept: %s", errors.UserMessage(res.SolverErr))
	}
	if res.Report != nil {
		for _, err := range res.Report.Errors {
			printDetail("skipped: %v", err)
		}
	}

	if apply != "" {
		stats, err := d.Apply(res.Changes)
		if err != nil {
			return fmt.Errorf("apply changes: %w", err)
		}
		if err := io.ExportDiagram(io.FromMemory(d), apply); err != nil {
			return fmt.Errorf("write diagram %s: %w", apply, err)
		}
		printSuccess("Diagram updated")
		printFile(apply)
		printDetail("%d updated · %d created", stats.Updated, stats.Created)
	}

	printNewline()
	printNextStep("Score the result", "ontolayout metrics --solved "+input)
	return nil
}
