package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/pkg/graph"
)

// metricsCommand creates the metrics command.
func (c *CLI) metricsCommand() *cobra.Command {
	var (
		flags  optionFlags
		solved bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "metrics [request.json]",
		Short: "Score the layout of a request's diagram",
		Long: `Score the layout of a request's diagram.

Reports edge crossings, edge-node collisions, the bounding area and the share
of orthogonal edge segments, each as an absolute value and a relative score
in [0,1] where 1 is best.

By default the diagram is scored as it is. With --solved the layout is
computed first and the result is scored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetrics(cmd.Context(), cmd, args[0], &flags, solved, asJSON)
		},
	}

	cmd.Flags().BoolVar(&solved, "solved", false, "run the solver and score its result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runMetrics(ctx context.Context, cmd *cobra.Command, input string, flags *optionFlags, solved, asJSON bool) error {
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
	var mg *graph.MainGraph
	if solved {
		res, err := runner.Execute(ctx, l.ex, d, l.opts)
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		mg = res.Graph
	} else {
		mg, _, err = runner.Build(ctx, l.ex, d, l.opts)
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
	}
	report, cached, err := runner.Evaluate(ctx, mg.Snapshot())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	title := "Current layout"
	if solved {
		title = "Solved layout (" + l.opts.Solver + ")"
	}
	fmt.Fprintln(stdout, StyleTitle.Render(title))
	printMetrics(report)
	if cached {
		printDetail(iconCached)
	}
	return nil
}
