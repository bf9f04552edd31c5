package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/pipeline"
)

// layoutFlags are the geometry flags shared by layout, render and browse.
type layoutFlags struct {
	nodeWidth  float64
	nodeHeight float64
	nodeSep    float64
	rankSep    float64
	strict     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "node width (default from config, 200)")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "node height (default from config, 90)")
	cmd.Flags().Float64Var(&f.nodeSep, "node-sep", 0, "horizontal gap between nodes in a rank (default 25)")
	cmd.Flags().Float64Var(&f.rankSep, "rank-sep", 0, "vertical gap between ranks (default 80)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on invalid trees instead of skipping members")
}

// apply overrides the configured geometry with flags that were set.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("node-width", &opts.Layout.NodeWidth, f.nodeWidth)
	set("node-height", &opts.Layout.NodeHeight, f.nodeHeight)
	set("node-sep", &opts.Layout.NodeSep, f.nodeSep)
	set("rank-sep", &opts.Layout.RankSep, f.rankSep)
	if cmd.Flags().Changed("strict") {
		opts.Layout.Strict = f.strict
	}
}

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute positioned nodes and edges for a placement tree",
		Long: `Compute the layout of a placement tree.

The input is a tree response saved by 'fetch'; without an argument the tree is
fetched from the API. The output is a layout.json file (same format as
'render -f json') with one positioned node per member, plus the parent
reference one rank above the root when present.

Layouts are never cached: the same tree always produces the same layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			return c.runLayout(cmd, firstArg(args), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string) error {
	ctx := cmd.Context()
	l, err := c.computeLayout(ctx, input, opts)
	if err != nil {
		return err
	}

	if output == "" {
		data, err := graph.MarshalLayout(l)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return err
	}
	printSuccess("Layout computed")
	printStats(l.Stats.Members, len(l.Nodes), len(l.Edges), false)
	printFile(output)
	return nil
}

// computeLayout loads the tree and lays it out, warning about members left
// out of the result.
func (c *CLI) computeLayout(ctx context.Context, input string, opts pipeline.Options) (graph.Layout, error) {
	resp, err := c.loadTree(ctx, input)
	if err != nil {
		return graph.Layout{}, err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(loggerFromContext(ctx))
	l, err := runner.Layout(ctx, resp, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	prog.done(fmt.Sprintf("Laid out %d members", l.Stats.Members))

	if n := len(l.Stats.Skipped); n > 0 {
		printWarning("%d member(s) skipped: %v", n, l.Stats.Skipped)
	}
	if l.Stats.ParentDropped {
		printWarning("Parent reference dropped")
	}
	return l, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
