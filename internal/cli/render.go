package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file (single format), base path (several), or "-" for stdout
	formats    string // comma-separated output formats
	layoutFile string // render a saved layout instead of a tree
	noCache    bool
	layout     layoutFlags
}

// renderCommand creates the render command for generating outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro   renderOpts
		opts pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a placement tree to SVG, DOT, PNG, PDF, JSON or text",
		Long: `Render a placement tree.

The input is a tree response saved by 'fetch'; without an argument the tree is
fetched from the API. Use --layout to render a layout.json written by
'layout' instead.

Formats: svg (default), json, dot, png, pdf, txt. PNG and PDF need
rsvg-convert on PATH. The "cards" renderer draws member cards at the computed
positions; "nodelink" hands the pinned layout to Graphviz.

Rendered artifacts are cached by layout hash and options.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			base := c.pipelineOptions()
			if cmd.Flags().Changed("format") {
				base.Formats = pipeline.ParseFormats(ro.formats)
			}
			overrideString(cmd, "renderer", &base.Renderer, opts.Renderer)
			overrideString(cmd, "title", &base.Title, opts.Title)
			if cmd.Flags().Changed("hide-packages") {
				base.HidePackages = opts.HidePackages
			}
			if cmd.Flags().Changed("scale") {
				base.Scale = opts.Scale
			}
			base.Highlight = opts.Highlight
			base.Detailed = opts.Detailed
			base.Refresh = opts.Refresh
			ro.layout.apply(cmd, &base)
			opts = base
			return opts.ValidateAndSetDefaults()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ro.output == "-" && len(opts.Formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format, got %d", len(opts.Formats))
			}
			return c.runRender(cmd, firstArg(args), &ro, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (several); - for stdout")
	f.StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf, txt (comma-separated)")
	f.StringVar(&ro.layoutFile, "layout", "", "render a saved layout.json instead of a tree")
	f.BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached")
	f.StringVar(&opts.Renderer, "renderer", "", "renderer: cards (default), nodelink")
	f.StringVar(&opts.Title, "title", "", "title drawn above the tree")
	f.BoolVar(&opts.HidePackages, "hide-packages", false, "omit package values")
	f.StringSliceVar(&opts.Highlight, "highlight", nil, "member ids to highlight (comma-separated)")
	f.Float64Var(&opts.Scale, "scale", 0, "PNG scale factor (default 2)")
	f.BoolVar(&opts.Detailed, "detailed", false, "include ids and counts in nodelink labels")
	ro.layout.register(cmd)

	return cmd
}

// runRender loads or computes the layout, renders every requested format and
// writes the outputs.
func (c *CLI) runRender(cmd *cobra.Command, input string, ro *renderOpts, opts pipeline.Options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	l, err := c.renderInput(ctx, input, ro.layoutFile, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := spin(ctx, "Rendering "+strings.Join(opts.Formats, ", "), "",
		func(ctx context.Context) (renderResult, error) {
			a, i, err := runner.RenderWithCacheInfo(ctx, l, opts)
			return renderResult{artifacts: a, info: i}, err
		})
	if err != nil {
		return err
	}
	logger.Debug("rendered", "formats", opts.Formats, "cache_hits", res.info.Hits)

	if ro.output == "-" {
		_, err := cmd.OutOrStdout().Write(res.artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(ro.output, input, ro.layoutFile, opts.Formats)
	formats := make([]string, 0, len(paths))
	for format := range paths {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	printSuccess("Rendered %d output(s)", len(formats))
	printStats(l.Stats.Members, len(l.Nodes), len(l.Edges), res.info.RenderHit)
	for _, format := range formats {
		path := paths[format]
		if err := writeOutput(path, res.artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

type renderResult struct {
	artifacts map[string][]byte
	info      pipeline.CacheInfo
}

// renderInput returns the layout to render: a saved layout file, or the
// layout of the input tree.
func (c *CLI) renderInput(ctx context.Context, input, layoutFile string, opts pipeline.Options) (graph.Layout, error) {
	if layoutFile == "" {
		return c.computeLayout(ctx, input, opts)
	}
	if input != "" {
		return graph.Layout{}, errors.New(errors.ErrCodeInvalidInput, "pass either a tree file or --layout, not both")
	}
	l, err := graph.ReadLayoutFile(layoutFile)
	if err != nil {
		return graph.Layout{}, err
	}
	loggerFromContext(ctx).Info("loaded layout", "file", layoutFile, "nodes", len(l.Nodes))
	return l, nil
}

// outputPaths maps each format to the file it is written to.
//
// A single format with an explicit output path is written there verbatim.
// Otherwise files are named <base>.<format>, where the base is the output
// path without a format extension, or the input file name without its
// extension, or "teamtree". Derived JSON names get a .layout suffix.
func outputPaths(output, input, layoutFile string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, firstNonEmpty(input, layoutFile))
	for _, f := range formats {
		if f == pipeline.FormatJSON && output == "" {
			// Never overwrite the tree.json the layout was read from.
			paths[f] = base + ".layout.json"
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultOutputBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func overrideString(cmd *cobra.Command, flag string, dst *string, v string) {
	if cmd.Flags().Changed(flag) {
		*dst = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
