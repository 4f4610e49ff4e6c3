package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/pipeline"
)

// runFlags are the flags shared by layout and render.
type runFlags struct {
	kind      string
	layout    string
	direction string
	expand    []string
	depth     int
	input     string
	noCache   bool
	output    string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "root kind: uri (default), claim")
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "layout: hierarchical, concentric, force (default: layout.default)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "hierarchical direction: TB, LR (default: layout.direction)")
	cmd.Flags().StringSliceVarP(&f.expand, "expand", "e", nil, "node ids to expand after loading (repeatable)")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, fmt.Sprintf("rounds expanding every collapsed node (max %d)", pipeline.MaxDepth))
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "read a saved graph file instead of the API")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *runFlags) options(root string, formats []string) pipeline.Options {
	return pipeline.Options{
		Root:      root,
		Kind:      f.kind,
		Layout:    f.layout,
		Direction: f.direction,
		Expand:    f.expand,
		Depth:     f.depth,
		Formats:   formats,
	}
}

// renderCommand creates the render command for DOT, SVG and graph output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      runFlags
		formatsStr string
		labels     bool
	)

	cmd := &cobra.Command{
		Use:   "render [root]",
		Short: "Render an exploration to DOT, SVG or JSON",
		Long: `Render an exploration to DOT, SVG or JSON.

The graph rooted at [root] is loaded, optionally grown with --expand and
--depth under the configured limits, laid out and written in each requested
format. Without [root] the API's default graph is used.

Formats:
  svg    diagram rendered by Graphviz (default)
  dot    Graphviz source
  json   laid-out scene with styles
  graph  accumulated graph, re-readable with --input`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := pipeline.ParseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts := flags.options(rootArg(args), formats)
			opts.EdgeLabels = labels
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, graph (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "print relation names on edges")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags runFlags) error {
	res, err := c.execute(ctx, opts, flags)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", describeRoot(opts.Root, flags.input))
	for _, format := range opts.Formats {
		path := outputPath(flags.output, format, len(opts.Formats))
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Expanded)
	printNotices(res.Notices)
	return nil
}

// execute resolves config defaults, builds the source and runs the pipeline
// behind a spinner.
func (c *CLI) execute(ctx context.Context, opts pipeline.Options, flags runFlags) (*pipeline.Result, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if opts.Layout == "" {
		opts.Layout = cfg.Layout.Default
	}
	if opts.Direction == "" {
		opts.Direction = cfg.Layout.Direction
	}
	opts.Logger = c.Logger

	src, closeSrc, err := c.newSource(ctx, cfg, sourceOpts{input: flags.input, noCache: flags.noCache})
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	runner, err := c.newRunner(cfg, src)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Exploring "+describeRoot(opts.Root, flags.input)+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Exploration failed")
		return nil, err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

// outputPath picks the file for format. A single format writes to output
// as given; several formats treat output as a base path.
func outputPath(output, format string, count int) string {
	ext := "." + format
	if format == pipeline.FormatGraph {
		ext = ".graph.json"
	}
	if output == "" {
		return appName + ext
	}
	if count == 1 {
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + ext
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func describeRoot(root, input string) string {
	switch {
	case input != "":
		return input
	case root == "":
		return "default graph"
	default:
		return root
	}
}

func printNotices(notices []explore.Notice) {
	seen := make(map[string]bool)
	for _, n := range notices {
		if seen[n.Message] {
			continue
		}
		seen[n.Message] = true
		if n.Level == explore.LevelError {
			printWarning("%s", n.Message)
		} else {
			printDetail("%s", n.Message)
		}
	}
}
