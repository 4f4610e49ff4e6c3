package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/style"
)

type exploreFlags struct {
	kind      string
	layout    string
	direction string
	input     string
	noCache   bool
}

// exploreCommand creates the explore command, an interactive terminal view.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags exploreFlags

	cmd := &cobra.Command{
		Use:   "explore [root]",
		Short: "Explore a claim graph interactively",
		Long: `Explore a claim graph interactively in the terminal.

Nodes are listed with their expansion state. Select a node to see its
details, press x to load the next page of its neighbours, esc to step back.`,
		Example: `  claimgraph explore https://example.com/people/alice
  claimgraph explore --kind claim 42
  claimgraph explore --input saved.graph.json 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), rootArg(args), flags)
		},
	}

	cmd.Flags().StringVar(&flags.kind, "kind", "", "root kind: uri (default), claim")
	cmd.Flags().StringVarP(&flags.layout, "layout", "l", "", "layout used for scenes (default: layout.default)")
	cmd.Flags().StringVar(&flags.direction, "direction", "", "hierarchical direction: TB, LR (default: layout.direction)")
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "read a saved graph file instead of the API")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, root string, flags exploreFlags) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	opts, err := c.viewOptions(flags)
	if err != nil {
		return err
	}

	src, closeSrc, err := c.newSource(ctx, cfg, sourceOpts{input: flags.input, noCache: flags.noCache})
	if err != nil {
		return err
	}
	defer closeSrc()

	spinner := newSpinnerWithContext(ctx, "Loading "+describeRoot(root, flags.input)+"...")
	spinner.Start()
	view, err := explore.Open(ctx, src, root, opts)
	if err != nil {
		spinner.StopWithError(explore.MsgLoadFailed)
		return err
	}
	spinner.Stop()
	defer view.Close()

	updates, cancel := view.Subscribe()
	defer cancel()

	model := NewExploreModel(ctx, "Explore "+describeRoot(root, flags.input), view, updates)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explore: %w", err)
	}

	if m, ok := final.(ExploreModel); ok {
		printSuccess("Explored %s", describeRoot(root, flags.input))
		printStats(len(m.Nodes), m.Edges, m.expandedCount())
	}
	return nil
}

// viewOptions builds the view configuration from flags and config. The
// view logs nowhere while the terminal belongs to the TUI, except at debug
// level.
func (c *CLI) viewOptions(flags exploreFlags) (explore.ViewOptions, error) {
	cfg, err := c.config()
	if err != nil {
		return explore.ViewOptions{}, err
	}

	eopts := exploreOptions(cfg)
	if eopts.Kind, err = explore.ParseRootKind(flags.kind); err != nil {
		return explore.ViewOptions{}, err
	}
	eopts.Logger = log.New(io.Discard)
	if c.Logger.GetLevel() <= log.DebugLevel {
		eopts.Logger = c.Logger
	}

	name := flags.layout
	if name == "" {
		name = cfg.Layout.Default
	}
	kind, err := layout.Parse(name)
	if err != nil {
		return explore.ViewOptions{}, err
	}
	strategy, err := strategies(cfg)(kind)
	if err != nil {
		return explore.ViewOptions{}, err
	}

	dir := flags.direction
	if dir == "" {
		dir = cfg.Layout.Direction
	}
	direction, err := layout.ParseDirection(dir)
	if err != nil {
		return explore.ViewOptions{}, err
	}

	resolver, err := style.NewResolver(cfg.Theme())
	if err != nil {
		return explore.ViewOptions{}, err
	}

	return explore.ViewOptions{
		Options:   eopts,
		Layout:    strategy,
		Direction: direction,
		Resolver:  resolver,
	}, nil
}
