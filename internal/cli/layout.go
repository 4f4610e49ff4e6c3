package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/pkg/pipeline"
)

// layoutCommand creates the layout command, which prints node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "layout [root]",
		Short: "Compute node positions for an exploration",
		Long: `Compute node positions for an exploration.

The output is the laid-out scene as JSON: every node with its box and
style, every edge with its style. It is written to stdout unless --output
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), flags.options(rootArg(args), []string{pipeline.FormatJSON}), flags)
		},
	}

	flags.bind(cmd)
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, flags runFlags) error {
	sw := startStopwatch(c.Logger)
	res, err := c.execute(ctx, opts, flags)
	if err != nil {
		return err
	}
	data := res.Artifacts[pipeline.FormatJSON]

	if flags.output == "" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(flags.output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", flags.output, err)
	}
	sw.done("Laid out graph", "nodes", res.Stats.NodeCount, "layout", res.Scene.Layout)
	printFile(flags.output)
	printNextStep("Render", appName+" render "+opts.Root)
	return nil
}
