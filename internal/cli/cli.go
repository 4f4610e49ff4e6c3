// Package cli implements the claimgraph command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/pkg/buildinfo"
	"github.com/matzehuels/claimgraph/pkg/cache"
	"github.com/matzehuels/claimgraph/pkg/config"
	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/fetch"
	graphio "github.com/matzehuels/claimgraph/pkg/io"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/pipeline"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "claimgraph"

	// retryDelay is the first backoff step between API attempts.
	retryDelay = 500 * time.Millisecond

	engineGraphviz = "graphviz"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag; empty means [config.DefaultPath].
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug also reports callers.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Claimgraph explores claim graphs interactively",
		Long: `Claimgraph loads the graph of claims around an entity from a claim API and
lets you grow it one page of neighbours at a time, in the terminal, in a
browser through the HTTP server, or as rendered DOT and SVG files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			c.SetLogLevel(cfg.LogLevel())
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// sourceOpts selects where graphs come from.
type sourceOpts struct {
	input   string // saved graph file; bypasses the API
	noCache bool
}

// newSource builds the graph source. The returned close function releases
// the cache and is never nil.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config, opts sourceOpts) (fetch.Source, func(), error) {
	if opts.input != "" {
		c.Logger.Debug("reading graph from file", "path", opts.input)
		return graphio.NewFileSource(opts.input), func() {}, nil
	}

	cc := c.newCache(ctx, cfg, opts.noCache)
	client, err := fetch.NewClient(cfg.API.BaseURL,
		fetch.WithTimeout(cfg.API.Timeout),
		fetch.WithToken(cfg.API.Token),
		fetch.WithRetry(cfg.API.Retries, retryDelay),
		fetch.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		fetch.WithCache(cc, cfg.Cache.TTL),
		fetch.WithLogger(c.Logger),
	)
	if err != nil {
		cc.Close()
		return nil, nil, err
	}
	return client, func() { cc.Close() }, nil
}

// newCache opens the configured backend, falling back to no caching when
// it is unavailable.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// strategies returns a StrategyFunc honouring the layout section. Concentric
// and force layouts are placed by Graphviz when layout.engine asks for it.
func strategies(cfg *config.Config) func(layout.Kind) (layout.Strategy, error) {
	return func(kind layout.Kind) (layout.Strategy, error) {
		opts := cfg.LayoutOptions()
		if cfg.Layout.Engine == engineGraphviz && kind != layout.KindHierarchical {
			opts.Engine = nodelink.NewGraphviz(nodelink.ProgramFor(kind))
		}
		return layout.New(kind, opts)
	}
}

// exploreOptions converts the explore section.
func exploreOptions(cfg *config.Config) explore.Options {
	opts := explore.DefaultOptions()
	opts.Limits = explore.Limits{
		MaxNodes:           cfg.Explore.MaxNodes,
		MaxNewPerExpansion: cfg.Explore.MaxNewPerExpansion,
		MaxInitialNodes:    cfg.Explore.MaxInitialNodes,
	}
	opts.PageSize = cfg.API.PageSize
	opts.Concurrency = cfg.Explore.Concurrency
	opts.MergePolicy = cfg.MergePolicy()
	return opts
}

// newRunner builds a pipeline runner over src with the configured theme,
// limits and layouts.
func (c *CLI) newRunner(cfg *config.Config, src fetch.Source) (*pipeline.Runner, error) {
	resolver, err := style.NewResolver(cfg.Theme())
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(src, c.Logger)
	r.Explore = exploreOptions(cfg)
	r.Strategies = strategies(cfg)
	r.Resolver = resolver
	return r, nil
}
