package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/claimgraph/internal/server"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// serveCommand creates the serve command for the HTTP and WebSocket API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dev     bool
		input   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve explorations over HTTP and WebSocket",
		Long: `Serve explorations over HTTP and WebSocket.

Each POST /api/views creates an exploration that clients grow with expand
requests or gestures and watch through /api/views/{id}/ws. Views idle for
longer than server.view_ttl are closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, dev, sourceOpts{input: input, noCache: noCache})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVar(&dev, "dev", false, "allow all CORS origins")
	cmd.Flags().StringVarP(&input, "input", "i", "", "serve a saved graph file instead of the API")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, dev bool, so sourceOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	src, closeSrc, err := c.newSource(ctx, cfg, so)
	if err != nil {
		return err
	}
	defer closeSrc()

	resolver, err := style.NewResolver(cfg.Theme())
	if err != nil {
		return err
	}

	scfg := server.Config{
		Addr:            cfg.Server.Addr,
		AllowAllOrigins: cfg.Server.AllowAllOrigins || dev,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ViewTTL:         cfg.Server.ViewTTL,
		MaxViews:        cfg.Server.MaxViews,
	}
	if addr != "" {
		scfg.Addr = addr
	}

	srv := server.New(scfg, src,
		server.WithExploreOptions(exploreOptions(cfg)),
		server.WithStrategies(strategies(cfg)),
		server.WithResolver(resolver),
		server.WithLogger(c.Logger),
	)

	printInfo("Listening on %s", styleCommand.Underline(true).Render("http://"+displayAddr(scfg.Addr)))
	printDetail("API: %s", cfg.API.BaseURL)
	return srv.Start(ctx)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
