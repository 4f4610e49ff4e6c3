package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/fetch"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
	"github.com/matzehuels/claimgraph/pkg/store"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// StrategyFunc builds the layout strategy for a kind.
type StrategyFunc func(kind layout.Kind) (layout.Strategy, error)

// SVGFunc renders DOT source to SVG.
type SVGFunc func(ctx context.Context, dot string) ([]byte, error)

// Runner executes pipelines against a source.
//
// The Runner holds no per-run state; one Runner may serve concurrent
// Execute calls.
type Runner struct {
	Source     fetch.Source
	Explore    explore.Options
	Strategies StrategyFunc
	Resolver   *style.Resolver
	SVG        SVGFunc
	Logger     *log.Logger
}

// NewRunner returns a runner with the default limits, layouts, theme and
// Graphviz SVG rendering.
func NewRunner(src fetch.Source, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:  src,
		Explore: explore.DefaultOptions(),
		Strategies: func(kind layout.Kind) (layout.Strategy, error) {
			return layout.New(kind, layout.Options{})
		},
		Resolver: style.Default(),
		SVG:      nodelink.RenderSVG,
		Logger:   logger,
	}
}

// Execute runs load → expand → layout → render.
//
// Failed expansions do not fail the run; they are reported as notices and
// logged, and the artifacts reflect whatever was merged. A failed load does
// fail it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	strategy, err := r.Strategies(opts.layout)
	if err != nil {
		return nil, err
	}

	rec := &explore.Recorder{}
	eopts := r.Explore
	eopts.Kind = opts.kind
	eopts.Logger = logger
	eopts.Notifier = rec

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	start := time.Now()
	view, err := explore.Open(ctx, r.Source, opts.Root, explore.ViewOptions{
		Options:   eopts,
		Layout:    strategy,
		Direction: opts.direction,
		Resolver:  r.Resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer view.Close()
	result.Stats.LoadTime = time.Since(start)

	// Stage 2: Expand
	start = time.Now()
	expanded, err := r.expand(ctx, view.Controller(), opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Expanded = expanded
	result.Stats.ExpandTime = time.Since(start)

	// Stage 3: Layout
	start = time.Now()
	scene, err := view.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = scene
	result.Graph = view.Controller().Snapshot()
	result.Stats.NodeCount = len(result.Graph.Nodes)
	result.Stats.EdgeCount = len(result.Graph.Edges)
	result.Stats.LayoutTime = time.Since(start)

	logger.Info("computed layout",
		"layout", scene.Layout,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	start = time.Now()
	for _, format := range opts.Formats {
		data, err := r.render(ctx, format, result, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)
	result.Notices = rec.Notices()

	return result, nil
}

// expand runs the explicit expansions, then Depth rounds over every
// collapsed node. It returns the number of nodes expanded.
func (r *Runner) expand(ctx context.Context, ctrl *explore.Controller, opts Options) (int, error) {
	expanded := 0
	run := func(ids []string) error {
		if len(ids) == 0 {
			return nil
		}
		err := ctrl.ExpandAll(ctx, ids)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			opts.Logger.Warn("some expansions failed", "err", err)
		}
		for _, id := range ids {
			if ctrl.Page(id) > 0 {
				expanded++
			}
		}
		return nil
	}

	if err := run(opts.Expand); err != nil {
		return expanded, err
	}
	for round := 0; round < opts.Depth; round++ {
		before := ctrl.Revision()
		ids := collapsed(ctrl)
		if len(ids) == 0 {
			break
		}
		opts.Logger.Debug("expanding round", "round", round+1, "nodes", len(ids))
		if err := run(ids); err != nil {
			return expanded, err
		}
		if ctrl.Revision() == before {
			break
		}
	}
	return expanded, nil
}

// collapsed returns the ids of nodes that have never been expanded, in
// store order.
func collapsed(ctrl *explore.Controller) []string {
	var ids []string
	ctrl.Read(func(s *store.State) {
		for _, n := range s.Nodes() {
			if s.Page(n.ID) == 0 {
				ids = append(ids, n.ID)
			}
		}
	})
	return ids
}
