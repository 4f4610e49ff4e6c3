// Package pipeline runs an exploration non-interactively: load → expand →
// layout → render.
//
// The CLI's layout and render commands use it to produce artifacts from a
// root without a browser. The same [explore.View] the server hands to web
// clients does the work, so limits, merge rules and notices behave the same
// way in both places.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Root:    "https://example.com/alice",
//	    Expand:  []string{"https://example.com/alice"},
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// [explore.View]: github.com/matzehuels/claimgraph/pkg/explore.View
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
)

// Output formats.
const (
	FormatDOT   = "dot"   // Graphviz source
	FormatSVG   = "svg"   // rendered diagram
	FormatJSON  = "json"  // laid-out scene
	FormatGraph = "graph" // accumulated graph in the wire shape
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:   true,
	FormatSVG:   true,
	FormatJSON:  true,
	FormatGraph: true,
}

// MaxDepth bounds Options.Depth.
const MaxDepth = 5

// Options configures one pipeline run.
type Options struct {
	Root      string   `json:"root"`
	Kind      string   `json:"kind,omitempty"`      // "uri" (default) or "claim"
	Layout    string   `json:"layout,omitempty"`    // layout kind, default hierarchical
	Direction string   `json:"direction,omitempty"` // TB (default) or LR
	Expand    []string `json:"expand,omitempty"`    // nodes expanded after the load
	Depth     int      `json:"depth,omitempty"`     // rounds expanding every collapsed node
	Formats   []string `json:"formats,omitempty"`

	// EdgeLabels prints relation names on DOT and SVG edges.
	EdgeLabels bool `json:"edge_labels,omitempty"`

	Logger *log.Logger `json:"-"`

	kind      explore.RootKind
	layout    layout.Kind
	direction layout.Direction
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	var err error
	if o.kind, err = explore.ParseRootKind(o.Kind); err != nil {
		return err
	}
	if o.layout, err = layout.Parse(o.Layout); err != nil {
		return err
	}
	if o.direction, err = layout.ParseDirection(o.Direction); err != nil {
		return err
	}
	if o.Depth < 0 || o.Depth > MaxDepth {
		return fmt.Errorf("depth must be between 0 and %d", MaxDepth)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// ValidateFormat returns an error if format is not supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format %q: must be one of %s", format, formatList())
	}
	return nil
}

// ValidateFormats validates every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list. Empty input yields svg.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func formatList() string {
	return strings.Join([]string{FormatDOT, FormatSVG, FormatJSON, FormatGraph}, ", ")
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the laid-out, styled graph.
	Scene explore.Scene

	// Graph is the accumulated graph.
	Graph graph.Fragment

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Notices are the messages the exploration produced, in order.
	Notices []explore.Notice

	Stats Stats
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Expanded   int
	LoadTime   time.Duration
	ExpandTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}
