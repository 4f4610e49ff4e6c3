package style

import (
	"errors"
	"maps"
	"strings"
)

// DefaultEdgeKey is the relation key used when a relation has no entry.
const DefaultEdgeKey = "default"

// ErrNoDefaultEdgeStyle is returned by [NewResolver] when the theme's edge
// table lacks a [DefaultEdgeKey] entry.
var ErrNoDefaultEdgeStyle = errors.New("theme has no default edge style")

// Node shapes understood by the renderers.
const (
	ShapeEllipse        = "ellipse"
	ShapeRoundRectangle = "roundrectangle"
	ShapeRectangle      = "rectangle"
	ShapeDiamond        = "diamond"
	ShapeStar           = "star"
	ShapeRoundTriangle  = "round-triangle"
)

// Line styles and arrow shapes used by the default theme.
const (
	LineSolid  = "solid"
	LineDashed = "dashed"

	ArrowTriangle    = "triangle"
	ArrowChevron     = "chevron"
	ArrowVee         = "vee"
	ArrowNone        = "none"
	ArrowTriangleTee = "triangle-tee"
	ArrowCircle      = "circle"
)

// ShapeSpec is the geometry of a node category.
type ShapeSpec struct {
	Shape  string  `json:"shape" koanf:"shape"`
	Width  float64 `json:"width" koanf:"width"`
	Height float64 `json:"height" koanf:"height"`
}

// NodeStyle is the resolved appearance of a node.
type NodeStyle struct {
	Shape  string  `json:"shape"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
	Border string  `json:"border"`
}

// EdgeStyle is the resolved appearance of an edge.
type EdgeStyle struct {
	Color      string  `json:"color" koanf:"color"`
	Width      float64 `json:"width" koanf:"width"`
	ArrowShape string  `json:"arrowShape" koanf:"arrow"`
	LineStyle  string  `json:"lineStyle" koanf:"line"`
}

// Theme is the palette and geometry configuration of a [Resolver].
// Map keys are lowercased entity types or relation names.
type Theme struct {
	Shapes       map[string]ShapeSpec
	DefaultShape ShapeSpec

	RatingGradient [5]string
	ImpactColor    string
	ClaimColor     string
	PersonColor    string
	NeutralColor   string
	EntityColors   map[string]string

	Borders       map[string]string
	DefaultBorder string

	Edges map[string]EdgeStyle
}

// DefaultTheme returns the LinkedTrust palette. Each call returns a fresh
// value, so callers may modify the result before building a resolver.
func DefaultTheme() Theme {
	return Theme{
		Shapes: map[string]ShapeSpec{
			"claim":        {Shape: ShapeRoundRectangle, Width: 200, Height: 80},
			"person":       {Shape: ShapeEllipse, Width: 80, Height: 80},
			"organization": {Shape: ShapeEllipse, Width: 100, Height: 100},
			"impact":       {Shape: ShapeStar, Width: 90, Height: 90},
			"event":        {Shape: ShapeDiamond, Width: 80, Height: 80},
			"document":     {Shape: ShapeRectangle, Width: 90, Height: 70},
			"product":      {Shape: ShapeRoundRectangle, Width: 100, Height: 70},
			"place":        {Shape: ShapeRoundTriangle, Width: 80, Height: 80},
		},
		DefaultShape: ShapeSpec{Shape: ShapeEllipse, Width: 60, Height: 60},

		RatingGradient: [5]string{"#EF4444", "#F97316", "#F59E0B", "#84CC16", "#10B981"},
		ImpactColor:    "#78350F",
		ClaimColor:     "#8B5CF6",
		PersonColor:    "#10B981",
		NeutralColor:   "#9CA3AF",
		EntityColors: map[string]string{
			"organization": "#6366F1",
			"impact":       "#F59E0B",
			"event":        "#EF4444",
			"document":     "#6B7280",
			"product":      "#14B8A6",
			"place":        "#EC4899",
			"unknown":      "#9CA3AF",
			"other":        "#9CA3AF",
		},

		Borders: map[string]string{
			"person":       "#065F46",
			"organization": "#4338CA",
			"claim":        "#6D28D9",
			"impact":       "#D97706",
			"event":        "#DC2626",
			"document":     "#4B5563",
			"product":      "#0D9488",
			"place":        "#DB2777",
		},
		DefaultBorder: "#6B7280",

		Edges: map[string]EdgeStyle{
			"is_vouched_for":    {Color: "#10B981", Width: 4, ArrowShape: ArrowTriangle, LineStyle: LineSolid},
			"rated":             {Color: "#3B82F6", Width: 3, ArrowShape: ArrowChevron, LineStyle: LineSolid},
			"funds_for_purpose": {Color: "#F59E0B", Width: 2, ArrowShape: ArrowVee, LineStyle: LineDashed},
			"same_as":           {Color: "#6B7280", Width: 2, ArrowShape: ArrowNone, LineStyle: LineDashed},
			"validated":         {Color: "#059669", Width: 5, ArrowShape: ArrowTriangle, LineStyle: LineSolid},
			"verified":          {Color: "#059669", Width: 4, ArrowShape: ArrowTriangle, LineStyle: LineSolid},
			"impact":            {Color: "#F59E0B", Width: 4, ArrowShape: ArrowTriangleTee, LineStyle: LineSolid},
			"agree":             {Color: "#10B981", Width: 3, ArrowShape: ArrowCircle, LineStyle: LineSolid},
			DefaultEdgeKey:      {Color: "#9CA3AF", Width: 2, ArrowShape: ArrowTriangle, LineStyle: LineSolid},
		},
	}
}

// WithEdges returns a copy of t whose edge table is extended by overrides.
// Relation keys are lowercased.
func (t Theme) WithEdges(overrides map[string]EdgeStyle) Theme {
	out := t.clone()
	for k, v := range overrides {
		out.Edges[strings.ToLower(k)] = v
	}
	return out
}

// WithEntityColors returns a copy of t with additional entity colours.
func (t Theme) WithEntityColors(overrides map[string]string) Theme {
	out := t.clone()
	for k, v := range overrides {
		out.EntityColors[strings.ToLower(k)] = v
	}
	return out
}

func (t Theme) clone() Theme {
	out := t
	out.Shapes = cloneMap(t.Shapes)
	out.EntityColors = cloneMap(t.EntityColors)
	out.Borders = cloneMap(t.Borders)
	out.Edges = cloneMap(t.Edges)
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	maps.Copy(out, m)
	return out
}
