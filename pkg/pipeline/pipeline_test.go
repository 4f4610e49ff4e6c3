package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/claimgraph/pkg/graph"
	graphio "github.com/matzehuels/claimgraph/pkg/io"
	"github.com/matzehuels/claimgraph/pkg/normalize"
)

type fakeSource struct {
	err error
}

func (f fakeSource) Graph(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"nodes":[{"id":"1","name":"Alice"},{"id":"2","name":"Bob"}],
		"edges":[{"id":"e1","source":"1","target":"2","label":"agree"}]}`), nil
}

func (f fakeSource) ClaimGraph(ctx context.Context, id string) ([]byte, error) { return f.Graph(ctx, id) }

func (f fakeSource) Neighbors(_ context.Context, id string, page, _ int) ([]byte, error) {
	if id == "2" && page == 1 {
		return []byte(`{"nodes":[{"id":"2","name":"Bob"},{"id":"3","name":"Carol"}],
			"edges":[{"id":"e2","source":"2","target":"3","label":"rated"}]}`), nil
	}
	return []byte(`{"nodes":[],"edges":[]}`), nil
}

func (f fakeSource) ExpandClaim(ctx context.Context, id string, page, limit int) ([]byte, error) {
	return f.Neighbors(ctx, id, page, limit)
}

func newTestRunner(src fakeSource) *Runner {
	r := NewRunner(src, log.New(io.Discard))
	r.SVG = func(_ context.Context, dot string) ([]byte, error) {
		return []byte("<svg><!-- " + dot[:7] + " --></svg>"), nil
	}
	return r
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"graph", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "svg"},
		{"dot", "dot"},
		{" SVG, json ,", "svg,json"},
	}
	for _, tt := range tests {
		if got := strings.Join(ParseFormats(tt.in), ","); got != tt.want {
			t.Errorf("ParseFormats(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}

	bad := []Options{
		{Layout: "spiral"},
		{Direction: "BT"},
		{Kind: "file"},
		{Depth: MaxDepth + 1},
		{Depth: -1},
		{Formats: []string{"pdf"}},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) succeeded, want error", o)
		}
	}
}

func TestExecuteArtifacts(t *testing.T) {
	r := newTestRunner(fakeSource{})
	res, err := r.Execute(context.Background(), Options{
		Formats:    []string{FormatDOT, FormatSVG, FormatJSON, FormatGraph},
		EdgeLabels: true,
		Logger:     quiet(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.NodeCount != 2 || res.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v, want 2 nodes 1 edge", res.Stats)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, `label="agree"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
	if got := string(res.Artifacts[FormatSVG]); got != "<svg><!-- digraph --></svg>" {
		t.Errorf("SVG = %q", got)
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"layout": "hierarchical"`) {
		t.Errorf("scene JSON missing layout:\n%s", res.Artifacts[FormatJSON])
	}

	back, err := normalize.Normalize(res.Artifacts[FormatGraph])
	if err != nil {
		t.Fatalf("graph artifact does not normalize: %v", err)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 1 {
		t.Errorf("graph artifact = %d nodes %d edges, want 2 1", len(back.Nodes), len(back.Edges))
	}
}

func TestExecuteExpand(t *testing.T) {
	tests := []struct {
		name         string
		opts         Options
		wantNodes    int
		wantExpanded int
	}{
		{"none", Options{}, 2, 0},
		{"explicit", Options{Expand: []string{"2"}}, 3, 1},
		{"unknown id ignored", Options{Expand: []string{"42"}}, 2, 0},
		{"depth", Options{Depth: 1}, 3, 2},
		{"depth stops when nothing changes", Options{Depth: MaxDepth}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Formats = []string{FormatDOT}
			opts.Logger = quiet()
			res, err := newTestRunner(fakeSource{}).Execute(context.Background(), opts)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Stats.NodeCount != tt.wantNodes {
				t.Errorf("NodeCount = %d, want %d", res.Stats.NodeCount, tt.wantNodes)
			}
			if res.Stats.Expanded != tt.wantExpanded {
				t.Errorf("Expanded = %d, want %d", res.Stats.Expanded, tt.wantExpanded)
			}
		})
	}
}

func TestExecuteLoadFailure(t *testing.T) {
	_, err := newTestRunner(fakeSource{err: errors.New("boom")}).Execute(context.Background(), Options{Logger: quiet()})
	if err == nil || !strings.HasPrefix(err.Error(), "load:") {
		t.Errorf("Execute error = %v, want load failure", err)
	}
}

func TestExecuteFromFile(t *testing.T) {
	saved := graph.Fragment{
		Nodes: []graph.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}, {ID: "c", Label: "C"}},
		Edges: []graph.Edge{{ID: "ab", Source: "a", Target: "b", Relation: "agree"}, {ID: "bc", Source: "b", Target: "c", Relation: "agree"}},
	}
	path := filepath.Join(t.TempDir(), "saved.json")
	if err := graphio.ExportJSON(saved, path); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(graphio.NewFileSource(path), quiet())
	res, err := r.Execute(context.Background(), Options{
		Layout:  "concentric",
		Depth:   1,
		Formats: []string{FormatJSON},
		Logger:  quiet(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v, want 3 nodes 2 edges", res.Stats)
	}
	if res.Scene.Layout != "concentric" {
		t.Errorf("layout = %q, want concentric", res.Scene.Layout)
	}
	if len(res.Notices) == 0 {
		t.Error("expected a notice for expansions that found nothing new")
	}
}
