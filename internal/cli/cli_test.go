package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/claimgraph/pkg/config"
	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/graph"
	graphio "github.com/matzehuels/claimgraph/pkg/io"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/pipeline"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		count  int
		want   string
	}{
		{"default svg", "", pipeline.FormatSVG, 1, "claimgraph.svg"},
		{"default graph", "", pipeline.FormatGraph, 2, "claimgraph.graph.json"},
		{"single as given", "out/alice.txt", pipeline.FormatDOT, 1, "out/alice.txt"},
		{"base path", "out/alice.svg", pipeline.FormatDOT, 2, "out/alice.dot"},
		{"base without ext", "alice", pipeline.FormatJSON, 3, "alice.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.format, tt.count); got != tt.want {
				t.Errorf("outputPath(%q, %q, %d) = %q, want %q", tt.output, tt.format, tt.count, got, tt.want)
			}
		})
	}
}

func TestDescribeRoot(t *testing.T) {
	tests := []struct {
		root, input, want string
	}{
		{"", "", "default graph"},
		{"https://example.com/alice", "", "https://example.com/alice"},
		{"1", "saved.json", "saved.json"},
	}
	for _, tt := range tests {
		if got := describeRoot(tt.root, tt.input); got != tt.want {
			t.Errorf("describeRoot(%q, %q) = %q, want %q", tt.root, tt.input, got, tt.want)
		}
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := []struct{ addr, want string }{
		{":8080", "localhost:8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := displayAddr(tt.addr); got != tt.want {
			t.Errorf("displayAddr(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name       string
		engine     string
		kind       layout.Kind
		wantEngine bool
	}{
		{"hierarchical ignores engine", "graphviz", layout.KindHierarchical, false},
		{"concentric graphviz", "graphviz", layout.KindConcentric, true},
		{"force graphviz", "graphviz", layout.KindForce, true},
		{"concentric builtin", "builtin", layout.KindConcentric, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Layout.Engine = tt.engine

			s, err := strategies(cfg)(tt.kind)
			if err != nil {
				t.Fatalf("strategies() error = %v", err)
			}
			if s.Name() != string(tt.kind) {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.kind)
			}
			c, ok := s.(layout.Concentric)
			if !ok {
				if tt.wantEngine {
					t.Fatalf("strategy %T, want layout.Concentric", s)
				}
				return
			}
			if got := c.Engine != nil; got != tt.wantEngine {
				t.Errorf("engine attached = %v, want %v", got, tt.wantEngine)
			}
		})
	}
}

func TestExploreOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Explore.MaxNodes = 42
	cfg.Explore.Concurrency = 3
	cfg.API.PageSize = 7

	opts := exploreOptions(cfg)
	if opts.Limits.MaxNodes != 42 {
		t.Errorf("MaxNodes = %d, want 42", opts.Limits.MaxNodes)
	}
	if opts.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", opts.Concurrency)
	}
	if opts.PageSize != 7 {
		t.Errorf("PageSize = %d, want 7", opts.PageSize)
	}
	if opts.Kind != explore.RootURI {
		t.Errorf("Kind = %q, want %q", opts.Kind, explore.RootURI)
	}
}

func TestViewOptions(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg = config.Default()
	c.cfg.Layout.Engine = "builtin"

	opts, err := c.viewOptions(exploreFlags{kind: "claim", layout: "circle", direction: "lr"})
	if err != nil {
		t.Fatalf("viewOptions() error = %v", err)
	}
	if opts.Kind != explore.RootClaim {
		t.Errorf("Kind = %q, want %q", opts.Kind, explore.RootClaim)
	}
	if opts.Layout.Name() != string(layout.KindConcentric) {
		t.Errorf("Layout = %q, want concentric", opts.Layout.Name())
	}
	if opts.Direction != layout.DirectionLR {
		t.Errorf("Direction = %q, want LR", opts.Direction)
	}
	if opts.Logger == c.Logger {
		t.Error("view logs to the terminal logger at info level")
	}

	if _, err := c.viewOptions(exploreFlags{kind: "person"}); err == nil {
		t.Error("viewOptions() accepted an unknown root kind")
	}
	if _, err := c.viewOptions(exploreFlags{layout: "spiral"}); err == nil {
		t.Error("viewOptions() accepted an unknown layout")
	}
}

func TestMarshalConfigMasksToken(t *testing.T) {
	cfg := config.Default()
	cfg.API.Token = "secret-token"

	data, err := marshalConfig(cfg)
	if err != nil {
		t.Fatalf("marshalConfig() error = %v", err)
	}
	if bytes.Contains(data, []byte("secret-token")) {
		t.Error("marshalConfig() leaked the API token")
	}
	if !bytes.Contains(data, []byte("********")) {
		t.Error("marshalConfig() did not mask the token")
	}
	if cfg.API.Token != "secret-token" {
		t.Error("marshalConfig() modified its argument")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"serve", "explore", "layout", "render", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

// =============================================================================
// End to end over a saved graph
// =============================================================================

func writeGraph(t *testing.T, dir string) string {
	t.Helper()
	frag := graph.Fragment{
		Nodes: []graph.Node{
			{ID: "1", Label: "Alice", EntityType: graph.EntityPerson},
			{ID: "2", Label: "Bob", EntityType: graph.EntityPerson},
			{ID: "3", Label: "Carol", EntityType: graph.EntityOrganization},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "1", Target: "2", Relation: "agree"},
			{ID: "e2", Source: "2", Target: "3", Relation: "rated"},
		},
	}
	path := filepath.Join(dir, "saved.graph.json")
	if err := graphio.ExportJSON(frag, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	body := "[layout]\ndefault = \"concentric\"\nengine = \"builtin\"\n\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func TestRenderFromFile(t *testing.T) {
	dir := t.TempDir()
	input := writeGraph(t, dir)
	cfgPath := writeConfig(t, dir)
	base := filepath.Join(dir, "out")

	runCLI(t, "render", "1", "--config", cfgPath, "--input", input,
		"--format", "dot,graph", "--depth", "1", "--labels", "-o", base)

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph")) {
		t.Errorf("dot output starts %q, want digraph", string(dot[:min(len(dot), 20)]))
	}
	if !bytes.Contains(dot, []byte(`"agree"`)) {
		t.Error("dot output missing edge label")
	}

	frag, err := graphio.ImportJSON(base + ".graph.json")
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if len(frag.Nodes) != 3 || len(frag.Edges) != 2 {
		t.Errorf("graph = %d nodes %d edges, want 3 and 2", len(frag.Nodes), len(frag.Edges))
	}
}

func TestLayoutFromFile(t *testing.T) {
	dir := t.TempDir()
	input := writeGraph(t, dir)
	cfgPath := writeConfig(t, dir)
	out := filepath.Join(dir, "scene.json")

	runCLI(t, "layout", "1", "--config", cfgPath, "--input", input, "-o", out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read scene: %v", err)
	}
	var scene struct {
		Layout string            `json:"layout"`
		Nodes  []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &scene); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	if scene.Layout != string(layout.KindConcentric) {
		t.Errorf("layout = %q, want concentric from the config file", scene.Layout)
	}
	if len(scene.Nodes) != 3 {
		t.Errorf("len(nodes) = %d, want 3", len(scene.Nodes))
	}
}

func TestRenderRejectsFormat(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"render", "--config", filepath.Join(t.TempDir(), "none.toml"), "--format", "png"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("render accepted an unknown format")
	}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintNoticesDedupes(t *testing.T) {
	out := captureStdout(t)
	printNotices([]explore.Notice{
		{Level: explore.LevelInfo, Message: explore.MsgNoNewNodes, NodeID: "1"},
		{Level: explore.LevelInfo, Message: explore.MsgNoNewNodes, NodeID: "2"},
		{Level: explore.LevelError, Message: explore.MsgGraphLimit},
	})

	if got := strings.Count(out.String(), explore.MsgNoNewNodes); got != 1 {
		t.Errorf("%q printed %d times, want 1", explore.MsgNoNewNodes, got)
	}
	if !strings.Contains(out.String(), explore.MsgGraphLimit) {
		t.Errorf("output missing %q", explore.MsgGraphLimit)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := filepath.Join(dir, "config.toml")
	body := "[cache]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(cacheDir) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t)
	runCLI(t, "cache", "path", "--config", cfgPath)
	if strings.TrimSpace(out.String()) != filepath.ToSlash(cacheDir) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out.String()), cacheDir)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	runCLI(t, "cache", "clear", "--config", cfgPath)
	if !strings.Contains(out.String(), "Cleared 0 cached entries") {
		t.Errorf("cache clear output = %q", out.String())
	}
}

func TestConfigPathCommand(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")

	out := captureStdout(t)
	runCLI(t, "config", "path", "--config", missing)

	if !strings.HasPrefix(out.String(), missing+"\n") {
		t.Errorf("config path output = %q, want it to start with %q", out.String(), missing)
	}
	if !strings.Contains(out.String(), config.EnvPrefix) {
		t.Errorf("config path output should mention %s for a missing file", config.EnvPrefix)
	}
}
