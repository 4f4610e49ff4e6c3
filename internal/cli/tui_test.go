package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
)

type fakeViewer struct {
	scene  explore.Scene
	events []explore.Event
	result explore.Result
	err    error
}

func (f *fakeViewer) Snapshot(context.Context) (explore.Scene, error) {
	return f.scene, nil
}

func (f *fakeViewer) Dispatch(_ context.Context, ev explore.Event) (explore.Result, error) {
	f.events = append(f.events, ev)
	return f.result, f.err
}

func sceneNode(id, label string, page int) explore.SceneNode {
	return explore.SceneNode{
		Placed: layout.Placed{Node: graph.Node{ID: id, Label: label, EntityType: graph.EntityPerson}},
		Page:   page,
	}
}

func testScene(rev uint64, nodes ...explore.SceneNode) explore.Scene {
	return explore.Scene{Nodes: nodes, Revision: rev}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m ExploreModel, msg tea.Msg) (ExploreModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	em, ok := next.(ExploreModel)
	if !ok {
		t.Fatalf("Update returned %T, want ExploreModel", next)
	}
	return em, cmd
}

func loadedModel(t *testing.T, v *fakeViewer) ExploreModel {
	t.Helper()
	m := NewExploreModel(context.Background(), "Explore", v, nil)
	m, _ = update(t, m, sceneMsg(v.scene))
	return m
}

func TestExploreModelSortsNodes(t *testing.T) {
	v := &fakeViewer{scene: testScene(1, sceneNode("2", "bob", 0), sceneNode("1", "Alice", 1))}
	m := loadedModel(t, v)

	var got []string
	for _, n := range m.Nodes {
		got = append(got, n.Node.ID)
	}
	if strings.Join(got, ",") != "1,2" {
		t.Errorf("node order = %v, want [1 2]", got)
	}
	if m.expandedCount() != 1 {
		t.Errorf("expandedCount() = %d, want 1", m.expandedCount())
	}
}

func TestExploreModelCursor(t *testing.T) {
	v := &fakeViewer{scene: testScene(1, sceneNode("1", "a", 0), sceneNode("2", "b", 0), sceneNode("3", "c", 0))}

	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"start", nil, 0},
		{"down", []string{"down"}, 1},
		{"vim keys", []string{"j", "j", "k"}, 1},
		{"clamped bottom", []string{"j", "j", "j", "j"}, 2},
		{"clamped top", []string{"up", "k"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedModel(t, v)
			for _, k := range tt.keys {
				m, _ = update(t, m, key(k))
			}
			if m.Cursor != tt.want {
				t.Errorf("Cursor = %d, want %d", m.Cursor, tt.want)
			}
		})
	}
}

func TestExploreModelScrolls(t *testing.T) {
	v := &fakeViewer{scene: testScene(1,
		sceneNode("1", "a", 0), sceneNode("2", "b", 0), sceneNode("3", "c", 0),
		sceneNode("4", "d", 0), sceneNode("5", "e", 0), sceneNode("6", "f", 0),
		sceneNode("7", "g", 0))}
	m := loadedModel(t, v)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	for range 6 {
		m, _ = update(t, m, key("j"))
	}
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
}

func TestExploreModelGestures(t *testing.T) {
	tests := []struct {
		key    string
		kind   explore.EventKind
		target string
	}{
		{"enter", explore.LeftClickNode, "1"},
		{"x", explore.RightClickNode, "1"},
		{"l", explore.RightClickNode, "1"},
		{"esc", explore.Escape, ""},
		{"c", explore.CloseDetail, ""},
		{"b", explore.ClickBackground, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := &fakeViewer{scene: testScene(1, sceneNode("1", "Alice", 0))}
			m := loadedModel(t, v)

			_, cmd := update(t, m, key(tt.key))
			if cmd == nil {
				t.Fatal("no command for gesture key")
			}
			if _, ok := cmd().(resultMsg); !ok {
				t.Fatal("command did not produce a result")
			}
			if len(v.events) != 1 {
				t.Fatalf("dispatched %d events, want 1", len(v.events))
			}
			if got := v.events[0]; got.Kind != tt.kind || got.Target != tt.target {
				t.Errorf("event = %v %q, want %v %q", got.Kind, got.Target, tt.kind, tt.target)
			}
		})
	}
}

func TestExploreModelNodeGestureWithoutNodes(t *testing.T) {
	m := NewExploreModel(context.Background(), "Explore", &fakeViewer{}, nil)
	if _, cmd := update(t, m, key("enter")); cmd != nil {
		t.Error("enter on an empty list should not dispatch")
	}
}

func TestExploreModelResult(t *testing.T) {
	alice := graph.Node{ID: "1", Label: "Alice", EntityType: graph.EntityPerson}
	v := &fakeViewer{
		scene: testScene(1, sceneNode("1", "Alice", 0)),
		result: explore.Result{
			State:     explore.DetailOpen,
			Selection: explore.Selection{Kind: explore.SelectNode, ID: "1"},
			Detail:    &explore.Detail{Node: &alice, Degree: 2, Neighbors: []string{"2", "3"}},
		},
	}
	m := loadedModel(t, v)

	_, cmd := update(t, m, key("enter"))
	m, _ = update(t, m, cmd())

	if m.State != explore.DetailOpen {
		t.Errorf("State = %v, want %v", m.State, explore.DetailOpen)
	}
	if m.Detail == nil || m.Detail.Node.ID != "1" {
		t.Fatalf("Detail = %+v, want node 1", m.Detail)
	}
	out := m.View()
	for _, want := range []string{"Alice", "PERSON", "2, 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestExploreModelDispatchError(t *testing.T) {
	v := &fakeViewer{
		scene: testScene(1, sceneNode("1", "Alice", 0)),
		err:   errs.New(errs.ErrCodeExpansionInFlight, "already expanding"),
	}
	m := loadedModel(t, v)

	_, cmd := update(t, m, key("x"))
	m, _ = update(t, m, cmd())

	if m.Notice == nil || m.Notice.Level != explore.LevelError {
		t.Fatalf("Notice = %+v, want an error notice", m.Notice)
	}
	if m.State != explore.Idle {
		t.Errorf("State = %v, want idle after a failed gesture", m.State)
	}
}

func TestExploreModelUpdates(t *testing.T) {
	updates := make(chan explore.Update, 2)
	v := &fakeViewer{scene: testScene(1, sceneNode("1", "Alice", 0), sceneNode("2", "Bob", 0))}
	m := NewExploreModel(context.Background(), "Explore", v, updates)
	m, _ = update(t, m, sceneMsg(v.scene))
	m, _ = update(t, m, key("j"))

	grown := testScene(2, sceneNode("0", "Aaron", 0), sceneNode("1", "Alice", 1), sceneNode("2", "Bob", 0))
	updates <- explore.Update{Scene: &grown}

	msg := m.listen()()
	m, cmd := update(t, m, msg)
	if len(m.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(m.Nodes))
	}
	if got := m.Nodes[m.Cursor].Node.ID; got != "2" {
		t.Errorf("cursor on %q, want it to stay on 2", got)
	}
	if cmd == nil {
		t.Error("update did not re-arm the listener")
	}

	updates <- explore.Update{Notice: &explore.Notice{Level: explore.LevelInfo, Message: explore.MsgNoNewNodes}}
	m, _ = update(t, m, cmd())
	if m.Notice == nil || m.Notice.Message != explore.MsgNoNewNodes {
		t.Errorf("Notice = %+v, want %q", m.Notice, explore.MsgNoNewNodes)
	}

	close(updates)
	m, _ = update(t, m, m.listen()())
	if m.listen() != nil {
		t.Error("listener still armed after the channel closed")
	}
}

func TestExploreModelIgnoresStaleScene(t *testing.T) {
	v := &fakeViewer{scene: testScene(3, sceneNode("1", "Alice", 0), sceneNode("2", "Bob", 0))}
	m := loadedModel(t, v)
	m, _ = update(t, m, sceneMsg(testScene(2, sceneNode("1", "Alice", 0))))
	if len(m.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2 after a stale scene", len(m.Nodes))
	}
}

func TestExploreModelQuit(t *testing.T) {
	m := NewExploreModel(context.Background(), "Explore", &fakeViewer{}, nil)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
