package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/explore"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

const exploreHelp = "↑/↓ navigate  ⏎ details  x expand  esc back  r refresh  q quit"

// viewer is the part of an explore.View the model drives.
type viewer interface {
	Snapshot(ctx context.Context) (explore.Scene, error)
	Dispatch(ctx context.Context, ev explore.Event) (explore.Result, error)
}

type (
	sceneMsg  explore.Scene
	updateMsg explore.Update
	resultMsg struct {
		res explore.Result
		err error
	}
	updatesClosedMsg struct{}
	errMsg           struct{ err error }
)

// =============================================================================
// ExploreModel - Interactive graph exploration
// =============================================================================

// ExploreModel is the bubbletea model for an interactive exploration. It
// lists the nodes of the view and turns key presses into gestures.
type ExploreModel struct {
	Title    string
	Nodes    []explore.SceneNode
	Edges    int
	Cursor   int
	Offset   int
	Height   int
	State    explore.InteractionState
	Detail   *explore.Detail
	Notice   *explore.Notice
	Revision uint64

	ctx     context.Context
	view    viewer
	updates <-chan explore.Update
}

// NewExploreModel creates a model over view. updates may be nil.
func NewExploreModel(ctx context.Context, title string, view viewer, updates <-chan explore.Update) ExploreModel {
	return ExploreModel{
		Title:   title,
		Height:  15,
		ctx:     ctx,
		view:    view,
		updates: updates,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return tea.Batch(m.snapshot(), m.listen())
}

func (m ExploreModel) snapshot() tea.Cmd {
	return func() tea.Msg {
		scene, err := m.view.Snapshot(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return sceneMsg(scene)
	}
}

func (m ExploreModel) listen() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates := m.updates
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(u)
	}
}

func (m ExploreModel) dispatch(kind explore.EventKind, target string) tea.Cmd {
	ev := explore.Event{Kind: kind, Target: target}
	return func() tea.Msg {
		res, err := m.view.Dispatch(m.ctx, ev)
		return resultMsg{res: res, err: err}
	}
}

// current returns the node under the cursor.
func (m ExploreModel) current() (explore.SceneNode, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return explore.SceneNode{}, false
	}
	return m.Nodes[m.Cursor], true
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.clampOffset()
	case sceneMsg:
		m.applyScene(explore.Scene(msg))
	case updateMsg:
		if msg.Scene != nil {
			m.applyScene(*msg.Scene)
		}
		if msg.Notice != nil {
			n := *msg.Notice
			m.Notice = &n
		}
		return m, m.listen()
	case updatesClosedMsg:
		m.updates = nil
	case resultMsg:
		if msg.err != nil {
			m.Notice = &explore.Notice{Level: explore.LevelError, Message: errs.UserMessage(msg.err)}
			return m, nil
		}
		m.State = msg.res.State
		m.Detail = msg.res.Detail
	case errMsg:
		m.Notice = &explore.Notice{Level: explore.LevelError, Message: errs.UserMessage(msg.err)}
	}
	return m, nil
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.clampOffset()
		}
	case "down", "j":
		if m.Cursor < len(m.Nodes)-1 {
			m.Cursor++
			m.clampOffset()
		}
	case "enter", " ":
		if n, ok := m.current(); ok {
			return m, m.dispatch(explore.LeftClickNode, n.Node.ID)
		}
	case "x", "right", "l":
		if n, ok := m.current(); ok {
			m.Notice = nil
			return m, m.dispatch(explore.RightClickNode, n.Node.ID)
		}
	case "esc":
		return m, m.dispatch(explore.Escape, "")
	case "c":
		return m, m.dispatch(explore.CloseDetail, "")
	case "b":
		return m, m.dispatch(explore.ClickBackground, "")
	case "r":
		return m, m.snapshot()
	}
	return m, nil
}

// applyScene replaces the node list, keeping the cursor on the same node.
// Scenes older than the one shown are ignored.
func (m *ExploreModel) applyScene(scene explore.Scene) {
	if scene.Revision < m.Revision {
		return
	}
	var keep string
	if n, ok := m.current(); ok {
		keep = n.Node.ID
	}

	nodes := append([]explore.SceneNode(nil), scene.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		li, lj := strings.ToLower(nodes[i].Node.Label), strings.ToLower(nodes[j].Node.Label)
		if li != lj {
			return li < lj
		}
		return nodes[i].Node.ID < nodes[j].Node.ID
	})

	m.Nodes = nodes
	m.Edges = len(scene.Edges)
	m.Revision = scene.Revision
	m.Cursor = 0
	for i, n := range nodes {
		if n.Node.ID == keep {
			m.Cursor = i
			break
		}
	}
	m.clampOffset()
}

func (m *ExploreModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ExploreModel) expandedCount() int {
	count := 0
	for _, n := range m.Nodes {
		if n.Page > 0 {
			count++
		}
	}
	return count
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(exploreHelp))
	b.WriteString("\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  loading..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.nodeTable())
		b.WriteString("\n")
	}

	b.WriteString(" " + statsLine(len(m.Nodes), m.Edges, m.expandedCount()))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s", m.Cursor+1, len(m.Nodes), m.State)))
	b.WriteString("\n")

	if m.Detail != nil && m.State == explore.DetailOpen {
		b.WriteString(detailBoxStyle.Render(detailLines(*m.Detail)))
		b.WriteString("\n")
	}
	if m.Notice != nil {
		if m.Notice.Level == explore.LevelError {
			b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(m.Notice.Message))
		} else {
			b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.Notice.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ExploreModel) nodeTable() string {
	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		page := "—"
		if n.Page > 0 {
			page = fmt.Sprintf("%d", n.Page)
		}
		rows = append(rows, []string{cursor, n.Node.Label, n.Node.EntityType.String(), n.Expansion.String(), page})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Type", "State", "Page").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[idx]
			base := lipgloss.NewStyle()
			if col == 1 && n.Style.Color != "" {
				base = base.Foreground(lipgloss.Color(n.Style.Color))
			} else if col > 1 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				if col == 0 {
					return listSelectedStyle
				}
				return base.Bold(true)
			}
			return base
		})

	return t.Render()
}

func detailLines(d explore.Detail) string {
	var lines []string
	switch {
	case d.Node != nil:
		n := d.Node
		lines = append(lines, keyValue("Node", n.Label), keyValue("Type", n.EntityType.String()))
		if n.URI != "" {
			lines = append(lines, keyValue("URI", n.URI))
		}
		if n.ClaimType != "" {
			lines = append(lines, keyValue("Claim", n.ClaimType))
		}
		if n.Stars != nil {
			lines = append(lines, keyValue("Stars", fmt.Sprintf("%.1f", *n.Stars)))
		}
		if n.Confidence != nil {
			lines = append(lines, keyValue("Confidence", fmt.Sprintf("%.2f", *n.Confidence)))
		}
		lines = append(lines,
			keyValue("Expansion", d.Expansion.String()),
			keyValue("Connections", fmt.Sprintf("%d", d.Degree)))
		if len(d.Neighbors) > 0 {
			lines = append(lines, keyValue("Neighbors", strings.Join(d.Neighbors, ", ")))
		}
	case d.Edge != nil:
		e := d.Edge
		lines = append(lines,
			keyValue("Edge", e.ID),
			keyValue("Relation", e.Relation),
			keyValue("From", e.Source),
			keyValue("To", e.Target))
	}
	return strings.Join(lines, "\n")
}
