package explore

import (
	"strings"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
)

// InteractionState is the state of a view's [Machine].
type InteractionState int

const (
	Idle InteractionState = iota
	NodeSelected
	DetailOpen
)

func (s InteractionState) String() string {
	switch s {
	case NodeSelected:
		return "node_selected"
	case DetailOpen:
		return "detail_open"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s InteractionState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a name written by MarshalText.
func (s *InteractionState) UnmarshalText(b []byte) error {
	for _, st := range []InteractionState{Idle, NodeSelected, DetailOpen} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown interaction state %q", b)
}

// EventKind identifies a user gesture.
type EventKind int

const (
	LeftClickNode EventKind = iota
	LeftClickEdge
	RightClickNode
	Escape
	ClickBackground
	CloseDetail
)

var eventNames = map[EventKind]string{
	LeftClickNode:   "left_click_node",
	LeftClickEdge:   "left_click_edge",
	RightClickNode:  "right_click_node",
	Escape:          "escape",
	ClickBackground: "click_background",
	CloseDetail:     "close_detail",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseEventKind converts a gesture name such as "right_click_node".
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range eventNames {
		if name == s {
			return k, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown gesture %q", s)
}

// needsTarget reports whether the event names a node or edge.
func (k EventKind) needsTarget() bool {
	return k == LeftClickNode || k == LeftClickEdge || k == RightClickNode
}

// Event is a gesture with its target id, if any.
type Event struct {
	Kind   EventKind
	Target string
}

// SelectionKind tells whether a selection is a node or an edge.
type SelectionKind string

const (
	SelectNone SelectionKind = ""
	SelectNode SelectionKind = "node"
	SelectEdge SelectionKind = "edge"
)

// Selection is the currently selected element.
type Selection struct {
	Kind SelectionKind `json:"kind,omitempty"`
	ID   string        `json:"id,omitempty"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.Kind == SelectNone }

// EffectKind identifies an action requested by the machine.
type EffectKind int

const (
	EffectOpenDetail EffectKind = iota
	EffectCloseDetail
	EffectExpand
)

// Effect is an action for the view to carry out.
type Effect struct {
	Kind   EffectKind
	Target Selection
}

// Machine maps gestures to state transitions and effects. It holds no
// graph data and is not safe for concurrent use.
type Machine struct {
	state     InteractionState
	selection Selection
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine { return &Machine{} }

// State returns the current state.
func (m *Machine) State() InteractionState { return m.state }

// Selection returns the current selection.
func (m *Machine) Selection() Selection { return m.selection }

// Handle applies ev and returns the effects to run, in order.
func (m *Machine) Handle(ev Event) []Effect {
	switch ev.Kind {
	case LeftClickNode:
		m.selection = Selection{Kind: SelectNode, ID: ev.Target}
		m.state = DetailOpen
		return []Effect{{Kind: EffectOpenDetail, Target: m.selection}}

	case LeftClickEdge:
		m.selection = Selection{Kind: SelectEdge, ID: ev.Target}
		m.state = DetailOpen
		return []Effect{{Kind: EffectOpenDetail, Target: m.selection}}

	case RightClickNode:
		return []Effect{{Kind: EffectExpand, Target: Selection{Kind: SelectNode, ID: ev.Target}}}

	case Escape:
		if m.state != DetailOpen {
			return nil
		}
		m.state = Idle
		m.selection = Selection{}
		return []Effect{{Kind: EffectCloseDetail}}

	case ClickBackground:
		wasOpen := m.state == DetailOpen
		m.state = Idle
		m.selection = Selection{}
		if wasOpen {
			return []Effect{{Kind: EffectCloseDetail}}
		}
		return nil

	case CloseDetail:
		if m.state != DetailOpen {
			return nil
		}
		m.state = NodeSelected
		return []Effect{{Kind: EffectCloseDetail}}
	}
	return nil
}
