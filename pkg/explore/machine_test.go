package explore

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMachineTransitions(t *testing.T) {
	node := func(id string) Selection { return Selection{Kind: SelectNode, ID: id} }
	edge := func(id string) Selection { return Selection{Kind: SelectEdge, ID: id} }

	tests := []struct {
		name     string
		from     InteractionState
		sel      Selection
		event    Event
		wantTo   InteractionState
		wantSel  Selection
		wantEffs []Effect
	}{
		{
			name:     "left click node from idle",
			event:    Event{Kind: LeftClickNode, Target: "a"},
			wantTo:   DetailOpen,
			wantSel:  node("a"),
			wantEffs: []Effect{{Kind: EffectOpenDetail, Target: node("a")}},
		},
		{
			name:     "left click another node replaces detail",
			from:     DetailOpen,
			sel:      node("a"),
			event:    Event{Kind: LeftClickNode, Target: "b"},
			wantTo:   DetailOpen,
			wantSel:  node("b"),
			wantEffs: []Effect{{Kind: EffectOpenDetail, Target: node("b")}},
		},
		{
			name:     "left click edge",
			from:     NodeSelected,
			sel:      node("a"),
			event:    Event{Kind: LeftClickEdge, Target: "e1"},
			wantTo:   DetailOpen,
			wantSel:  edge("e1"),
			wantEffs: []Effect{{Kind: EffectOpenDetail, Target: edge("e1")}},
		},
		{
			name:     "right click keeps state and selection",
			from:     DetailOpen,
			sel:      node("a"),
			event:    Event{Kind: RightClickNode, Target: "b"},
			wantTo:   DetailOpen,
			wantSel:  node("a"),
			wantEffs: []Effect{{Kind: EffectExpand, Target: node("b")}},
		},
		{
			name:     "right click from idle",
			event:    Event{Kind: RightClickNode, Target: "b"},
			wantTo:   Idle,
			wantEffs: []Effect{{Kind: EffectExpand, Target: node("b")}},
		},
		{
			name:     "escape closes detail",
			from:     DetailOpen,
			sel:      node("a"),
			event:    Event{Kind: Escape},
			wantTo:   Idle,
			wantEffs: []Effect{{Kind: EffectCloseDetail}},
		},
		{
			name:    "escape without detail is ignored",
			from:    NodeSelected,
			sel:     node("a"),
			event:   Event{Kind: Escape},
			wantTo:  NodeSelected,
			wantSel: node("a"),
		},
		{
			name:     "background click with detail open",
			from:     DetailOpen,
			sel:      edge("e1"),
			event:    Event{Kind: ClickBackground},
			wantTo:   Idle,
			wantEffs: []Effect{{Kind: EffectCloseDetail}},
		},
		{
			name:   "background click with selection only",
			from:   NodeSelected,
			sel:    node("a"),
			event:  Event{Kind: ClickBackground},
			wantTo: Idle,
		},
		{
			name:     "detail close button keeps selection",
			from:     DetailOpen,
			sel:      node("a"),
			event:    Event{Kind: CloseDetail},
			wantTo:   NodeSelected,
			wantSel:  node("a"),
			wantEffs: []Effect{{Kind: EffectCloseDetail}},
		},
		{
			name:   "detail close button when closed",
			event:  Event{Kind: CloseDetail},
			wantTo: Idle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{state: tt.from, selection: tt.sel}
			effs := m.Handle(tt.event)

			if m.State() != tt.wantTo {
				t.Errorf("state = %v, want %v", m.State(), tt.wantTo)
			}
			if m.Selection() != tt.wantSel {
				t.Errorf("selection = %+v, want %+v", m.Selection(), tt.wantSel)
			}
			if !reflect.DeepEqual(effs, tt.wantEffs) {
				t.Errorf("effects = %+v, want %+v", effs, tt.wantEffs)
			}
		})
	}
}

func TestParseEventKind(t *testing.T) {
	for kind, name := range eventNames {
		got, err := ParseEventKind(name)
		if err != nil || got != kind {
			t.Errorf("ParseEventKind(%q) = %v, %v, want %v", name, got, err, kind)
		}
		if kind.String() != name {
			t.Errorf("String() = %q, want %q", kind.String(), name)
		}
	}
	if _, err := ParseEventKind("double_click"); err == nil {
		t.Error("ParseEventKind(double_click) = nil error, want error")
	}
}

func TestStateText(t *testing.T) {
	b, _ := DetailOpen.MarshalText()
	if string(b) != "detail_open" {
		t.Errorf("DetailOpen = %q, want detail_open", b)
	}
	b, _ = Expanding.MarshalText()
	if string(b) != "expanding" {
		t.Errorf("Expanding = %q, want expanding", b)
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	for _, st := range []InteractionState{Idle, NodeSelected, DetailOpen} {
		for _, exp := range []NodeState{Collapsed, Expanding, Expanded} {
			in := Result{
				State:     st,
				Selection: Selection{Kind: SelectNode, ID: "1"},
				Detail:    &Detail{Page: 2, Expansion: exp},
			}
			b, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var out Result
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("Unmarshal(%s): %v", b, err)
			}
			if !reflect.DeepEqual(out, in) {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		}
	}
}

func TestStateUnmarshalRejectsUnknown(t *testing.T) {
	var st InteractionState
	if err := st.UnmarshalText([]byte("dragging")); err == nil {
		t.Error("InteractionState.UnmarshalText(dragging) = nil error, want error")
	}
	var ns NodeState
	if err := ns.UnmarshalText([]byte("half")); err == nil {
		t.Error("NodeState.UnmarshalText(half) = nil error, want error")
	}
}
