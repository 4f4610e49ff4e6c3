package explore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/fetch"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
	"github.com/matzehuels/claimgraph/pkg/store"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// subscriberBuffer is the number of updates queued per subscriber before
// new ones are dropped.
const subscriberBuffer = 16

// ViewOptions configures a [View].
type ViewOptions struct {
	Options

	// Layout positions the graph; nil means the default hierarchical layout.
	Layout    layout.Strategy
	Direction layout.Direction

	// Resolver styles nodes and edges; nil means [style.Default].
	Resolver *style.Resolver
}

// =============================================================================
// Scene
// =============================================================================

// SceneNode is a node with its box, style and expansion bookkeeping.
type SceneNode struct {
	layout.Placed
	Style     style.NodeStyle `json:"style"`
	Page      int             `json:"page"`
	Expansion NodeState       `json:"expansion"`
}

// SceneEdge is an edge with its style.
type SceneEdge struct {
	graph.Edge
	Style style.EdgeStyle `json:"style"`
}

// Scene is a laid out, styled snapshot of a view.
type Scene struct {
	Nodes     []SceneNode      `json:"nodes"`
	Edges     []SceneEdge      `json:"edges"`
	Layout    string           `json:"layout"`
	Direction layout.Direction `json:"direction"`
	Selection Selection        `json:"selection"`
	State     InteractionState `json:"state"`
	Revision  uint64           `json:"revision"`
}

// Diagram converts the scene for the DOT renderer, marking the selection.
func (s Scene) Diagram() nodelink.Diagram {
	d := nodelink.Diagram{
		Nodes: make([]nodelink.Node, len(s.Nodes)),
		Edges: make([]nodelink.Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		d.Nodes[i] = nodelink.Node{
			Placed:   n.Placed,
			Style:    n.Style,
			Selected: s.Selection.Kind == SelectNode && s.Selection.ID == n.Node.ID,
		}
	}
	for i, e := range s.Edges {
		d.Edges[i] = nodelink.Edge{
			Edge:     e.Edge,
			Style:    e.Style,
			Selected: s.Selection.Kind == SelectEdge && s.Selection.ID == e.ID,
		}
	}
	return d
}

// Detail is the content of the detail view for a selection.
type Detail struct {
	Node      *graph.Node `json:"node,omitempty"`
	Edge      *graph.Edge `json:"edge,omitempty"`
	Page      int         `json:"page,omitempty"`
	Expansion NodeState   `json:"expansion"`
	Degree    int         `json:"degree,omitempty"`
	Neighbors []string    `json:"neighbors,omitempty"`
}

// Result is the outcome of [View.Dispatch].
type Result struct {
	State     InteractionState `json:"state"`
	Selection Selection        `json:"selection"`
	Detail    *Detail          `json:"detail,omitempty"`
	Expanded  bool             `json:"expanded,omitempty"`
}

// Update is pushed to subscribers: a new scene after a merge, or a notice.
type Update struct {
	Scene  *Scene  `json:"scene,omitempty"`
	Notice *Notice `json:"notice,omitempty"`
}

// =============================================================================
// View
// =============================================================================

// View is one exploration session: a graph, its layout and its
// interaction state. A View is safe for concurrent use.
type View struct {
	id     string
	root   string
	ctrl   *Controller
	logger *log.Logger

	external Notifier

	mu       sync.Mutex // guards everything below
	strategy layout.Strategy
	dir      layout.Direction
	resolver *style.Resolver
	machine  *Machine
	subs     map[int]chan Update
	nextSub  int
	closed   bool
}

// NewView returns an empty view. Most callers want [Open].
func NewView(src fetch.Source, opts ViewOptions) *View {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	v := &View{
		id:       uuid.NewString(),
		logger:   logger,
		external: opts.Notifier,
		strategy: opts.Layout,
		dir:      opts.Direction,
		resolver: opts.Resolver,
		machine:  NewMachine(),
		subs:     make(map[int]chan Update),
	}
	if v.strategy == nil {
		v.strategy = layout.DefaultHierarchical()
	}
	if v.dir == "" {
		v.dir = layout.DirectionTB
	}
	if v.resolver == nil {
		v.resolver = style.Default()
	}

	copts := opts.Options
	copts.Logger = logger
	copts.Notifier = v
	v.ctrl = NewController(src, copts)
	v.ctrl.onMerge = func(ctx context.Context, _ store.MergeResult) { v.publish(ctx) }
	return v
}

// Open creates a view and loads the graph rooted at root into it.
func Open(ctx context.Context, src fetch.Source, root string, opts ViewOptions) (*View, error) {
	v := NewView(src, opts)
	v.root = root
	if err := v.ctrl.Load(ctx, root); err != nil {
		v.Close()
		return nil, err
	}
	v.logger.Info("opened view", "view", v.id, "root", root, "nodes", len(v.ctrl.Snapshot().Nodes))
	return v, nil
}

// ID returns the view's unique id.
func (v *View) ID() string { return v.id }

// Root returns the root the view was opened with.
func (v *View) Root() string { return v.root }

// Controller returns the view's expansion controller.
func (v *View) Controller() *Controller { return v.ctrl }

// SetLayout switches the layout strategy and direction. Subscribers
// receive a new scene.
func (v *View) SetLayout(ctx context.Context, s layout.Strategy, dir layout.Direction) {
	v.mu.Lock()
	if s != nil {
		v.strategy = s
	}
	if dir != "" {
		v.dir = dir
	}
	v.mu.Unlock()
	v.publish(ctx)
}

// Snapshot lays out the current graph and returns it as a scene.
func (v *View) Snapshot(ctx context.Context) (Scene, error) {
	if v.ctrl.Closed() {
		return Scene{}, closedErr()
	}

	var (
		frag     graph.Fragment
		pages    = map[string]int{}
		states   = map[string]NodeState{}
		revision uint64
	)
	v.ctrl.Read(func(s *store.State) {
		frag = s.Snapshot()
		for _, n := range frag.Nodes {
			pages[n.ID] = s.Page(n.ID)
			states[n.ID] = v.ctrl.nodeState(n.ID)
		}
		revision = v.ctrl.revision
	})

	v.mu.Lock()
	strategy, dir, resolver := v.strategy, v.dir, v.resolver
	sel, state := v.machine.Selection(), v.machine.State()
	v.mu.Unlock()

	placed, err := strategy.Layout(ctx, frag.Nodes, frag.Edges, dir)
	if err != nil {
		return Scene{}, errs.Wrap(errs.ErrCodeInternal, err, "could not lay out the graph")
	}

	scene := Scene{
		Nodes:     make([]SceneNode, len(placed)),
		Edges:     make([]SceneEdge, len(frag.Edges)),
		Layout:    strategy.Name(),
		Direction: dir,
		Selection: sel,
		State:     state,
		Revision:  revision,
	}
	for i, p := range placed {
		scene.Nodes[i] = SceneNode{
			Placed:    p,
			Style:     resolver.ResolveNode(p.Node),
			Page:      pages[p.Node.ID],
			Expansion: states[p.Node.ID],
		}
	}
	for i, e := range frag.Edges {
		scene.Edges[i] = SceneEdge{Edge: e, Style: resolver.ResolveEdge(e)}
	}
	return scene, nil
}

// Expand expands nodeID; see [Controller.Expand].
func (v *View) Expand(ctx context.Context, nodeID string) error {
	return v.ctrl.Expand(ctx, nodeID)
}

// Dispatch feeds a gesture to the interaction machine and runs the
// resulting effects. Gestures naming an unknown node or edge are rejected
// before any transition.
func (v *View) Dispatch(ctx context.Context, ev Event) (Result, error) {
	if v.ctrl.Closed() {
		return Result{}, closedErr()
	}
	if ev.Kind.needsTarget() {
		if err := v.checkTarget(ev); err != nil {
			return Result{}, err
		}
	}

	v.mu.Lock()
	effects := v.machine.Handle(ev)
	res := Result{State: v.machine.State(), Selection: v.machine.Selection()}
	v.mu.Unlock()

	for _, eff := range effects {
		switch eff.Kind {
		case EffectOpenDetail:
			d, err := v.Detail(eff.Target)
			if err != nil {
				return res, err
			}
			res.Detail = &d
		case EffectCloseDetail:
			res.Detail = nil
		case EffectExpand:
			err := v.ctrl.Expand(ctx, eff.Target.ID)
			if err != nil && !errors.Is(err, ErrExpansionInFlight) {
				return res, err
			}
			res.Expanded = err == nil
		}
	}
	return res, nil
}

func (v *View) checkTarget(ev Event) error {
	var ok bool
	v.ctrl.Read(func(s *store.State) {
		if ev.Kind == LeftClickEdge {
			_, ok = s.Edge(ev.Target)
			return
		}
		ok = s.HasNode(ev.Target)
	})
	switch {
	case ok:
		return nil
	case ev.Kind == LeftClickEdge:
		return errs.Wrap(errs.ErrCodeNotFound, ErrUnknownEdge, "edge %s is not in the graph", ev.Target)
	default:
		return errs.Wrap(errs.ErrCodeNodeNotFound, ErrUnknownNode, "node %s is not in the graph", ev.Target)
	}
}

// Detail returns the detail content for sel.
func (v *View) Detail(sel Selection) (Detail, error) {
	var (
		d     Detail
		found bool
	)
	v.ctrl.Read(func(s *store.State) {
		switch sel.Kind {
		case SelectNode:
			n, ok := s.Node(sel.ID)
			if !ok {
				return
			}
			found = true
			node := *n
			d = Detail{
				Node:      &node,
				Page:      s.Page(sel.ID),
				Expansion: v.ctrl.nodeState(sel.ID),
				Degree:    s.Degree(sel.ID),
				Neighbors: s.Neighbors(sel.ID),
			}
		case SelectEdge:
			e, ok := s.Edge(sel.ID)
			if !ok {
				return
			}
			found = true
			edge := *e
			d = Detail{Edge: &edge}
		}
	})
	if !found {
		return Detail{}, errs.New(errs.ErrCodeNotFound, "nothing selected with id %q", sel.ID)
	}
	return d, nil
}

// State returns the interaction state and selection.
func (v *View) State() (InteractionState, Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine.State(), v.machine.Selection()
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe returns a channel of updates and a function that cancels the
// subscription. Updates that do not fit the channel buffer are dropped;
// every scene is complete, so a slow reader only misses intermediate
// states. The channel is closed by cancel or by [View.Close].
func (v *View) Subscribe() (<-chan Update, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan Update, subscriberBuffer)
	if v.closed {
		close(ch)
		return ch, func() {}
	}
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
		})
	}
}

// Notify implements [Notifier] by forwarding n to subscribers and to the
// notifier given in the options.
func (v *View) Notify(n Notice) {
	v.broadcast(Update{Notice: &n})
	if v.external != nil {
		v.external.Notify(n)
	}
}

func (v *View) publish(ctx context.Context) {
	v.mu.Lock()
	idle := len(v.subs) == 0
	v.mu.Unlock()
	if idle {
		return
	}
	scene, err := v.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, ErrClosed) {
			v.logger.Error("layout after merge failed", "view", v.id, "err", err)
		}
		return
	}
	v.broadcast(Update{Scene: &scene})
}

func (v *View) broadcast(u Update) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, ch := range v.subs {
		select {
		case ch <- u:
		default:
			v.logger.Debug("subscriber lagging, update dropped", "view", v.id, "subscriber", id)
		}
	}
}

// Close ends the session. In-flight expansions complete as no-ops and all
// subscriptions are closed. Close is idempotent.
func (v *View) Close() {
	v.ctrl.Close()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		close(ch)
		delete(v.subs, id)
	}
	v.logger.Debug("closed view", "view", v.id)
}

func closedErr() error {
	return errs.Wrap(errs.ErrCodeViewClosed, ErrClosed, "this exploration has ended")
}

// String identifies the view in logs.
func (v *View) String() string { return fmt.Sprintf("view %s (%s)", v.id, v.root) }
