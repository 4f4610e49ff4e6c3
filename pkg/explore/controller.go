package explore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/fetch"
	"github.com/matzehuels/claimgraph/pkg/graph"
	"github.com/matzehuels/claimgraph/pkg/normalize"
	"github.com/matzehuels/claimgraph/pkg/observability"
	"github.com/matzehuels/claimgraph/pkg/store"
)

var (
	// ErrUnknownNode is returned when an operation names a node that is not
	// in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when a gesture names an edge that is not in
	// the graph.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrExpansionInFlight is returned by [Controller.Expand] while the same
	// node is still being expanded. Callers may treat it as a no-op.
	ErrExpansionInFlight = errors.New("expansion already in flight")

	// ErrGraphLimit is returned when the graph has reached Limits.MaxNodes.
	ErrGraphLimit = errors.New("graph size limit reached")

	// ErrClosed is returned by operations on a closed view.
	ErrClosed = errors.New("view closed")
)

// Defaults for [Options].
const (
	DefaultMaxNodes           = 30
	DefaultMaxNewPerExpansion = 5
	DefaultMaxInitialNodes    = 7
	DefaultPageSize           = 5
	DefaultConcurrency        = 4
)

// Limits bounds graph growth. Zero disables a limit.
type Limits struct {
	MaxNodes           int // total nodes in the view
	MaxNewPerExpansion int // new nodes kept from one expansion
	MaxInitialNodes    int // nodes kept from the initial load
}

// DefaultLimits returns the limits used by the web explorer.
func DefaultLimits() Limits {
	return Limits{
		MaxNodes:           DefaultMaxNodes,
		MaxNewPerExpansion: DefaultMaxNewPerExpansion,
		MaxInitialNodes:    DefaultMaxInitialNodes,
	}
}

// room returns how many new nodes an expansion may add to a graph of count
// nodes, or -1 for no bound.
func (l Limits) room(count int) int {
	r := -1
	if l.MaxNewPerExpansion > 0 {
		r = l.MaxNewPerExpansion
	}
	if l.MaxNodes > 0 {
		left := max(l.MaxNodes-count, 0)
		if r < 0 || left < r {
			r = left
		}
	}
	return r
}

func (l Limits) full(count int) bool {
	return l.MaxNodes > 0 && count >= l.MaxNodes
}

// RootKind selects which endpoints a view loads from.
type RootKind string

const (
	// RootURI loads /api/graph/{uri} and expands via node neighbours.
	RootURI RootKind = "uri"
	// RootClaim loads /api/claim_graph/{id} and expands via the claim
	// expand endpoint.
	RootClaim RootKind = "claim"
)

// ParseRootKind converts a request string into a RootKind. Empty means RootURI.
func ParseRootKind(s string) (RootKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uri", "node":
		return RootURI, nil
	case "claim":
		return RootClaim, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown root kind %q (want uri or claim)", s)
}

// NodeState is the expansion state of a single node.
type NodeState int

const (
	Collapsed NodeState = iota
	Expanding
	Expanded
)

func (s NodeState) String() string {
	switch s {
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	default:
		return "collapsed"
	}
}

// MarshalText encodes the state by name.
func (s NodeState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a name written by MarshalText.
func (s *NodeState) UnmarshalText(b []byte) error {
	for _, st := range []NodeState{Collapsed, Expanding, Expanded} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown node state %q", b)
}

// Options configures a [Controller].
type Options struct {
	Kind        RootKind
	Limits      Limits
	PageSize    int // neighbours requested per page
	Concurrency int // parallel fetches in ExpandAll
	MergePolicy store.MergePolicy
	Notifier    Notifier
	Logger      *log.Logger
}

// DefaultOptions returns options with the default limits and page size.
func DefaultOptions() Options {
	return Options{
		Kind:        RootURI,
		Limits:      DefaultLimits(),
		PageSize:    DefaultPageSize,
		Concurrency: DefaultConcurrency,
	}
}

// Controller fetches and merges pages of neighbours into a [store.State].
//
// All access to the state goes through the controller's lock, which is
// never held across a fetch. A Controller is safe for concurrent use.
type Controller struct {
	src         fetch.Source
	kind        RootKind
	limits      Limits
	pageSize    int
	concurrency int
	notifier    Notifier
	logger      *log.Logger

	// onMerge runs after every merge that changed the state, outside the lock.
	onMerge func(ctx context.Context, res store.MergeResult)

	mu        sync.Mutex
	state     *store.State
	expanding map[string]struct{}
	revision  uint64 // merges that changed the state
	closed    bool
}

// NewController returns a controller over an empty state.
func NewController(src fetch.Source, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discard{}
	}
	c := &Controller{
		src:         src,
		kind:        opts.Kind,
		limits:      opts.Limits,
		pageSize:    opts.PageSize,
		concurrency: opts.Concurrency,
		notifier:    notifier,
		logger:      logger,
		state:       store.New(store.WithLogger(logger), store.WithPolicy(opts.MergePolicy)),
		expanding:   make(map[string]struct{}),
	}
	if c.kind == "" {
		c.kind = RootURI
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	return c
}

// =============================================================================
// Initial load
// =============================================================================

// Load fetches the graph rooted at root and merges at most
// Limits.MaxInitialNodes of its nodes. An empty root loads the default graph.
func (c *Controller) Load(ctx context.Context, root string) error {
	if c.Closed() {
		return errs.Wrap(errs.ErrCodeViewClosed, ErrClosed, "this exploration has ended")
	}

	var (
		payload []byte
		err     error
	)
	if c.kind == RootClaim {
		payload, err = c.src.ClaimGraph(ctx, root)
	} else {
		payload, err = c.src.Graph(ctx, root)
	}
	var frag graph.Fragment
	if err == nil {
		frag, err = normalize.Normalize(payload)
	}
	if err != nil {
		err = classify(err, MsgLoadFailed)
		c.logger.Error("initial load failed", "root", root, "err", err)
		c.notifier.Notify(Notice{Level: LevelError, Message: errs.UserMessage(err)})
		return err
	}

	if n := c.limits.MaxInitialNodes; n > 0 && len(frag.Nodes) > n {
		keep := make(map[string]struct{}, n)
		for _, node := range frag.Nodes[:n] {
			keep[node.ID] = struct{}{}
		}
		frag = frag.Restrict(func(node graph.Node) bool {
			_, ok := keep[node.ID]
			return ok
		})
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	res := c.state.MergeFragment(frag)
	if res.Changed() {
		c.revision++
	}
	c.mu.Unlock()

	c.logger.Debug("initial load merged", "root", root, "nodes", len(res.AddedNodes), "edges", len(res.AddedEdges))
	if res.Changed() && c.onMerge != nil {
		c.onMerge(ctx, res)
	}
	return nil
}

// =============================================================================
// Expansion
// =============================================================================

// Expand fetches the next page of nodeID's neighbours and merges it.
//
// The node's page advances by one only when the fetch and normalization
// succeed. On failure the state is unchanged, an error notice is sent and
// the returned error carries NETWORK_ERROR, TIMEOUT or INVALID_FORMAT.
func (c *Controller) Expand(ctx context.Context, nodeID string) error {
	page, err := c.begin(nodeID)
	if err != nil {
		if errors.Is(err, ErrGraphLimit) {
			c.notifier.Notify(Notice{Level: LevelInfo, Message: MsgGraphLimit, NodeID: nodeID})
		}
		return err
	}

	hooks := observability.Expansion()
	hooks.OnExpandStart(ctx, nodeID, page)
	start := time.Now()

	frag, err := c.fetchPage(ctx, nodeID, page)
	if err != nil {
		c.end(nodeID)
		err = classify(err, MsgExpandFailed)
		c.logger.Error("expansion failed", "node", nodeID, "page", page, "err", err)
		c.notifier.Notify(Notice{Level: LevelError, Message: errs.UserMessage(err), NodeID: nodeID})
		hooks.OnExpandComplete(ctx, nodeID, page, 0, time.Since(start), err)
		return err
	}

	res, err := c.apply(nodeID, page, frag)
	switch {
	case errors.Is(err, ErrClosed):
		c.logger.Debug("discarding expansion for closed view", "node", nodeID, "page", page)
		hooks.OnExpandDiscarded(ctx, nodeID)
		return nil
	case err != nil:
		c.notifier.Notify(Notice{Level: LevelInfo, Message: MsgGraphLimit, NodeID: nodeID})
		hooks.OnExpandComplete(ctx, nodeID, page, 0, time.Since(start), err)
		return err
	}

	hooks.OnExpandComplete(ctx, nodeID, page, len(res.AddedNodes), time.Since(start), nil)
	c.logger.Debug("expanded node", "node", nodeID, "page", page,
		"nodes", len(res.AddedNodes), "edges", len(res.AddedEdges), "dropped", len(res.Dropped))

	if len(res.AddedNodes) == 0 {
		c.notifier.Notify(Notice{Level: LevelInfo, Message: MsgNoNewNodes, NodeID: nodeID})
	}
	if res.Changed() && c.onMerge != nil {
		c.onMerge(ctx, res)
	}
	return nil
}

// begin checks preconditions and marks nodeID as expanding. It returns the
// page to request.
func (c *Controller) begin(nodeID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, errs.Wrap(errs.ErrCodeViewClosed, ErrClosed, "this exploration has ended")
	}
	if !c.state.HasNode(nodeID) {
		return 0, errs.Wrap(errs.ErrCodeNodeNotFound, ErrUnknownNode, "node %s is not in the graph", nodeID)
	}
	if _, busy := c.expanding[nodeID]; busy {
		return 0, errs.Wrap(errs.ErrCodeExpansionInFlight, ErrExpansionInFlight, "node %s is already loading", nodeID)
	}
	if c.limits.full(c.state.NodeCount()) {
		return 0, errs.Wrap(errs.ErrCodeGraphLimit, ErrGraphLimit, MsgGraphLimit)
	}
	c.expanding[nodeID] = struct{}{}
	return c.state.Page(nodeID) + 1, nil
}

func (c *Controller) end(nodeID string) {
	c.mu.Lock()
	delete(c.expanding, nodeID)
	c.mu.Unlock()
}

func (c *Controller) fetchPage(ctx context.Context, nodeID string, page int) (graph.Fragment, error) {
	var (
		payload []byte
		err     error
	)
	if c.kind == RootClaim {
		payload, err = c.src.ExpandClaim(ctx, nodeID, page, c.pageSize)
	} else {
		payload, err = c.src.Neighbors(ctx, nodeID, page, c.pageSize)
	}
	if err != nil {
		return graph.Fragment{}, err
	}
	return normalize.Normalize(payload)
}

// apply merges a fetched page and advances the node's page. It fails with
// ErrGraphLimit when concurrent expansions filled the graph meanwhile.
func (c *Controller) apply(nodeID string, page int, frag graph.Fragment) (store.MergeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.expanding, nodeID)

	if c.closed {
		return store.MergeResult{}, ErrClosed
	}
	room := c.limits.room(c.state.NodeCount())
	if room == 0 && c.hasNewNodes(frag) {
		return store.MergeResult{}, errs.Wrap(errs.ErrCodeGraphLimit, ErrGraphLimit, MsgGraphLimit)
	}

	res := c.state.MergeFragment(c.admit(frag, room))
	if res.Changed() {
		c.revision++
	}
	if err := c.state.SetPage(nodeID, page); err != nil {
		// Unreachable while the in-flight guard holds.
		c.logger.Warn("page not advanced", "node", nodeID, "err", err)
	}
	return res, nil
}

func (c *Controller) hasNewNodes(frag graph.Fragment) bool {
	return slices.ContainsFunc(frag.Nodes, func(n graph.Node) bool { return !c.state.HasNode(n.ID) })
}

// admit keeps at most room nodes that are new to the state, in fragment
// order. Edges touching a node cut here are removed; the rest go to the
// store, which drops edges whose endpoints it cannot resolve. A negative
// room keeps everything.
func (c *Controller) admit(frag graph.Fragment, room int) graph.Fragment {
	if room < 0 {
		return frag
	}
	added := 0
	return frag.Restrict(func(n graph.Node) bool {
		if c.state.HasNode(n.ID) {
			return true
		}
		if added >= room {
			return false
		}
		added++
		return true
	})
}

// ExpandAll expands distinct nodes concurrently, at most Concurrency at a
// time. Nodes already in flight are skipped. The returned error joins the
// failures of individual expansions.
func (c *Controller) ExpandAll(ctx context.Context, nodeIDs []string) error {
	seen := make(map[string]struct{}, len(nodeIDs))
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []error
	)
	g.SetLimit(c.concurrency)
	for _, id := range nodeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		g.Go(func() error {
			err := c.Expand(ctx, id)
			if err != nil && !errors.Is(err, ErrExpansionInFlight) {
				mu.Lock()
				failed = append(failed, fmt.Errorf("expand %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(failed...)
}

// =============================================================================
// Queries
// =============================================================================

// State returns the expansion state of nodeID.
func (c *Controller) State(nodeID string) NodeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodeState(nodeID)
}

func (c *Controller) nodeState(nodeID string) NodeState {
	if _, busy := c.expanding[nodeID]; busy {
		return Expanding
	}
	if c.state.Page(nodeID) > 0 {
		return Expanded
	}
	return Collapsed
}

// Page returns the last successfully fetched page of nodeID, 0 if never
// expanded.
func (c *Controller) Page(nodeID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Page(nodeID)
}

// Read calls fn with the state under the controller's lock. fn must not
// retain the state or call back into the controller.
func (c *Controller) Read(fn func(*store.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state)
}

// Snapshot returns the current nodes and edges in insertion order.
func (c *Controller) Snapshot() graph.Fragment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Revision counts the merges that changed the state.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// Close discards all future completions. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// =============================================================================
// Error classification
// =============================================================================

// classify maps a fetch or normalize failure to a coded error whose user
// message is safe to show.
func classify(err error, fallback string) error {
	var netErr net.Error
	switch {
	case errs.GetCode(err) == errs.ErrCodeRateLimited:
		return errs.Wrap(errs.ErrCodeRateLimited, err, "Too many requests. Please try again shortly.")
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return errs.Wrap(errs.ErrCodeTimeout, err, MsgTimeout)
	case errors.Is(err, normalize.ErrUnsupportedShape), errs.GetCode(err) == errs.ErrCodeInvalidFormat:
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, MsgInvalidFormat)
	default:
		return errs.Wrap(errs.ErrCodeNetwork, err, "%s", fallback)
	}
}
