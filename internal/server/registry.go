package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/claimgraph/pkg/explore"
)

type entry struct {
	view     *explore.View
	lastUsed time.Time
}

// registry holds the open views. When full, adding a view closes the one
// used least recently.
type registry struct {
	mu     sync.Mutex
	views  map[string]*entry
	max    int
	now    func() time.Time
	logger *log.Logger
}

func newRegistry(limit int, logger *log.Logger) *registry {
	return &registry{
		views:  make(map[string]*entry),
		max:    limit,
		now:    time.Now,
		logger: logger,
	}
}

func (r *registry) add(v *explore.View) {
	r.mu.Lock()
	var evicted *explore.View
	if len(r.views) >= r.max {
		var oldest string
		for id, e := range r.views {
			if oldest == "" || e.lastUsed.Before(r.views[oldest].lastUsed) {
				oldest = id
			}
		}
		evicted = r.views[oldest].view
		delete(r.views, oldest)
	}
	r.views[v.ID()] = &entry{view: v, lastUsed: r.now()}
	r.mu.Unlock()

	if evicted != nil {
		r.logger.Info("evicting least recently used view", "view", evicted.ID())
		evicted.Close()
	}
}

// get returns the view and marks it used.
func (r *registry) get(id string) (*explore.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.views[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.view, true
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	e, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if ok {
		e.view.Close()
	}
	return ok
}

// expire closes views last used before cutoff and returns how many.
func (r *registry) expire(cutoff time.Time) int {
	r.mu.Lock()
	var stale []*explore.View
	for id, e := range r.views {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()
	for _, v := range stale {
		v.Close()
	}
	return len(stale)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range views {
		e.view.Close()
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
