// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about fetches, expansions, layouts and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, which keeps the engine
// packages free of any metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExpansionHooks(&myExpansionHooks{})
//	    observability.SetFetchHooks(&myFetchHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Expansion().OnExpandStart(ctx, nodeID, page)
//	// ... fetch and merge ...
//	observability.Expansion().OnExpandComplete(ctx, nodeID, page, added, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Expansion Hooks
// =============================================================================

// ExpansionHooks receives events from the expansion controller.
type ExpansionHooks interface {
	// OnExpandStart records the start of a neighbour fetch for page.
	OnExpandStart(ctx context.Context, nodeID string, page int)

	// OnExpandComplete records the outcome of an expansion. added is the
	// number of nodes merged into the view.
	OnExpandComplete(ctx context.Context, nodeID string, page, added int, duration time.Duration, err error)

	// OnExpandDiscarded records a completed fetch whose view was already closed.
	OnExpandDiscarded(ctx context.Context, nodeID string)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout strategies.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, strategy string, nodeCount int)
	OnLayoutComplete(ctx context.Context, strategy string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from the claim API client.
type FetchHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExpansionHooks is a no-op implementation of ExpansionHooks.
type NoopExpansionHooks struct{}

func (NoopExpansionHooks) OnExpandStart(context.Context, string, int) {}
func (NoopExpansionHooks) OnExpandComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopExpansionHooks) OnExpandDiscarded(context.Context, string) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopFetchHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopFetchHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	expansionHooks ExpansionHooks = NoopExpansionHooks{}
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	fetchHooks     FetchHooks     = NoopFetchHooks{}
	hooksMu        sync.RWMutex
)

// SetExpansionHooks registers custom expansion hooks.
func SetExpansionHooks(h ExpansionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		expansionHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetFetchHooks registers custom fetch hooks.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// Expansion returns the registered expansion hooks.
func Expansion() ExpansionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return expansionHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	expansionHooks = NoopExpansionHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	fetchHooks = NoopFetchHooks{}
}
