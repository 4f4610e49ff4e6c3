package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExpansionHooks{}
	e.OnExpandStart(ctx, "42", 1)
	e.OnExpandComplete(ctx, "42", 1, 5, time.Second, nil)
	e.OnExpandDiscarded(ctx, "42")

	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, "hierarchical", 12)
	l.OnLayoutComplete(ctx, "hierarchical", time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "claim")
	c.OnCacheSet(ctx, "graph", 1024)

	f := NoopFetchHooks{}
	f.OnRequest(ctx, "GET", "api.example.com", "/api/graph/node/1/neighbors")
	f.OnResponse(ctx, "GET", "api.example.com", "/api/graph/node/1/neighbors", 200, time.Second)
	f.OnError(ctx, "GET", "api.example.com", "/api/graph/node/1/neighbors", errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Expansion().(NoopExpansionHooks); !ok {
		t.Error("Expansion() should return NoopExpansionHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Fetch() should return NoopFetchHooks by default")
	}

	customExpansion := &testExpansionHooks{}
	SetExpansionHooks(customExpansion)
	if Expansion() != customExpansion {
		t.Error("SetExpansionHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customFetch := &testFetchHooks{}
	SetFetchHooks(customFetch)
	if Fetch() != customFetch {
		t.Error("SetFetchHooks should set custom hooks")
	}

	Reset()
	if _, ok := Expansion().(NoopExpansionHooks); !ok {
		t.Error("Reset() should restore NoopExpansionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testExpansionHooks{}
	SetExpansionHooks(custom)
	SetExpansionHooks(nil)

	if Expansion() != custom {
		t.Error("SetExpansionHooks(nil) should be ignored")
	}

	Reset()
}

type testExpansionHooks struct{ NoopExpansionHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testFetchHooks struct{ NoopFetchHooks }
