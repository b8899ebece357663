// Package observability lets the binary plug instrumentation into the
// pipeline, cache and HTTP layers without those packages importing a
// metrics backend.
//
// Hooks are registered once at startup; libraries call the registered hooks
// and default to no-ops:
//
//	metrics.NewRegistry().Install() // sets all three hook kinds
//	...
//	observability.Pipeline().OnBuildComplete(ctx, mode, nodes, edges, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	// OnBuildComplete fires after a flow graph is built.
	OnBuildComplete(ctx context.Context, mode string, nodes, edges int, duration time.Duration)

	// OnRenderComplete fires once per rendered (not cached) format.
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)

	// OnEmptyResult fires when a selection produced no diagram.
	OnEmptyResult(ctx context.Context)
}

// CacheHooks receives events from cache operations. kind is "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
	OnCacheError(ctx context.Context, kind, op string, err error)
}

// HTTPHooks receives events from the dashboard server.
type HTTPHooks interface {
	// OnResponse records a served request. route is the router pattern.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, int, time.Duration) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnEmptyResult(context.Context)                                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)                  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                 {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)             {}
func (NoopCacheHooks) OnCacheError(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
