package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildComplete(ctx, "strict", 10, 12, time.Millisecond)
	p.OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	p.OnEmptyResult(ctx)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)
	c.OnCacheError(ctx, "artifact", "get", errors.New("down"))

	NoopHTTPHooks{}.OnResponse(ctx, "GET", "/diagram.svg", 200, time.Millisecond)
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() default is not NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() default is not NoopHTTPHooks")
	}

	p, c, h := &testPipelineHooks{}, &testCacheHooks{}, &testHTTPHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)
	SetHTTPHooks(h)
	if Pipeline() != PipelineHooks(p) {
		t.Error("SetPipelineHooks() not applied")
	}
	if Cache() != CacheHooks(c) {
		t.Error("SetCacheHooks() not applied")
	}
	if HTTP() != HTTPHooks(h) {
		t.Error("SetHTTPHooks() not applied")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(p) {
		t.Error("SetPipelineHooks(nil) replaced hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() did not restore pipeline hooks")
	}
}
