package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/pondera/pkg/observability"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.HTTPRequestsTotal == nil || r.RendersTotal == nil || r.CacheOpsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.Prometheus() == nil {
		t.Fatal("Prometheus() = nil")
	}
}

func TestHooksRecord(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Install()
	defer observability.Reset()

	observability.Pipeline().OnBuildComplete(ctx, "strict", 12, 20, time.Millisecond)
	observability.Pipeline().OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	observability.Pipeline().OnRenderComplete(ctx, "svg", time.Millisecond, errors.New("boom"))
	observability.Pipeline().OnEmptyResult(ctx)
	observability.Cache().OnCacheHit(ctx, "artifact")
	observability.Cache().OnCacheHit(ctx, "artifact")
	observability.Cache().OnCacheSet(ctx, "artifact", 100)
	observability.Cache().OnCacheError(ctx, "artifact", "get", errors.New("down"))
	observability.HTTP().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"built", r.GraphsBuiltTotal.WithLabelValues("strict"), 1},
		{"render ok", r.RendersTotal.WithLabelValues("svg", "success"), 1},
		{"render error", r.RendersTotal.WithLabelValues("svg", "error"), 1},
		{"empty", r.EmptyResultsTotal, 1},
		{"hits", r.CacheOpsTotal.WithLabelValues("artifact", "hit"), 2},
		{"get errors", r.CacheOpsTotal.WithLabelValues("artifact", "get_error"), 1},
		{"bytes", r.CacheStoredBytes, 100},
		{"http", r.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, tt.c); got != tt.want {
				t.Errorf("counter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.EmptyResultsTotal.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "pondera_empty_results_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
