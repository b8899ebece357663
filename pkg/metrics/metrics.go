// Package metrics exports pondera's Prometheus metrics and implements the
// observability hooks on top of them.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pondera/pkg/observability"
)

// Registry holds all metrics for the application.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GraphsBuiltTotal  *prometheus.CounterVec
	GraphBuildSeconds prometheus.Histogram
	GraphNodes        prometheus.Histogram
	EmptyResultsTotal prometheus.Counter

	RendersTotal  *prometheus.CounterVec
	RenderSeconds *prometheus.HistogramVec

	CacheOpsTotal    *prometheus.CounterVec
	CacheStoredBytes prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "pondera_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pondera_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.GraphsBuiltTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "pondera_graphs_built_total",
		Help: "Flow graphs built, by threshold mode",
	}, []string{"mode"})
	r.GraphBuildSeconds = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "pondera_graph_build_seconds",
		Help:    "Time to build a flow graph",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1},
	})
	r.GraphNodes = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "pondera_graph_nodes",
		Help:    "Nodes per built flow graph",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
	})
	r.EmptyResultsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "pondera_empty_results_total",
		Help: "Selections that produced no diagram",
	})

	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "pondera_renders_total",
		Help: "Rendered artifacts by format and status",
	}, []string{"format", "status"})
	r.RenderSeconds = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pondera_render_seconds",
		Help:    "Graphviz render time by format",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	r.CacheOpsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "pondera_cache_operations_total",
		Help: "Cache operations by kind and result",
	}, []string{"kind", "result"})
	r.CacheStoredBytes = f.NewCounter(prometheus.CounterOpts{
		Name: "pondera_cache_stored_bytes_total",
		Help: "Bytes written to the cache",
	})
	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Install registers r as the pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(pipelineHooks{r})
	observability.SetCacheHooks(cacheHooks{r})
	observability.SetHTTPHooks(httpHooks{r})
}

type pipelineHooks struct{ r *Registry }

func (h pipelineHooks) OnBuildComplete(_ context.Context, mode string, nodes, _ int, d time.Duration) {
	h.r.GraphsBuiltTotal.WithLabelValues(mode).Inc()
	h.r.GraphBuildSeconds.Observe(d.Seconds())
	h.r.GraphNodes.Observe(float64(nodes))
}

func (h pipelineHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	h.r.RenderSeconds.WithLabelValues(format).Observe(d.Seconds())
}

func (h pipelineHooks) OnEmptyResult(context.Context) { h.r.EmptyResultsTotal.Inc() }

type cacheHooks struct{ r *Registry }

func (h cacheHooks) OnCacheHit(_ context.Context, kind string) {
	h.r.CacheOpsTotal.WithLabelValues(kind, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, kind string) {
	h.r.CacheOpsTotal.WithLabelValues(kind, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.r.CacheOpsTotal.WithLabelValues(kind, "set").Inc()
	h.r.CacheStoredBytes.Add(float64(size))
}

func (h cacheHooks) OnCacheError(_ context.Context, kind, op string, _ error) {
	h.r.CacheOpsTotal.WithLabelValues(kind, op+"_error").Inc()
}

type httpHooks struct{ r *Registry }

func (h httpHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
