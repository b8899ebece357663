package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/observability"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/weights"
)

// Runner executes the pipeline against one loaded table.
//
// The table and precursor map are read-only, so a Runner is safe for
// concurrent use as long as its Cache is.
type Runner struct {
	Table      *weights.Table
	Precursors flow.PrecursorMap
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger

	// TTL applies to cached artifacts. Zero uses DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer and a nil precursor map uses DefaultPrecursors.
func NewRunner(t *weights.Table, p flow.PrecursorMap, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if p == nil {
		p = flow.DefaultPrecursors()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	if dangling := p.Dangling(t); len(dangling) > 0 {
		logger.Debug("precursor successors missing from table", "subjects", dangling)
	}
	return &Runner{Table: t, Precursors: p, Cache: c, Keyer: keyer, Logger: logger}
}

// Select applies the branch and program filters, then the focus filter.
// It validates a copy of opts; callers that read derived options afterwards
// must validate their own.
func (r *Runner) Select(opts Options) (*weights.Table, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	t := r.Table
	if opts.Branch != "" {
		t = t.FilterBranch(opts.Branch, opts.match)
	}
	if len(opts.Programs) > 0 {
		t = t.FilterPrograms(opts.Programs...)
	}
	if id := opts.FocusID(); id != nil {
		t = flow.Focus(t, *id, r.Precursors)
	}
	return t, nil
}

// Build selects and builds the flow graph without rendering it.
func (r *Runner) Build(ctx context.Context, opts Options) (*flow.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	t, err := r.Select(opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	g := flow.Build(t, r.Precursors, opts.FlowOptions())
	observability.Pipeline().OnBuildComplete(ctx, opts.Mode, g.NodeCount(), g.EdgeCount(), time.Since(start))
	return g, nil
}

// Render runs the full pipeline. An empty selection yields a Result with
// Empty set and no artifacts.
func (r *Runner) Render(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	selected, err := r.Select(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Artifacts: make(map[render.Format][]byte)}
	res.Stats.Rows = selected.Len()

	buildStart := time.Now()
	g := flow.Build(selected, r.Precursors, opts.FlowOptions())
	res.Stats.BuildTime = time.Since(buildStart)
	res.Graph = g
	res.Stats.Stats = g.Stats
	res.Stats.Nodes = g.NodeCount()
	res.Stats.Edges = g.EdgeCount()
	observability.Pipeline().OnBuildComplete(ctx, opts.Mode, res.Stats.Nodes, res.Stats.Edges, res.Stats.BuildTime)

	logger.Debug("built graph",
		"rows", res.Stats.Rows,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"truncated", g.Stats.Truncated,
		"duration", res.Stats.BuildTime)

	if g.Empty() {
		res.Empty = true
		observability.Pipeline().OnEmptyResult(ctx)
		logger.Info("no data for selection", "branch", opts.Branch, "focus", opts.Focus)
		return res, nil
	}

	res.DOT = DOT(g, opts)
	res.CacheInfo.Key = r.Keyer.GraphKey(r.Table.Hash(), opts.GraphKeyOpts())

	renderStart := time.Now()
	allHit := true
	for _, f := range opts.RenderFormats() {
		if _, done := res.Artifacts[f]; done {
			continue
		}
		data, hit, err := r.artifact(ctx, res, f, &opts, logger)
		if err != nil {
			return nil, err
		}
		allHit = allHit && hit
		res.Artifacts[f] = data
	}
	res.CacheInfo.RenderHit = allHit
	res.Stats.RenderTime = time.Since(renderStart)

	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", allHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// artifact returns one format, from cache when possible.
func (r *Runner) artifact(ctx context.Context, res *Result, f render.Format, opts *Options, logger *log.Logger) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(res.CacheInfo.Key, opts.ArtifactKeyOpts(f))
	hooks := observability.Cache()

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			res.CacheInfo.Errors++
			hooks.OnCacheError(ctx, "artifact", "get", err)
			logger.Warn("cache read failed", "format", f, "err", err)
		case hit:
			hooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		default:
			hooks.OnCacheMiss(ctx, "artifact")
		}
	}

	start := time.Now()
	data, err := RenderArtifact(ctx, res.DOT, f)
	observability.Pipeline().OnRenderComplete(ctx, string(f), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		res.CacheInfo.Errors++
		hooks.OnCacheError(ctx, "artifact", "set", err)
		logger.Warn("cache write failed", "format", f, "err", err)
	} else {
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultTTL
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
