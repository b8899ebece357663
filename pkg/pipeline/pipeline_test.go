package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pondera/pkg/cache"
	perrors "github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/weights"
)

func sampleTable(t *testing.T) *weights.Table {
	t.Helper()
	tbl, err := weights.New([]string{"Matemáticas_II", "Física", "Biología"},
		weights.Record{Program: "Informática", Branch: "IyA", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.1}},
		weights.Record{Program: "Medicina", Branch: "C", Values: map[string]float64{"Biología": 0.2, "Física": 0.2}},
		weights.Record{Program: "Biología", Branch: "C", Values: map[string]float64{"Biología": 0.2, "Matemáticas_II": 0.1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Mode != "strict" {
		t.Errorf("Mode = %q, want strict", opts.Mode)
	}
	if opts.Match != "exact" {
		t.Errorf("Match = %q, want exact", opts.Match)
	}
	if !slices.Equal(opts.RenderFormats(), []render.Format{render.FormatSVG}) {
		t.Errorf("RenderFormats() = %v, want [svg]", opts.RenderFormats())
	}
	if opts.FocusID() != nil {
		t.Errorf("FocusID() = %v, want nil", opts.FocusID())
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsPresets(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantMode  flow.Mode
		wantCap   int
		wantGroup bool
	}{
		{"whole table", Options{}, flow.Strict, 0, false},
		{"branch view", Options{Branch: "C"}, flow.Inclusive, 0, false},
		{"global view", Options{Global: true}, flow.Strict, DefaultGlobalDensityCap, true},
		{"global explicit cap", Options{Global: true, DensityCap: 3}, flow.Strict, 3, true},
		{"explicit mode wins", Options{Branch: "C", Mode: "strict"}, flow.Strict, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			fo := opts.FlowOptions()
			if fo.Mode != tt.wantMode || fo.DensityCap != tt.wantCap || fo.GroupByBranch != tt.wantGroup {
				t.Errorf("FlowOptions() = %+v, want mode %v cap %d group %v", fo, tt.wantMode, tt.wantCap, tt.wantGroup)
			}
		})
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"mode", Options{Mode: "loose"}, perrors.ErrCodeInvalidMode},
		{"match", Options{Match: "fuzzy"}, perrors.ErrCodeInvalidInput},
		{"cap", Options{DensityCap: -1}, perrors.ErrCodeInvalidInput},
		{"focus", Options{Focus: "Matemáticas_II"}, perrors.ErrCodeInvalidNode},
		{"format", Options{Formats: []string{"pdf"}}, perrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if !perrors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Global: true, Formats: []string{"jpeg", "dot"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.GraphKeyOpts()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	second := opts.GraphKeyOpts()
	if first.Mode != second.Mode || first.DensityCap != second.DensityCap {
		t.Errorf("second call changed options: %+v vs %+v", first, second)
	}
	if !slices.Equal(opts.RenderFormats(), []render.Format{render.FormatJPG, render.FormatDOT}) {
		t.Errorf("RenderFormats() = %v", opts.RenderFormats())
	}
}

func TestRunnerSelect(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"all", Options{}, []string{"Informática", "Medicina", "Biología"}},
		{"branch", Options{Branch: "C"}, []string{"Medicina", "Biología"}},
		{"programs", Options{Programs: []string{"Medicina"}}, []string{"Medicina"}},
		{"focus subject", Options{Focus: "bach2:Física"}, []string{"Informática", "Medicina"}},
		{"branch then focus", Options{Branch: "C", Focus: "bach2:Física"}, []string{"Medicina"}},
		{"focus program", Options{Focus: "grado:Biología"}, []string{"Biología"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Select(tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got.Programs(), tt.want) {
				t.Errorf("Select() programs = %v, want %v", got.Programs(), tt.want)
			}
		})
	}
}

func TestRunnerRenderDOT(t *testing.T) {
	ctx := context.Background()
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(sampleTable(t), nil, mem, nil, quietLogger())
	opts := Options{Branch: "C", Formats: []string{"dot"}, LinkBase: "/"}

	res, err := r.Render(ctx, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Empty {
		t.Fatal("Render() Empty = true")
	}
	if !strings.HasPrefix(res.DOT, "digraph") {
		t.Errorf("DOT = %q, want digraph", res.DOT)
	}
	if string(res.Artifacts[render.FormatDOT]) != res.DOT {
		t.Error("dot artifact differs from DOT source")
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render reported a cache hit")
	}
	if res.Stats.Rows != 2 || res.Stats.Programs != 2 {
		t.Errorf("Stats = %+v, want 2 rows and 2 programs", res.Stats)
	}

	again, err := r.Render(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second render missed the cache")
	}
	if again.CacheInfo.Key != res.CacheInfo.Key {
		t.Error("cache key not stable across renders")
	}

	refreshed, err := r.Render(ctx, Options{Branch: "C", Formats: []string{"dot"}, LinkBase: "/", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh render read from cache")
	}
}

func TestRunnerRenderSVG(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	res, err := r.Render(context.Background(), Options{Global: true})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	svg := string(res.Artifacts[render.FormatSVG])
	if !strings.Contains(svg, "<svg") {
		t.Errorf("svg artifact missing <svg: %.80q", svg)
	}
}

func TestRunnerRenderEmpty(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	res, err := r.Render(context.Background(), Options{Branch: "AyH"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !res.Empty {
		t.Error("Empty = false for branch without rows")
	}
	if len(res.Artifacts) != 0 || res.DOT != "" {
		t.Errorf("empty result carries output: %d artifacts", len(res.Artifacts))
	}
}

func TestRunnerRenderInvalidOptions(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	if _, err := r.Render(context.Background(), Options{Mode: "nope"}); err == nil {
		t.Error("Render() with bad mode succeeded")
	}
}

func TestRunnerBuild(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	tests := []struct {
		name        string
		opts        Options
		secondYear  int
		weightEdges int
	}{
		{"strict", Options{}, 3, 4},
		{"inclusive", Options{Mode: "inclusive"}, 3, 6},
		{"branch defaults to inclusive", Options{Branch: "C"}, 3, 4},
		{"branch strict", Options{Branch: "C", Mode: "strict"}, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := r.Build(t.Context(), tt.opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if g.Stats.SecondYear != tt.secondYear || g.Stats.WeightEdges != tt.weightEdges {
				t.Errorf("Stats = %+v, want %d second-year and %d weight edges", g.Stats, tt.secondYear, tt.weightEdges)
			}
		})
	}
}

func TestRunnerBuildMatchesRender(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	opts := Options{Mode: "inclusive", Formats: []string{"dot"}}

	g, err := r.Build(t.Context(), opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Render(t.Context(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if g.Stats != res.Graph.Stats {
		t.Errorf("Build() stats = %+v, Render() stats = %+v", g.Stats, res.Graph.Stats)
	}
}

func TestRunnerBuildFocusHighlight(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	g, err := r.Build(t.Context(), Options{Focus: "bach2:Física"})
	if err != nil {
		t.Fatal(err)
	}
	n, ok := g.Node("bach2:Física")
	if !ok {
		t.Fatal("focused subject missing from graph")
	}
	if !n.Highlight || n.Color != flow.ColorFocus {
		t.Errorf("focused node = %+v, want highlighted", n)
	}
	if g.Stats.Programs != 2 {
		t.Errorf("Programs = %d, want 2", g.Stats.Programs)
	}
}

func TestRunnerBuildGlobalCap(t *testing.T) {
	records := make([]weights.Record, 12)
	for i := range records {
		records[i] = weights.Record{
			Program: fmt.Sprintf("Grado %02d", i),
			Branch:  "SD",
			Values:  map[string]float64{"Biología": 0.2},
		}
	}
	tbl, err := weights.New([]string{"Biología"}, records...)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(tbl, nil, nil, nil, quietLogger())

	g, err := r.Build(t.Context(), Options{Global: true})
	if err != nil {
		t.Fatal(err)
	}
	if g.Stats.WeightEdges != DefaultGlobalDensityCap || g.Stats.Truncated != 2 {
		t.Errorf("global Stats = %+v, want %d weight edges and 2 truncated", g.Stats, DefaultGlobalDensityCap)
	}

	g, err = r.Build(t.Context(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Stats.WeightEdges != 12 || g.Stats.Truncated != 0 {
		t.Errorf("uncapped Stats = %+v, want 12 weight edges", g.Stats)
	}
}

func TestRunnerBuildInvalidOptions(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	_, err := r.Build(t.Context(), Options{Mode: "loose"})
	if !perrors.Is(err, perrors.ErrCodeInvalidMode) {
		t.Errorf("Build() error = %v, want %s", err, perrors.ErrCodeInvalidMode)
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(context.Context, string) error { return nil }
func (brokenCache) Close() error                         { return nil }

func TestRunnerIgnoresCacheFailures(t *testing.T) {
	r := NewRunner(sampleTable(t), nil, brokenCache{}, nil, quietLogger())
	res, err := r.Render(context.Background(), Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(res.Artifacts[render.FormatDOT]) == 0 {
		t.Error("no artifact rendered")
	}
	if res.CacheInfo.Errors != 2 {
		t.Errorf("CacheInfo.Errors = %d, want 2", res.CacheInfo.Errors)
	}
}

func TestCacheKeyTracksOptions(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(sampleTable(t), nil, nil, nil, quietLogger())
	a, err := r.Render(ctx, Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(ctx, Options{Formats: []string{"dot"}, Mode: "inclusive"})
	if err != nil {
		t.Fatal(err)
	}
	if a.CacheInfo.Key == b.CacheInfo.Key {
		t.Error("mode change kept the same cache key")
	}
}
