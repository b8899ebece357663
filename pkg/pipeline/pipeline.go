// Package pipeline runs the select → build → render flow that turns a
// weighting table into diagram artifacts.
//
// The same pipeline serves the CLI and the dashboard so both produce
// identical diagrams for identical options. Rendered artifacts are cached
// under keys derived from the table content and every option that changes
// the output; caches are accelerators only and a failing cache never fails a
// render.
//
// # Usage
//
//	runner := pipeline.NewRunner(table, flow.DefaultPrecursors(), c, nil, logger)
//	res, err := runner.Render(ctx, pipeline.Options{Branch: "C", Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	if res.Empty {
//	    fmt.Println("no data")
//	}
//	svg := res.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/weights"
)

const (
	// DefaultGlobalDensityCap bounds programs per subject in the global view.
	DefaultGlobalDensityCap = 10

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 24 * time.Hour
)

// Options selects the table slice and controls how it is drawn.
// The zero value renders the whole table as SVG in strict mode.
type Options struct {
	// Selection
	Branch   string   `json:"branch,omitempty"`
	Match    string   `json:"match,omitempty"` // exact, primary or any
	Programs []string `json:"programs,omitempty"`
	Focus    string   `json:"focus,omitempty"` // node key, e.g. "bach2:Matemáticas_II"

	// Building
	Mode            string `json:"mode,omitempty"` // strict or inclusive
	DensityCap      int    `json:"density_cap,omitempty"`
	ShowZeroWeights bool   `json:"show_zero_weights,omitempty"`
	Global          bool   `json:"global,omitempty"`

	// Rendering
	Formats       []string `json:"formats,omitempty"`
	Title         string   `json:"title,omitempty"`
	GroupByBranch bool     `json:"group_by_branch,omitempty"`
	LinkBase      string   `json:"link_base,omitempty"`

	// Refresh bypasses cached artifacts (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	mode      flow.Mode
	match     weights.BranchMatch
	focus     *flow.NodeID
	formats   []render.Format
	validated bool
}

// Result is the output of [Runner.Render].
type Result struct {
	Graph *flow.Graph

	// DOT is the Graphviz source; empty when the graph is empty.
	DOT string

	// Artifacts holds rendered bytes per requested format.
	Artifacts map[render.Format][]byte

	// Empty reports that the selection produced no diagram. It is not an
	// error: callers show a "no data" message instead.
	Empty bool

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	flow.Stats
	Rows       int
	Nodes      int
	Edges      int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache behavior of a render.
type CacheInfo struct {
	Key       string
	RenderHit bool // every artifact came from cache
	Errors    int  // cache operations that failed and were ignored
}

// ValidateAndSetDefaults parses the textual options and applies presets.
// It is idempotent.
//
// Without an explicit mode the global view is strict and a single-branch view
// is inclusive. The global view also caps density and groups programs by
// branch unless the caller set those fields.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Mode == "" {
		o.Mode = flow.Strict.String()
		if !o.Global && o.Branch != "" {
			o.Mode = flow.Inclusive.String()
		}
	}
	mode, err := flow.ParseMode(o.Mode)
	if err != nil {
		return err
	}

	match, err := weights.ParseBranchMatch(o.Match)
	if err != nil {
		return err
	}
	o.Match = match.String()

	if o.DensityCap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "density cap must be >= 0, got %d", o.DensityCap)
	}
	if o.Global {
		if o.DensityCap == 0 {
			o.DensityCap = DefaultGlobalDensityCap
		}
		o.GroupByBranch = true
	}

	var focus *flow.NodeID
	if o.Focus != "" {
		id, err := flow.ParseNodeID(o.Focus)
		if err != nil {
			return err
		}
		focus = &id
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	formats := make([]render.Format, 0, len(o.Formats))
	for _, s := range o.Formats {
		f, err := render.ParseFormat(s)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.mode, o.match, o.focus, o.formats = mode, match, focus, formats
	o.validated = true
	return nil
}

// FlowOptions returns the builder options. Call ValidateAndSetDefaults first.
func (o *Options) FlowOptions() flow.Options {
	return flow.Options{
		Mode:            o.mode,
		DensityCap:      o.DensityCap,
		ShowZeroWeights: o.ShowZeroWeights,
		Focus:           o.focus,
		GroupByBranch:   o.GroupByBranch,
	}
}

// FocusID returns the parsed focus node, or nil.
func (o *Options) FocusID() *flow.NodeID { return o.focus }

// RenderFormats returns the parsed output formats.
func (o *Options) RenderFormats() []render.Format { return o.formats }

// GraphKeyOpts returns cache key options for the built graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Branch:     o.Branch,
		Match:      o.Match,
		Programs:   o.Programs,
		Focus:      o.Focus,
		Mode:       o.Mode,
		DensityCap: o.DensityCap,
		ShowZero:   o.ShowZeroWeights,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        string(f),
		Title:         o.Title,
		GroupByBranch: o.GroupByBranch,
		LinkBase:      o.LinkBase,
	}
}
