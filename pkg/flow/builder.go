package flow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/pondera/pkg/dag"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/weights"
)

// Tolerance absorbs float noise when comparing coefficients to thresholds.
const Tolerance = 1e-9

// Mode selects the coefficient visibility threshold.
type Mode int

const (
	// Strict shows only top-band coefficients (≥ 0.2).
	Strict Mode = iota
	// Inclusive also shows the middle band (≥ 0.1).
	Inclusive
)

// Threshold returns the minimum coefficient drawn in this mode.
func (m Mode) Threshold() float64 {
	if m == Inclusive {
		return 0.1
	}
	return 0.2
}

func (m Mode) String() string {
	if m == Inclusive {
		return "inclusive"
	}
	return "strict"
}

// ParseMode parses "strict" or "inclusive". Empty means strict.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "inclusive":
		return Inclusive, nil
	}
	return Strict, errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want strict or inclusive)", s)
}

// Options configures [Build].
type Options struct {
	Mode Mode

	// DensityCap keeps at most this many programs per subject, ranked by
	// coefficient with ties in row order. Zero disables the cap.
	DensityCap int

	// ShowZeroWeights emits every program edge of an active subject,
	// including zero-valued ones, which are drawn faint and unlabeled.
	ShowZeroWeights bool

	// Focus marks the highlighted node and drives first-year selection.
	// The table passed to Build should already be narrowed with [Focus].
	Focus *NodeID

	// GroupByBranch is a presentation hint for renderers: programs are
	// clustered by knowledge branch.
	GroupByBranch bool
}

// GlobalOptions returns the preset for the all-programs overview.
func GlobalOptions() Options {
	return Options{Mode: Strict, DensityCap: 10, GroupByBranch: true}
}

// BranchOptions returns the preset for a single-branch view.
func BranchOptions() Options {
	return Options{Mode: Inclusive}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Mode != Strict && o.Mode != Inclusive {
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %d", int(o.Mode))
	}
	if o.DensityCap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "density cap must be >= 0, got %d", o.DensityCap)
	}
	return nil
}

// Stats summarizes a built graph.
type Stats struct {
	FirstYear      int `json:"first_year" yaml:"first_year"`
	SecondYear     int `json:"second_year" yaml:"second_year"`
	Programs       int `json:"programs" yaml:"programs"`
	PrecursorEdges int `json:"precursor_edges" yaml:"precursor_edges"`
	WeightEdges    int `json:"weight_edges" yaml:"weight_edges"`
	Truncated      int `json:"truncated" yaml:"truncated"` // edges dropped by the density cap
}

// Graph is the layered academic flow diagram. Rows are indexed by [Layer].
// A graph with no nodes is a valid result meaning "no data".
type Graph struct {
	*dag.DAG
	Stats Stats
}

// Build projects a weighting table onto the three-layer flow graph.
//
// Second-year subjects are active when their column has a positive sum and
// at least one coefficient reaches the mode threshold (any positive value
// with ShowZeroWeights). A focused second-year subject present in the table
// is always active. First-year subjects follow from the precursor map.
//
// Build is deterministic: the same table and options yield the same nodes
// and edges in the same order. An empty table yields an empty graph.
func Build(t *weights.Table, p PrecursorMap, opts Options) *Graph {
	b := builder{t: t, p: p, opts: opts, threshold: opts.Mode.Threshold(), g: &Graph{DAG: dag.New()}}
	b.build()
	return b.g
}

type builder struct {
	t         *weights.Table
	p         PrecursorMap
	opts      Options
	threshold float64
	g         *Graph
}

func (b *builder) build() {
	second := b.activeSecondYear()
	first := b.activeFirstYear(second)

	for _, s := range first {
		b.addNode(FirstYearSubject(s), ColorFirstYear, "")
	}
	for i, s := range second {
		b.addNode(SecondYearSubject(s), subjectColor(i, len(second))+secondYearAlpha, "")
	}
	for _, r := range b.t.Rows() {
		id := Program(r.Program)
		if _, exists := b.g.Node(id.Key()); !exists {
			b.addNode(id, ColorProgram, r.Branch)
		}
	}
	b.g.Stats.FirstYear = len(first)
	b.g.Stats.SecondYear = len(second)
	b.g.Stats.Programs = len(b.g.NodesInRow(int(DegreeProgram)))

	for _, s := range first {
		for _, succ := range b.p.Successors(s) {
			if !slices.Contains(second, succ) {
				continue
			}
			_ = b.g.AddEdge(dag.Edge{
				From:     FirstYearSubject(s).Key(),
				To:       SecondYearSubject(succ).Key(),
				PenWidth: 2,
				Style:    "solid",
				Color:    ColorPrecursor,
			})
			b.g.Stats.PrecursorEdges++
		}
	}

	for i, s := range second {
		color := subjectColor(i, len(second))
		for _, c := range b.candidates(s) {
			e := weightEdge(SecondYearSubject(s), Program(c.program), c.value, color)
			if b.g.AddEdge(e) == nil {
				b.g.Stats.WeightEdges++
			}
		}
	}
}

func (b *builder) addNode(id NodeID, color, group string) {
	n := dag.Node{
		ID:    id.Key(),
		Row:   int(id.Layer),
		Label: id.Label(),
		Color: color,
		Shape: "box",
		Group: group,
	}
	if b.opts.Focus != nil && *b.opts.Focus == id {
		n.Color = ColorFocus
		n.Highlight = true
	}
	_ = b.g.AddNode(n)
}

func (b *builder) reaches(v float64) bool {
	return v >= b.threshold-Tolerance
}

func (b *builder) activeSecondYear() []string {
	var focused string
	if f := b.opts.Focus; f != nil && f.Layer == SecondYear {
		focused = f.Name
	}
	var active []string
	for _, col := range b.t.Columns() {
		if col == focused || b.shows(col) {
			active = append(active, col)
		}
	}
	return active
}

// shows reports whether a subject column has anything to draw.
func (b *builder) shows(col string) bool {
	if b.t.ColumnSum(col) <= 0 {
		return false
	}
	if b.opts.ShowZeroWeights {
		return true
	}
	for _, r := range b.t.Rows() {
		if b.reaches(r.Get(col)) {
			return true
		}
	}
	return false
}

func (b *builder) activeFirstYear(second []string) []string {
	if f := b.opts.Focus; f != nil {
		switch f.Layer {
		case FirstYear:
			if b.p.Has(f.Name) {
				return []string{f.Name}
			}
			return nil
		case SecondYear:
			if slices.Contains(second, f.Name) {
				return b.p.Precursors(f.Name)
			}
			return nil
		}
	}
	var out []string
	for _, e := range b.p {
		if slices.ContainsFunc(e.Successors, func(s string) bool { return slices.Contains(second, s) }) {
			out = append(out, e.Subject)
		}
	}
	return out
}

type candidate struct {
	program string
	value   float64
}

// candidates returns the programs drawn for one subject, highest
// coefficient first, with ties in row order.
func (b *builder) candidates(subject string) []candidate {
	seen := make(map[string]bool)
	var out []candidate
	for _, r := range b.t.Rows() {
		v := r.Get(subject)
		if seen[r.Program] || !(b.opts.ShowZeroWeights || b.reaches(v)) {
			continue
		}
		seen[r.Program] = true
		out = append(out, candidate{program: r.Program, value: v})
	}
	slices.SortStableFunc(out, func(a, c candidate) int {
		switch {
		case a.value > c.value:
			return -1
		case a.value < c.value:
			return 1
		}
		return 0
	})
	if n := b.opts.DensityCap; n > 0 && len(out) > n {
		b.g.Stats.Truncated += len(out) - n
		out = out[:n]
	}
	return out
}

// weightEdge styles a subject→program edge by coefficient band.
func weightEdge(from, to NodeID, v float64, color string) dag.Edge {
	e := dag.Edge{From: from.Key(), To: to.Key(), Weight: v, Color: color, Label: fmt.Sprintf("%.2f", v)}
	switch {
	case v >= 0.2-Tolerance:
		e.PenWidth, e.Style = 2.5, "solid"
	case v >= 0.1-Tolerance:
		e.PenWidth, e.Style = 1.5, "dashed"
	case v > 0:
		e.PenWidth, e.Style = 1.0, "dotted"
	default:
		e.PenWidth, e.Style, e.Color, e.Label = 0.5, "solid", ColorZeroEdge, ""
	}
	return e
}
