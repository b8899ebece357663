package flow

import (
	"slices"
	"sort"
	"testing"

	"github.com/matzehuels/pondera/pkg/dag"
	"github.com/matzehuels/pondera/pkg/weights"
)

func informaticaTable(t *testing.T) *weights.Table {
	t.Helper()
	tbl, err := weights.New([]string{"Matemáticas_II", "Física"},
		weights.Record{Program: "Informática", Branch: "IyA", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func nodeKeys(g *Graph) []string {
	keys := dag.NodeIDs(g.Nodes())
	sort.Strings(keys)
	return keys
}

func edgeKeys(g *Graph) []string {
	var keys []string
	for _, e := range g.Edges() {
		keys = append(keys, e.From+"->"+e.To)
	}
	sort.Strings(keys)
	return keys
}

func sorted(s ...string) []string {
	sort.Strings(s)
	return s
}

func TestBuildStrict(t *testing.T) {
	g := Build(informaticaTable(t), DefaultPrecursors(), Options{Mode: Strict})

	wantNodes := sorted("bach1:Matemáticas_I", "bach2:Matemáticas_II", "grado:Informática")
	if got := nodeKeys(g); !slices.Equal(got, wantNodes) {
		t.Errorf("nodes = %v, want %v", got, wantNodes)
	}
	wantEdges := sorted("bach1:Matemáticas_I->bach2:Matemáticas_II", "bach2:Matemáticas_II->grado:Informática")
	if got := edgeKeys(g); !slices.Equal(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	for _, e := range g.Edges() {
		if e.To == "grado:Informática" && (e.Weight != 0.2 || e.Style != "solid" || e.PenWidth != 2.5 || e.Label != "0.20") {
			t.Errorf("weight edge = %+v, want 0.2 solid 2.5 labeled", e)
		}
	}
}

func TestBuildInclusive(t *testing.T) {
	g := Build(informaticaTable(t), DefaultPrecursors(), Options{Mode: Inclusive})

	wantNodes := sorted("bach1:Matemáticas_I", "bach1:Física_y_Química",
		"bach2:Matemáticas_II", "bach2:Física", "grado:Informática")
	if got := nodeKeys(g); !slices.Equal(got, wantNodes) {
		t.Errorf("nodes = %v, want %v", got, wantNodes)
	}
	wantEdges := sorted(
		"bach1:Matemáticas_I->bach2:Matemáticas_II",
		"bach1:Física_y_Química->bach2:Física",
		"bach2:Matemáticas_II->grado:Informática",
		"bach2:Física->grado:Informática",
	)
	if got := edgeKeys(g); !slices.Equal(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
	for _, e := range g.Edges() {
		if e.From == "bach2:Física" && (e.Style != "dashed" || e.PenWidth != 1.5 || e.Weight != 0.1) {
			t.Errorf("mid-band edge = %+v, want dashed 1.5", e)
		}
	}
}

func TestBuildFocusComposesWithMode(t *testing.T) {
	tbl := informaticaTable(t)
	// Add a second program so the focus actually narrows something.
	wide, err := weights.New(tbl.Columns(),
		weights.Record{Program: "Informática", Branch: "IyA", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.1}},
		weights.Record{Program: "Física", Branch: "C", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultPrecursors()
	id := Program("Informática")

	for _, mode := range []Mode{Strict, Inclusive} {
		t.Run(mode.String(), func(t *testing.T) {
			narrowed := Focus(wide, id, p)
			if narrowed.Len() != 1 {
				t.Fatalf("Focus() rows = %d, want 1", narrowed.Len())
			}
			got := Build(narrowed, p, Options{Mode: mode, Focus: &id})
			want := Build(tbl, p, Options{Mode: mode})
			if !slices.Equal(nodeKeys(got), nodeKeys(want)) {
				t.Errorf("nodes = %v, want %v", nodeKeys(got), nodeKeys(want))
			}
			if !slices.Equal(edgeKeys(got), edgeKeys(want)) {
				t.Errorf("edges = %v, want %v", edgeKeys(got), edgeKeys(want))
			}
			n, _ := got.Node(id.Key())
			if !n.Highlight || n.Color != ColorFocus {
				t.Errorf("focused node = %+v, want highlighted", n)
			}
		})
	}
}

func TestBuildFocusSecondYearKeepsZeroSubject(t *testing.T) {
	tbl, err := weights.New([]string{"Química", "Física"},
		weights.Record{Program: "Farmacia", Branch: "SD", Values: map[string]float64{"Química": 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultPrecursors()
	id := SecondYearSubject("Física")
	narrowed := Focus(tbl, id, p)
	g := Build(narrowed, p, Options{Mode: Strict, Focus: &id})

	want := sorted("bach1:Física_y_Química", "bach2:Física")
	if got := nodeKeys(g); !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestBuildFocusFirstYearOnlyThatSubject(t *testing.T) {
	tbl, err := weights.New([]string{"Matemáticas_II", "Física", "Química"},
		weights.Record{Program: "Física", Branch: "C", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.2, "Química": 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultPrecursors()
	id := FirstYearSubject("Física_y_Química")
	g := Build(Focus(tbl, id, p), p, Options{Mode: Strict, Focus: &id})

	firsts := dag.NodeIDs(g.NodesInRow(int(FirstYear)))
	if !slices.Equal(firsts, []string{"bach1:Física_y_Química"}) {
		t.Errorf("first-year nodes = %v", firsts)
	}
	seconds := dag.NodeIDs(g.NodesInRow(int(SecondYear)))
	if !slices.Equal(seconds, []string{"bach2:Física", "bach2:Química"}) {
		t.Errorf("second-year nodes = %v", seconds)
	}
}

func TestBuildDensityCap(t *testing.T) {
	var recs []weights.Record
	values := []float64{0.1, 0.2, 0.2, 0.15, 0.2, 0.2}
	names := []string{"A", "B", "C", "D", "E", "F"}
	for i, v := range values {
		recs = append(recs, weights.Record{Program: names[i], Branch: "C", Values: map[string]float64{"Química": v}})
	}
	tbl, err := weights.New([]string{"Química"}, recs...)
	if err != nil {
		t.Fatal(err)
	}
	g := Build(tbl, DefaultPrecursors(), Options{Mode: Inclusive, DensityCap: 4})

	var targets []string
	for _, e := range g.Edges() {
		if e.From == "bach2:Química" {
			targets = append(targets, e.To)
		}
	}
	want := []string{"grado:B", "grado:C", "grado:E", "grado:F"}
	if !slices.Equal(targets, want) {
		t.Errorf("capped targets = %v, want %v", targets, want)
	}
	if g.Stats.Truncated != 2 {
		t.Errorf("Stats.Truncated = %d, want 2", g.Stats.Truncated)
	}
}

func TestBuildEdgeOrderDescending(t *testing.T) {
	tbl, err := weights.New([]string{"Química"},
		weights.Record{Program: "A", Branch: "C", Values: map[string]float64{"Química": 0.1}},
		weights.Record{Program: "B", Branch: "C", Values: map[string]float64{"Química": 0.2}},
		weights.Record{Program: "C", Branch: "C", Values: map[string]float64{"Química": 0.15}},
	)
	if err != nil {
		t.Fatal(err)
	}
	g := Build(tbl, DefaultPrecursors(), Options{Mode: Inclusive})
	var got []float64
	for _, e := range g.Edges() {
		if e.From == "bach2:Química" {
			got = append(got, e.Weight)
		}
	}
	if !slices.Equal(got, []float64{0.2, 0.15, 0.1}) {
		t.Errorf("edge weights = %v, want descending", got)
	}
}

func TestBuildShowZeroWeights(t *testing.T) {
	tbl, err := weights.New([]string{"Química", "Latín_II"},
		weights.Record{Program: "Farmacia", Branch: "SD", Values: map[string]float64{"Química": 0.2}},
		weights.Record{Program: "Enfermería", Branch: "SD"},
	)
	if err != nil {
		t.Fatal(err)
	}
	g := Build(tbl, DefaultPrecursors(), Options{Mode: Strict, ShowZeroWeights: true})

	var zero *dag.Edge
	for _, e := range g.Edges() {
		if e.From == "bach2:Química" && e.To == "grado:Enfermería" {
			zero = &e
		}
	}
	if zero == nil {
		t.Fatal("zero-weight edge missing")
	}
	if zero.Label != "" || zero.Color != ColorZeroEdge || zero.PenWidth != 0.5 {
		t.Errorf("zero edge = %+v, want faint and unlabeled", *zero)
	}
	if _, ok := g.Node("bach2:Latín_II"); ok {
		t.Error("all-zero column must stay inactive")
	}
}

func TestBuildCompoundDuplicatesCollapse(t *testing.T) {
	tbl, err := weights.Parse([]byte("Grado;Rama de conocimiento;Química\nBioquímica;C+SD;0,2\n"), weights.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	g := Build(tbl, DefaultPrecursors(), Options{Mode: Strict})
	if g.Stats.WeightEdges != 1 || g.Stats.Programs != 1 {
		t.Errorf("stats = %+v, want one program and one weight edge", g.Stats)
	}
}

func TestBuildEmpty(t *testing.T) {
	tbl, err := weights.New([]string{"Química"})
	if err != nil {
		t.Fatal(err)
	}
	g := Build(tbl, DefaultPrecursors(), GlobalOptions())
	if !g.Empty() {
		t.Errorf("Build(empty) has %d nodes, want 0", g.NodeCount())
	}
}

func TestBuildColors(t *testing.T) {
	g := Build(informaticaTable(t), DefaultPrecursors(), Options{Mode: Inclusive})
	for _, n := range g.Nodes() {
		if n.Shape != "box" {
			t.Errorf("%s shape = %q, want box", n.ID, n.Shape)
		}
		switch Layer(n.Row) {
		case FirstYear:
			if n.Color != ColorFirstYear {
				t.Errorf("%s color = %q", n.ID, n.Color)
			}
		case SecondYear:
			if len(n.Color) != 9 || n.Color[7:] != "BF" {
				t.Errorf("%s color = %q, want palette color with alpha", n.ID, n.Color)
			}
		case DegreeProgram:
			if n.Color != ColorProgram || n.Group != "IyA" {
				t.Errorf("%s = %+v", n.ID, n)
			}
		}
	}
}

func TestSubjectColorDistinct(t *testing.T) {
	for n := 1; n <= 20; n++ {
		seen := make(map[string]bool)
		for i := 0; i < n; i++ {
			seen[subjectColor(i, n)] = true
		}
		if len(seen) != n {
			t.Errorf("subjectColor with n=%d produced %d distinct colors", n, len(seen))
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Strict, false},
		{"strict", Strict, false},
		{"Inclusive", Inclusive, false},
		{"loose", Strict, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := GlobalOptions().Validate(); err != nil {
		t.Errorf("GlobalOptions().Validate() = %v", err)
	}
	if err := (Options{DensityCap: -1}).Validate(); err == nil {
		t.Error("negative density cap should fail")
	}
	if err := (Options{Mode: Mode(7)}).Validate(); err == nil {
		t.Error("unknown mode should fail")
	}
}
