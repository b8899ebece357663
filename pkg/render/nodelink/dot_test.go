package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pondera/pkg/dag"
	"github.com/matzehuels/pondera/pkg/render"
)

func sampleGraph() *dag.DAG {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "bach1:Matemáticas_I", Row: 0, Label: "Matemáticas I", Color: "#E6E6FA", Shape: "box"})
	_ = g.AddNode(dag.Node{ID: "bach2:Matemáticas_II", Row: 1, Label: "Matemáticas II", Color: "#1F77B4BF", Shape: "box"})
	_ = g.AddNode(dag.Node{ID: "grado:Ingeniería de Software y Sistemas", Row: 2, Label: "Ingeniería de Software y Sistemas", Color: "#FFDAB9", Shape: "box", Group: "IyA", Highlight: true})
	_ = g.AddNode(dag.Node{ID: "grado:Física", Row: 2, Label: "Física", Color: "#FFDAB9", Shape: "box", Group: "C"})
	_ = g.AddEdge(dag.Edge{From: "bach1:Matemáticas_I", To: "bach2:Matemáticas_II", Color: "#6A5ACD", PenWidth: 2, Style: "solid"})
	_ = g.AddEdge(dag.Edge{From: "bach2:Matemáticas_II", To: "grado:Ingeniería de Software y Sistemas", Weight: 0.2, PenWidth: 2.5, Style: "solid", Label: "0.20"})
	_ = g.AddEdge(dag.Edge{From: "bach2:Matemáticas_II", To: "grado:Física", Weight: 0.1, PenWidth: 1.5, Style: "dashed", Label: "0.10"})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Title: "Ruta Académica"})

	for _, want := range []string{
		"rankdir=LR;",
		"splines=curved;",
		`bgcolor="transparent";`,
		`label="Ruta Académica";`,
		`label="1º Bachillerato";`,
		`label="2º Bachillerato (Asignaturas que ponderan)";`,
		`label="Grados Universitarios";`,
		`"bach2:Matemáticas_II" -> "grado:Física" [penwidth=1.5, style=dashed, label="0.10"];`,
		`"bach1:Matemáticas_I" -> "bach2:Matemáticas_II" [color="#6A5ACD", penwidth=2];`,
		`fillcolor="#1F77B4BF"`,
		"penwidth=3",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "cluster_group_") {
		t.Error("ToDOT() grouped without GroupByBranch")
	}
}

func TestToDOTGroupByBranch(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{GroupByBranch: true})
	for _, want := range []string{
		`label="Ciencias";`,
		`label="Ingeniería y Arquitectura";`,
		`label="Ingeniería de\nSoftware y\nSistemas"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	// Groups are sorted: C before IyA.
	if strings.Index(dot, `"Ciencias"`) > strings.Index(dot, `"Ingeniería y Arquitectura"`) {
		t.Error("branch clusters not sorted")
	}
}

func TestToDOTLinks(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{LinkBase: "/?mode=flow"})
	if !strings.Contains(dot, `URL="/?mode=flow&focus=grado%3AF%C3%ADsica"`) {
		t.Errorf("ToDOT() missing focus link\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(dag.New(), Options{})
	if !strings.HasPrefix(dot, "digraph G {") || strings.Contains(dot, "subgraph") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestWrapLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Física", "Física"},
		{"Matemáticas + Física", "Matemáticas+\nFísica"},
		{"Ciencias de la Actividad Física y del Deporte", "Ciencias de\nla Actividad Física y\ndel Deporte"},
	}
	for _, tt := range tests {
		if got := WrapLabel(tt.in); got != tt.want {
			t.Errorf("WrapLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})
	got, err := Render(context.Background(), dot, render.FormatDOT)
	if err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	if string(got) != dot {
		t.Error("Render(dot) changed the source")
	}
	if _, err := Render(context.Background(), dot, render.Format("gif")); err == nil {
		t.Error("Render(gif) expected error")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sampleGraph(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("RenderSVG() output is not a normalized SVG: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("normalizeViewBox(no viewBox) = %s", got)
	}
}
