package flow

import (
	"slices"

	"github.com/matzehuels/pondera/pkg/weights"
)

// Precursor links a first-year subject to the second-year subjects it
// leads into.
type Precursor struct {
	Subject    string   `json:"subject" yaml:"subject"`
	Successors []string `json:"successors" yaml:"successors"`
}

// PrecursorMap is the ordered first-year → second-year relation.
type PrecursorMap []Precursor

// DefaultPrecursors returns the Bachillerato curriculum paths. The result
// is a fresh copy and may be modified.
func DefaultPrecursors() PrecursorMap {
	return PrecursorMap{
		{"Matemáticas_I", []string{"Matemáticas_II"}},
		{"Mates_Aplicadas_CCSS_I", []string{"Matemáticas_Aplicadas_CC.SS."}},
		{"Física_y_Química", []string{"Física", "Química"}},
		{"Biología_y_Geología", []string{"Biología", "Geología_y_Ciencias_Ambientales"}},
		{"Dibujo_Técnico_I", []string{"Dibujo_Técnico_II", "Dibujo_Técnico_aplicado_a_las_artes_plásticas_y_al_diseño_II"}},
		{"Latín_I", []string{"Latín_II"}},
		{"Griego_I", []string{"Griego_II"}},
		{"Economía", []string{"Empresa_y_Diseño_de_modelos_de_negocio"}},
		{"Hª_Mundo_Contemporáneo", []string{"Historia_de_la_Filosofía", "Historia_del_Arte", "Geografía"}},
	}
}

// Subjects returns the first-year subjects in map order.
func (p PrecursorMap) Subjects() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Subject
	}
	return out
}

// Has reports whether subject is a first-year subject of the map.
func (p PrecursorMap) Has(subject string) bool {
	return slices.ContainsFunc(p, func(e Precursor) bool { return e.Subject == subject })
}

// Successors returns the second-year subjects of a first-year subject.
func (p PrecursorMap) Successors(subject string) []string {
	for _, e := range p {
		if e.Subject == subject {
			return e.Successors
		}
	}
	return nil
}

// Precursors returns the first-year subjects leading into a second-year
// subject, in map order.
func (p PrecursorMap) Precursors(successor string) []string {
	var out []string
	for _, e := range p {
		if slices.Contains(e.Successors, successor) {
			out = append(out, e.Subject)
		}
	}
	return out
}

// Dangling returns the successors that are not columns of t. They never
// produce edges.
func (p PrecursorMap) Dangling(t *weights.Table) []string {
	var out []string
	for _, e := range p {
		for _, s := range e.Successors {
			if !t.HasColumn(s) {
				out = append(out, s)
			}
		}
	}
	return out
}
