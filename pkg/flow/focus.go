package flow

import "github.com/matzehuels/pondera/pkg/weights"

// Focus narrows t to the neighborhood of one node:
//
//   - first-year subject: rows where any of its successor columns is
//     positive, restricted to those columns
//   - second-year subject: rows where that column is positive, restricted to
//     that column
//   - degree program: the first row with that name, restricted to its
//     positive columns
//
// A program split into several rows by a compound branch keeps only its
// first row, so the focused diagram groups it under the first component
// branch (C for a C+SD program).
//
// No match yields an empty table. Focus runs before [Build]; Build never
// filters by focus itself.
func Focus(t *weights.Table, id NodeID, p PrecursorMap) *weights.Table {
	switch id.Layer {
	case FirstYear:
		var cols []string
		for _, s := range p.Successors(id.Name) {
			if t.HasColumn(s) {
				cols = append(cols, s)
			}
		}
		return t.Where(func(r weights.Row) bool {
			for _, c := range cols {
				if r.Get(c) > 0 {
					return true
				}
			}
			return false
		}).SelectColumns(cols...)

	case SecondYear:
		if !t.HasColumn(id.Name) {
			return t.Where(none)
		}
		return t.Where(func(r weights.Row) bool {
			return r.Get(id.Name) > 0
		}).SelectColumns(id.Name)

	case DegreeProgram:
		row, ok := t.Row(id.Name)
		if !ok {
			return t.Where(none)
		}
		found := false
		return t.Where(func(r weights.Row) bool {
			if found || r.Program != id.Name {
				return false
			}
			found = true
			return true
		}).SelectColumns(row.Positive()...)
	}
	return t.Where(none)
}

func none(weights.Row) bool { return false }

// FocusTargets lists the nodes a user can focus on in t, layer by layer:
// first-year subjects with at least one weighted successor, second-year
// subjects with a positive column sum, then every program.
func FocusTargets(t *weights.Table, p PrecursorMap) []NodeID {
	var out []NodeID
	for _, s := range p.Subjects() {
		for _, succ := range p.Successors(s) {
			if t.ColumnSum(succ) > 0 {
				out = append(out, FirstYearSubject(s))
				break
			}
		}
	}
	for _, c := range t.Columns() {
		if t.ColumnSum(c) > 0 {
			out = append(out, SecondYearSubject(c))
		}
	}
	for _, prog := range t.Programs() {
		out = append(out, Program(prog))
	}
	return out
}
