// Package flow builds the three-layer academic flow diagram.
//
// The diagram reads left to right:
//
//	1º Bachillerato  →  2º Bachillerato  →  Grados
//	(FirstYear)         (SecondYear)        (DegreeProgram)
//
// First-year subjects connect to the second-year subjects they lead into
// through a fixed [PrecursorMap]. Second-year subjects connect to degree
// programs through the coefficients of a [weights.Table].
//
// # Building
//
// [Build] is a pure projection of a table. [Options] pick the visibility
// threshold ([Strict] 0.2 or [Inclusive] 0.1), an optional per-subject
// density cap and whether zero-valued edges are drawn:
//
//	g := flow.Build(tbl, flow.DefaultPrecursors(), flow.BranchOptions())
//	if g.Empty() {
//		// nothing to show
//	}
//
// # Focus
//
// [Focus] narrows a table to one node's neighborhood before building.
// Nodes are identified by a layer-tagged [NodeID] so a subject and a
// program sharing a name never collide:
//
//	id := flow.SecondYearSubject("Química")
//	opts := flow.BranchOptions()
//	opts.Focus = &id
//	g := flow.Build(flow.Focus(tbl, id, p), p, opts)
package flow
