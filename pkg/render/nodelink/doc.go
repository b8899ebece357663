// Package nodelink renders the academic flow graph as a Graphviz diagram.
//
// # Usage
//
// Convert a layered graph to DOT, then render it:
//
//	dot := nodelink.ToDOT(g.DAG, nodelink.Options{Title: "Ruta Académica"})
//	svg, err := nodelink.Render(ctx, dot, render.FormatSVG)
//
// PNG and JPG are produced the same way; [render.FormatDOT] returns the
// source unchanged.
//
// # Layout
//
// The diagram reads left to right (rankdir=LR) with curved splines on a
// transparent background. Each row of the graph becomes a titled cluster
// ([RowLabels]). With [Options.GroupByBranch] the last row is split into
// one sub-cluster per knowledge branch and long program names are wrapped
// with [WrapLabel].
//
// Node fill colors, highlight, edge pen widths, line styles and labels are
// taken from the graph as-is; this package makes no styling decisions of
// its own beyond cluster chrome.
//
// # Links
//
// When [Options.LinkBase] is set each node carries a URL with a "focus"
// query parameter, which makes the SVG clickable in the dashboard.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system installation is required.
package nodelink
