package nodelink

import (
	"bytes"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/pondera/pkg/dag"
	"github.com/matzehuels/pondera/pkg/weights"
)

// RowLabels are the cluster titles of the three diagram rows.
var RowLabels = []string{
	"1º Bachillerato",
	"2º Bachillerato (Asignaturas que ponderan)",
	"Grados Universitarios",
}

var clusterFill = []string{"#F5F5F5", "#E0E0E0", "#D0D0D0"}

// Options configures DOT generation.
type Options struct {
	// Title is drawn above the diagram when set.
	Title string

	// GroupByBranch clusters the last row by node Group (knowledge branch)
	// and wraps long labels.
	GroupByBranch bool

	// LinkBase makes nodes clickable: each node links to LinkBase with the
	// node ID appended as the "focus" query parameter.
	LinkBase string
}

// ToDOT converts a layered graph to Graphviz DOT. Rows become left-to-right
// clusters. Node and edge presentation fields are emitted as attributes.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.6, fontsize=9];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=24;\n", opts.Title)
	}

	last := slices.Max(append(g.RowIDs(), 0))
	for _, row := range g.RowIDs() {
		nodes := g.NodesInRow(row)
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", row)
		fmt.Fprintf(&buf, "    label=%q;\n", rowLabel(row))
		fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    color=%q;\n", rowFill(row))

		if opts.GroupByBranch && row == last {
			writeGroups(&buf, nodes, opts)
		} else {
			for _, n := range nodes {
				writeNode(&buf, "    ", n, opts, false)
			}
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func rowLabel(row int) string {
	if row >= 0 && row < len(RowLabels) {
		return RowLabels[row]
	}
	return "Fila " + strconv.Itoa(row)
}

func rowFill(row int) string {
	if row >= 0 && row < len(clusterFill) {
		return clusterFill[row]
	}
	return clusterFill[len(clusterFill)-1]
}

// writeGroups emits one sub-cluster per group, groups sorted by name.
func writeGroups(buf *bytes.Buffer, nodes []dag.Node, opts Options) {
	groups := make(map[string][]dag.Node)
	for _, n := range nodes {
		groups[n.Group] = append(groups[n.Group], n)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		if name == "" {
			for _, n := range groups[name] {
				writeNode(buf, "    ", n, opts, true)
			}
			continue
		}
		fmt.Fprintf(buf, "    subgraph cluster_group_%d {\n", i)
		fmt.Fprintf(buf, "      label=%q;\n      style=\"rounded,filled\";\n      color=\"#C8C8C8\";\n", weights.BranchName(name))
		for _, n := range groups[name] {
			writeNode(buf, "      ", n, opts, true)
		}
		buf.WriteString("    }\n")
	}
}

func writeNode(buf *bytes.Buffer, indent string, n dag.Node, opts Options, wrap bool) {
	label := n.DisplayLabel()
	if wrap {
		label = WrapLabel(label)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Shape != "" {
		attrs = append(attrs, fmt.Sprintf("shape=%s", n.Shape))
	}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color))
	}
	if n.Highlight {
		attrs = append(attrs, "penwidth=3", "color=\"#B8860B\"")
	}
	if opts.LinkBase != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", link(opts.LinkBase, n.ID)), "target=\"_top\"")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

func edgeAttrs(e dag.Edge) []string {
	var attrs []string
	if e.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Color))
	}
	if e.PenWidth > 0 {
		attrs = append(attrs, "penwidth="+strconv.FormatFloat(e.PenWidth, 'f', -1, 64))
	}
	if e.Style != "" && e.Style != "solid" {
		attrs = append(attrs, "style="+e.Style)
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	return attrs
}

// WrapLabel breaks long program names after " + ", " y " and " de " so
// grouped clusters stay narrow.
func WrapLabel(s string) string {
	return strings.NewReplacer(" + ", "+\n", " y ", " y\n", " de ", " de\n").Replace(s)
}

func link(base, id string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "focus=" + url.QueryEscape(id)
}
