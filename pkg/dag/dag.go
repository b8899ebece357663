package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when an edge between the
	// same two nodes has already been added.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects nodes that are not in adjacent rows (From.Row+1 != To.Row).
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")
)

// Node is a vertex assigned to a row (layer).
//
// Presentation fields (Color, Shape, Group, Highlight) are carried on the
// node so renderers never need to look back into the source data.
type Node struct {
	ID        string // Unique identifier across all rows
	Row       int    // Layer assignment (0 = leftmost/top)
	Label     string // Display label; ID is used when empty
	Color     string // Fill color, "#RRGGBB" or "#RRGGBBAA"
	Shape     string // Graphviz shape hint
	Group     string // Optional sub-group inside the row (e.g. knowledge branch)
	Highlight bool   // Marks the node the view is focused on
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed, weighted connection between nodes in consecutive rows.
type Edge struct {
	From     string
	To       string
	Weight   float64 // Numeric weight carried to labels and exports
	PenWidth float64 // Visual weight
	Style    string  // "solid", "dashed" or "dotted"
	Color    string
	Label    string // Empty means unlabeled
}

// DAG is a directed acyclic graph organized in rows, where edges only
// connect a row to the next one. Because every edge points to a strictly
// higher row the graph cannot contain cycles.
//
// Nodes and edges are kept in insertion order so two graphs built by the
// same sequence of calls are identical, including iteration order.
//
// The zero value is not usable - use New. DAG is not safe for concurrent
// mutation; read-only use from several goroutines is fine.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeSet  map[[2]string]struct{}
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[[2]string]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Row.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID if the ID
// is already taken, in any row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing and ErrDuplicateEdge when the pair is already connected.
//
// AddEdge does not check the consecutive-row constraint; use Validate.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	key := [2]string{e.From, e.To}
	if _, dup := d.edgeSet[key]; dup {
		return ErrDuplicateEdge
	}
	d.edgeSet[key] = struct{}{}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// HasEdge reports whether an edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	_, ok := d.edgeSet[[2]string{from, to}]
	return ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains copies; modifying them does not affect the graph.
func (d *DAG) Nodes() []Node {
	nodes := make([]Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, *d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Empty reports whether the graph has no nodes.
func (d *DAG) Empty() bool { return len(d.nodes) == 0 }

// Children returns the IDs of nodes this node has edges to.
// The returned slice should be treated as read-only.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node.
// The returned slice should be treated as read-only.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Degree returns the total number of edges incident on the node.
func (d *DAG) Degree(id string) int { return len(d.outgoing[id]) + len(d.incoming[id]) }

// Node returns a copy of the node with the given ID and true, or the zero
// Node and false if not found.
func (d *DAG) Node(id string) (Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodesInRow returns copies of the nodes assigned to the given row in
// insertion order. Returns nil for an empty row.
func (d *DAG) NodesInRow(row int) []Node {
	src := d.rows[row]
	if len(src) == 0 {
		return nil
	}
	out := make([]Node, len(src))
	for i, n := range src {
		out[i] = *n
	}
	return out
}

// RowCount returns the number of distinct non-empty rows.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []Node {
	var sources []Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, *d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []Node {
	var sinks []Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, *d.nodes[id])
		}
	}
	return sinks
}

// Validate checks that every edge connects existing nodes in consecutive
// rows (From.Row+1 == To.Row). It returns ErrInvalidEdgeEndpoint or
// ErrNonConsecutiveRows on the first violation.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		src, okS := d.nodes[e.From]
		dst, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Row != src.Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
