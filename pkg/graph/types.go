package graph

import (
	"fmt"

	"github.com/matzehuels/pondera/pkg/dag"
)

// Graph is the serialization format for flow graphs.
// Used for API responses, exports and cached artifacts.
//
// The format round-trips: FromDAG → encode → decode → ToDAG rebuilds the
// same nodes and edges in the same order.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" bson:"edges"`
}

// Node is a serialized [dag.Node]. Field order matches dag.Node so the
// two convert directly.
type Node struct {
	ID        string `json:"id" yaml:"id" bson:"id"`
	Row       int    `json:"row" yaml:"row" bson:"row"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
	Shape     string `json:"shape,omitempty" yaml:"shape,omitempty" bson:"shape,omitempty"`
	Group     string `json:"group,omitempty" yaml:"group,omitempty" bson:"group,omitempty"`
	Highlight bool   `json:"highlight,omitempty" yaml:"highlight,omitempty" bson:"highlight,omitempty"`
}

// Edge is a serialized [dag.Edge].
type Edge struct {
	From     string  `json:"from" yaml:"from" bson:"from"`
	To       string  `json:"to" yaml:"to" bson:"to"`
	Weight   float64 `json:"weight,omitempty" yaml:"weight,omitempty" bson:"weight,omitempty"`
	PenWidth float64 `json:"penwidth,omitempty" yaml:"penwidth,omitempty" bson:"penwidth,omitempty"`
	Style    string  `json:"style,omitempty" yaml:"style,omitempty" bson:"style,omitempty"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
}

// FromDAG converts a DAG into its serialized form.
func FromDAG(g *dag.DAG) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge(e))
	}
	return out
}

// ToDAG rebuilds a DAG and validates its row structure.
func ToDAG(data Graph) (*dag.DAG, error) {
	g := dag.New()
	for _, n := range data.Nodes {
		if err := g.AddNode(dag.Node(n)); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge(e)); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
