// Package dag provides a small row-layered directed acyclic graph.
//
// # Overview
//
// The academic flow diagram has a fixed shape: first-year subjects feed
// second-year subjects, which feed degree programs. This package models
// that shape generically as rows (layers) where edges only connect a row
// to the next one. Because every edge goes strictly downward the graph is
// acyclic by construction.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "bach1:Matemáticas_I", Row: 0})
//	g.AddNode(dag.Node{ID: "bach2:Matemáticas_II", Row: 1})
//	g.AddEdge(dag.Edge{From: "bach1:Matemáticas_I", To: "bach2:Matemáticas_II"})
//
// Use [DAG.Validate] to verify the consecutive-row constraint.
//
// # Determinism
//
// Nodes and edges are returned in insertion order, so a builder that adds
// elements in a deterministic sequence produces byte-identical renderings.
//
// # Presentation
//
// Nodes and edges carry presentation hints (color, shape, pen width, line
// style, label). The graph itself never interprets them; renderers in
// [github.com/matzehuels/pondera/pkg/render/nodelink] and exporters in
// [github.com/matzehuels/pondera/pkg/graph] do.
package dag
