// Package pkg provides the core libraries for pondera, a tool that turns the
// Spanish university-admission weighting tables ("ponderaciones") into flow
// diagrams, tables and score estimates.
//
// # Overview
//
// A weighting table assigns, for every degree program, a coefficient (0, 0.1
// or 0.2) to each second-year Bachillerato subject examined in the specific
// phase of the admission test. pondera reads that table and shows which
// first-year subjects lead to which second-year subjects, and which of those
// weigh for which programs.
//
// # Architecture
//
// The typical data flow:
//
//	weighting-table CSV
//	         ↓
//	    [weights] package (parse, clean, split compound branches)
//	         ↓
//	    [flow] package (precursor map, 3-layer graph, focus filter)
//	         ↓
//	    [render/nodelink] package (DOT, then SVG/PNG/JPG via Graphviz)
//
// [pipeline] runs the same steps for the CLI and the HTTP server, with a
// content-addressed [cache] in front of the render step.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/pondera/pkg/flow"
//	    "github.com/matzehuels/pondera/pkg/render/nodelink"
//	    "github.com/matzehuels/pondera/pkg/weights"
//	)
//
//	t, _ := weights.Load(ctx, "ponderaciones.csv", weights.DefaultOptions())
//	g := flow.Build(t.FilterBranch("IyA", weights.MatchExact), flow.DefaultPrecursors(), flow.BranchOptions())
//	dot := nodelink.ToDOT(g.DAG, nodelink.Options{})
//
// # Main Packages
//
// [weights] - Weighting-table model: CSV parsing, cleaning, branch filters,
// column selection, sorting and the data-file legend.
//
// [flow] - The precursor map from first-year to second-year subjects and the
// builder for the three-layer flow graph, including the density cap and the
// focus filter.
//
// [dag] - Directed graph with ordered layers that the flow graph is stored in.
//
// [render] and [render/nodelink] - Output formats and the Graphviz renderer.
//
// [calculator] - Admission-score calculator (nota de acceso out of 14).
//
// [analysis] - Subject usefulness per knowledge branch.
//
// [graph] - JSON and YAML export of built graphs.
//
// ## Infrastructure
//
// [pipeline] - Load → build → render orchestration with caching.
//
// [cache] - Artifact cache with memory, file, Redis and MongoDB backends.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] and [metrics] - Pipeline hooks and Prometheus collectors.
//
// [buildinfo] - Version information stamped at build time.
package pkg
