// Package graph serializes flow graphs for APIs, exports and caches.
//
// [Graph] is a plain struct mirror of [dag.DAG] with JSON, YAML and BSON
// tags. [FromDAG] and [ToDAG] convert between the two; [MarshalGraph],
// [WriteGraph] and [ReadGraph] add the encoding:
//
//	data, err := graph.MarshalGraph(g.DAG, graph.YAML)
//
// Files pick the encoding from their extension:
//
//	err := graph.WriteGraphFile(g.DAG, "ruta.yaml")
//	g2, err := graph.ReadGraphFile("ruta.yaml")
//
// Decoding validates the row structure, so a hand-edited file with an edge
// that skips a row is rejected with [dag.ErrNonConsecutiveRows].
//
// [dag.DAG]: github.com/matzehuels/pondera/pkg/dag.DAG
// [dag.ErrNonConsecutiveRows]: github.com/matzehuels/pondera/pkg/dag.ErrNonConsecutiveRows
package graph
