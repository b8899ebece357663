// Package render holds the output formats shared by the diagram renderers.
//
// The diagram itself is produced by the [nodelink] subpackage, which turns
// a layered graph into Graphviz DOT and rasterizes or vectorizes it in
// process. This package only names the formats and their media types so the
// CLI, the render pipeline and the HTTP server agree on them.
//
// [nodelink]: github.com/matzehuels/pondera/pkg/render/nodelink
package render
