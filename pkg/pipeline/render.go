package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/render/nodelink"
)

// DOT returns the Graphviz source for g with the presentation options.
func DOT(g *flow.Graph, opts Options) string {
	return nodelink.ToDOT(g.DAG, nodelink.Options{
		Title:         opts.Title,
		GroupByBranch: opts.GroupByBranch,
		LinkBase:      opts.LinkBase,
	})
}

// RenderArtifact renders DOT source in one format.
func RenderArtifact(ctx context.Context, dot string, f render.Format) ([]byte, error) {
	data, err := nodelink.Render(ctx, dot, f)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return data, nil
}
