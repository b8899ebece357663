package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/graph"
	"github.com/matzehuels/pondera/pkg/pipeline"
	"github.com/matzehuels/pondera/pkg/render"
)

const defaultOutputBase = "ponderaciones"

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output    string // file path, or base path for several formats
	formats   string // comma-separated
	graphFile string // optional JSON/YAML export of the built graph
	noCache   bool

	opts pipeline.Options
}

// diagramFlags registers the selection and building flags shared by render
// and explore.
func diagramFlags(cmd *cobra.Command, o *pipeline.Options) {
	cmd.Flags().StringVarP(&o.Branch, "branch", "b", "", "knowledge branch code (C, SD, IyA, SyJ, AyH or compound)")
	cmd.Flags().StringVar(&o.Match, "match", "", "branch match: exact (default), primary, any")
	cmd.Flags().StringSliceVarP(&o.Programs, "program", "p", nil, "restrict to these degree programs (repeatable)")
	cmd.Flags().StringVar(&o.Mode, "mode", "", "threshold mode: strict (>= 0.2) or inclusive (>= 0.1)")
	cmd.Flags().IntVar(&o.DensityCap, "cap", 0, "keep at most N programs per subject (0 = no cap)")
	cmd.Flags().BoolVar(&o.ShowZeroWeights, "all", false, "also draw zero weights")
	cmd.Flags().BoolVar(&o.Global, "global", false, "overview preset: strict, capped and grouped by branch")
	cmd.Flags().StringVar(&o.Title, "title", "", "diagram title")
}

func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the flow diagram to files",
		Long: `Render the three-layer flow diagram (1º Bachillerato → 2º Bachillerato →
degree programs) for a slice of the weighting table.

Examples:
  pondera render --global -f svg,png
  pondera render -b IyA --mode inclusive -o ingenieria.svg
  pondera render --focus "bach2:Matemáticas_II" -f dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(ro.formats)
			if err != nil {
				return err
			}
			ro.opts.Formats = make([]string, len(formats))
			for i, f := range formats {
				ro.opts.Formats[i] = string(f)
			}
			if err := c.applyRenderDefaults(cmd, &ro.opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), &ro)
		},
	}

	diagramFlags(cmd, &ro.opts)
	cmd.Flags().StringVar(&ro.opts.Focus, "focus", "", `focus node key, e.g. "grado:Medicina" or "bach1:Matemáticas_I"`)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "svg", "output format(s): svg, png, jpg, dot (comma-separated)")
	cmd.Flags().StringVar(&ro.graphFile, "graph", "", "also write the built graph as .json or .yaml")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&ro.opts.Refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// applyRenderDefaults fills unset flags from the [render] config section.
// A branch or global view without --mode keeps its own preset.
func (c *CLI) applyRenderDefaults(cmd *cobra.Command, o *pipeline.Options) error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}
	if o.Mode == "" && o.Branch == "" && !o.Global {
		o.Mode = cfg.Render.Mode
	}
	if !cmd.Flags().Changed("cap") {
		o.DensityCap = cfg.Render.DensityCap
	}
	if !cmd.Flags().Changed("all") {
		o.ShowZeroWeights = cfg.Render.ShowZeroWeights
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, ro *renderOpts) error {
	logger := loggerFromContext(ctx)
	ro.opts.Logger = logger
	if err := ro.opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	res, err := runner.Render(ctx, ro.opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if res.Empty {
		printWarning("No hay datos para mostrar con los filtros seleccionados")
		return nil
	}

	if ro.graphFile != "" {
		if err := graph.WriteGraphFile(res.Graph.DAG, ro.graphFile); err != nil {
			return err
		}
		logger.Debug("wrote graph", "path", ro.graphFile)
	}

	formats := ro.opts.RenderFormats()
	base := basePath(ro.output)
	for _, f := range formats {
		path := outputPath(ro.output, base, f, len(formats))
		if err := writeOutput(path, res.Artifacts[f]); err != nil {
			return err
		}
		logger.Debug("wrote artifact", "format", f, "bytes", len(res.Artifacts[f]))
	}

	printSuccess("Rendered %s", describeSelection(ro.opts))
	printStats(res.Stats, res.CacheInfo.RenderHit)
	for _, f := range formats {
		printFile(outputPath(ro.output, base, f, len(formats)))
	}
	if ro.graphFile != "" {
		printFile(ro.graphFile)
	}
	if res.CacheInfo.Errors > 0 {
		printDetail("%d cache operations failed", res.CacheInfo.Errors)
	}
	return nil
}

// describeSelection names the rendered slice for status output.
func describeSelection(o pipeline.Options) string {
	var parts []string
	switch {
	case o.Global:
		parts = append(parts, "global view")
	case o.Branch != "":
		parts = append(parts, "branch "+o.Branch)
	default:
		parts = append(parts, "all programs")
	}
	if len(o.Programs) > 0 {
		parts = append(parts, fmt.Sprintf("%d programs", len(o.Programs)))
	}
	if o.Focus != "" {
		parts = append(parts, "focus "+o.Focus)
	}
	return strings.Join(parts, ", ") + " (" + o.Mode + ")"
}

// basePath strips a known format extension from output. An empty output
// yields the default base name.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for format f. A single format written to an
// explicit output path keeps that path as given.
func outputPath(output, base string, f render.Format, n int) string {
	if n == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + f.Ext()
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
