package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/render"
)

// Render lays out DOT source with Graphviz and encodes it in format.
// FormatDOT returns the source unchanged.
func Render(ctx context.Context, dot string, format render.Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		gvFormat = graphviz.SVG
	case render.FormatPNG:
		gvFormat = graphviz.PNG
	case render.FormatJPG:
		gvFormat = graphviz.JPG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if format == render.FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG is Render with [render.FormatSVG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, render.FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container in the dashboard. Graphviz emits fixed pt sizes otherwise.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
