package render

import (
	"strings"

	"github.com/matzehuels/pondera/pkg/errors"
)

// Format is a diagram output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatDOT Format = "dot"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatJPG, FormatDOT}

// ParseFormat parses a format name. "jpeg" is accepted for jpg and the
// empty string means svg.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSVG, nil
	case "jpeg":
		return FormatJPG, nil
	case FormatSVG, FormatPNG, FormatJPG, FormatDOT:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want svg, png, jpg or dot)", s)
}

// ParseFormats parses a comma-separated list, dropping duplicates.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ContentType returns the media type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Binary reports whether the format is not text.
func (f Format) Binary() bool { return f == FormatPNG || f == FormatJPG }
