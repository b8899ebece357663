package weights

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/viant/afs"
	"golang.org/x/text/encoding/charmap"

	"github.com/matzehuels/pondera/pkg/errors"
)

// Source encodings reported by [Table.Encoding].
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// DefaultSplitBranches lists the compound codes expanded into one row per
// component when no other list is configured.
var DefaultSplitBranches = []string{"C+SD"}

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	footnote = regexp.MustCompile(`(?i)pondera|no pondera|this work`)
)

// Options controls parsing.
type Options struct {
	// Delimiter is the field separator. Zero auto-detects ';' or ','.
	Delimiter rune

	// SplitBranches lists compound branch codes whose rows are duplicated,
	// one copy per component branch. Codes compare with spaces removed.
	SplitBranches []string
}

// DefaultOptions returns options with auto-detected delimiter and the
// default compound expansion.
func DefaultOptions() Options {
	return Options{SplitBranches: DefaultSplitBranches}
}

// Load reads a weighting table from a local path or URL (file://, mem://,
// http://, https://) and parses it.
func Load(ctx context.Context, location string, opts Options) (*Table, error) {
	if err := errors.ValidateLocation(location); err != nil {
		return nil, err
	}
	fs := afs.New()
	ok, err := fs.Exists(ctx, location)
	if err != nil || !ok {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "weights file %q not found", location)
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %q", location)
	}
	return Parse(data, opts)
}

// Parse cleans raw delimited text into a Table.
//
// Undecodable UTF-8 falls back to ISO-8859-1. Malformed records are skipped
// and counted. Rows without a branch, or whose program name is a footnote,
// are dropped. Empty or unparseable cells become 0. A header with no
// records is EMPTY_DATA; a header without the branch column is
// MISSING_COLUMN. A file whose rows are all dropped by cleaning yields an
// empty table, not an error.
func Parse(data []byte, opts Options) (*Table, error) {
	text, encoding := decode(data)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeEmptyData, "weights file is empty")
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = detectDelimiter(text)
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeEmptyData, "weights file has no header")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}

	layout, err := readHeader(header)
	if err != nil {
		return nil, err
	}
	t := &Table{
		columns:  layout.columns,
		index:    make(map[string]int, len(layout.columns)),
		legend:   layout.legend,
		encoding: encoding,
	}
	for i, c := range t.columns {
		t.index[c] = i
	}

	split := make(map[string]bool, len(opts.SplitBranches))
	for _, b := range opts.SplitBranches {
		split[compactBranch(b)] = true
	}

	records := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		records++
		if err != nil || len(rec) > len(header) {
			t.skipped++
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}

		program := strings.TrimSpace(rec[0])
		branch := strings.TrimSpace(rec[layout.branch])
		if branch == "" || program == "" || footnote.MatchString(program) {
			continue
		}
		vals := make([]float64, len(layout.sources))
		for i, src := range layout.sources {
			vals[i] = parseCoefficient(rec[src])
		}

		if split[compactBranch(branch)] {
			for _, part := range BranchComponents(branch) {
				t.rows = append(t.rows, t.newRow(program, part, append([]float64(nil), vals...)))
			}
			continue
		}
		t.rows = append(t.rows, t.newRow(program, branch, vals))
	}
	if records == 0 {
		return nil, errors.New(errors.ErrCodeEmptyData, "weights file has no records")
	}
	return t, nil
}

type headerLayout struct {
	branch  int
	columns []string
	sources []int
	legend  Legend
}

func readHeader(header []string) (headerLayout, error) {
	layout := headerLayout{branch: -1}
	if len(header) > 0 {
		if legend, ok := ParseLegend(header[0]); ok {
			layout.legend = legend
		}
	}
	seen := make(map[string]bool)
	for i := 1; i < len(header); i++ {
		name := NormalizeColumn(header[i])
		switch {
		case name == "":
			continue
		case strings.EqualFold(name, BranchColumn):
			if layout.branch < 0 {
				layout.branch = i
			}
			continue
		case seen[name]:
			continue
		}
		seen[name] = true
		layout.columns = append(layout.columns, name)
		layout.sources = append(layout.sources, i)
	}
	if layout.branch < 0 {
		return layout, errors.New(errors.ErrCodeMissingColumn, "column 'Rama de conocimiento' not found")
	}
	return layout, nil
}

// NormalizeColumn trims a header and replaces spaces and hyphens with
// underscores. Accents are preserved.
func NormalizeColumn(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func parseCoefficient(cell string) float64 {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", ".")
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func decode(data []byte) (string, string) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}
	// Every byte is a valid ISO-8859-1 code point, so decoding cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(out), EncodingLatin1
}

// detectDelimiter counts separators in the first record, ignoring quoted
// text so a multi-line legend cell does not hide the header.
func detectDelimiter(text string) rune {
	var semis, commas int
	quoted := false
	for _, c := range text {
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '\n':
			return pick(semis, commas)
		case c == ';':
			semis++
		case c == ',':
			commas++
		}
	}
	return pick(semis, commas)
}

func pick(semis, commas int) rune {
	if semis > commas {
		return ';'
	}
	return ','
}
