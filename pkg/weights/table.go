package weights

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/pondera/pkg/errors"
)

// Fixed column names after normalization.
const (
	ProgramColumn = "Grado"
	BranchColumn  = "Rama_de_conocimiento"
)

// Row is one degree program with its branch tag and one coefficient per
// subject column. Rows are values; they never change once a Table is built.
type Row struct {
	Program string
	Branch  string

	columns []string
	index   map[string]int
	values  []float64
}

// Get returns the coefficient for the given subject column, or 0 when the
// column is unknown.
func (r Row) Get(column string) float64 {
	if i, ok := r.index[column]; ok {
		return r.values[i]
	}
	return 0
}

// Values returns a copy of the coefficients in column order.
func (r Row) Values() []float64 { return slices.Clone(r.values) }

// Positive returns the subject columns with a coefficient above zero, in
// column order.
func (r Row) Positive() []string {
	var out []string
	for i, v := range r.values {
		if v > 0 {
			out = append(out, r.columns[i])
		}
	}
	return out
}

// Record is the input form used by [New] to assemble a table in code.
// Missing subjects default to 0.
type Record struct {
	Program string
	Branch  string
	Values  map[string]float64
}

// Table is the cleaned weighting dataset: one row per degree program and
// one column per second-year subject.
//
// A Table is immutable. Every filter returns a new Table sharing nothing
// mutable with the receiver, so a single Table can be read from many
// goroutines.
type Table struct {
	columns  []string
	index    map[string]int
	rows     []Row
	legend   Legend
	encoding string
	skipped  int
}

// New builds a table from in-memory records. Columns must be unique and
// non-empty.
func New(columns []string, records ...Record) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty column name")
		}
		if _, dup := index[c]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate column %q", c)
		}
		index[c] = i
	}
	t := &Table{columns: slices.Clone(columns), index: index, encoding: EncodingUTF8}
	for _, rec := range records {
		vals := make([]float64, len(columns))
		for name, v := range rec.Values {
			i, ok := index[name]
			if !ok {
				return nil, errors.New(errors.ErrCodeMissingColumn, "unknown column %q for %q", name, rec.Program)
			}
			vals[i] = v
		}
		t.rows = append(t.rows, t.newRow(rec.Program, rec.Branch, vals))
	}
	return t, nil
}

func (t *Table) newRow(program, branch string, values []float64) Row {
	return Row{Program: program, Branch: branch, columns: t.columns, index: t.index, values: values}
}

// derive returns a table with the receiver's metadata and the given rows.
func (t *Table) derive(rows []Row) *Table {
	return &Table{
		columns:  t.columns,
		index:    t.index,
		rows:     rows,
		legend:   t.legend,
		encoding: t.encoding,
		skipped:  t.skipped,
	}
}

// Columns returns the subject columns in file order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Rows returns the rows in file order.
func (t *Table) Rows() []Row { return slices.Clone(t.rows) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Legend returns the legend embedded in the header, if any.
func (t *Table) Legend() Legend { return t.legend }

// Encoding returns the text encoding the source was decoded with.
func (t *Table) Encoding() string { return t.encoding }

// Skipped returns how many source records were discarded as malformed.
func (t *Table) Skipped() int { return t.skipped }

// HasColumn reports whether name is a subject column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns the first row for the given program.
func (t *Table) Row(program string) (Row, bool) {
	for _, r := range t.rows {
		if r.Program == program {
			return r, true
		}
	}
	return Row{}, false
}

// Coefficient returns the coefficient of subject for the first row of
// program, or 0 when either is unknown.
func (t *Table) Coefficient(program, subject string) float64 {
	r, ok := t.Row(program)
	if !ok {
		return 0
	}
	return r.Get(subject)
}

// ColumnSum returns the sum of a subject column over all rows.
func (t *Table) ColumnSum(column string) float64 {
	i, ok := t.index[column]
	if !ok {
		return 0
	}
	var sum float64
	for _, r := range t.rows {
		sum += r.values[i]
	}
	return sum
}

// Branches returns the distinct branch codes in order of first appearance.
func (t *Table) Branches() []string {
	return distinct(t.rows, func(r Row) string { return r.Branch })
}

// Programs returns the distinct program names in order of first appearance.
func (t *Table) Programs() []string {
	return distinct(t.rows, func(r Row) string { return r.Program })
}

func distinct(rows []Row, key func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Hash returns a stable content hash of the columns and rows, suitable for
// cache keys. Two tables with the same data hash equally regardless of how
// they were produced.
func (t *Table) Hash() string {
	h := sha256.New()
	for _, c := range t.columns {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	for _, r := range t.rows {
		h.Write([]byte{1})
		h.Write([]byte(r.Program))
		h.Write([]byte{0})
		h.Write([]byte(r.Branch))
		for _, v := range r.values {
			h.Write([]byte{0})
			h.Write([]byte(strconv.FormatFloat(v, 'g', -1, 64)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// =============================================================================
// Filters
// =============================================================================

// BranchMatch selects how [Table.FilterBranch] compares branch codes.
type BranchMatch int

const (
	// MatchExact keeps rows whose branch equals the code (spaces ignored).
	MatchExact BranchMatch = iota
	// MatchPrimary keeps rows whose first branch component equals the code.
	MatchPrimary
	// MatchAny keeps rows where any branch component equals the code.
	MatchAny
)

// ParseBranchMatch parses "exact", "primary" or "any".
func ParseBranchMatch(s string) (BranchMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "primary":
		return MatchPrimary, nil
	case "any":
		return MatchAny, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown branch match %q", s)
}

func (m BranchMatch) String() string {
	switch m {
	case MatchPrimary:
		return "primary"
	case MatchAny:
		return "any"
	default:
		return "exact"
	}
}

// FilterBranch keeps the rows whose branch matches code. An empty code
// returns the table unchanged.
func (t *Table) FilterBranch(code string, match BranchMatch) *Table {
	code = compactBranch(code)
	if code == "" {
		return t
	}
	return t.Where(func(r Row) bool {
		parts := BranchComponents(r.Branch)
		switch match {
		case MatchPrimary:
			return len(parts) > 0 && parts[0] == code
		case MatchAny:
			return slices.Contains(parts, code)
		default:
			return compactBranch(r.Branch) == code
		}
	})
}

// FilterPrograms keeps the rows whose program is one of names. No names
// returns the table unchanged.
func (t *Table) FilterPrograms(names ...string) *Table {
	if len(names) == 0 {
		return t
	}
	return t.Where(func(r Row) bool { return slices.Contains(names, r.Program) })
}

// Where keeps the rows for which keep returns true.
func (t *Table) Where(keep func(Row) bool) *Table {
	var rows []Row
	for _, r := range t.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// SelectColumns keeps the named subject columns in table order. Unknown
// names are ignored, so selecting only unknown names yields a table with
// rows but no columns.
func (t *Table) SelectColumns(names ...string) *Table {
	var cols []string
	var src []int
	for i, c := range t.columns {
		if slices.Contains(names, c) {
			cols = append(cols, c)
			src = append(src, i)
		}
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	out := &Table{columns: cols, index: index, legend: t.legend, encoding: t.encoding, skipped: t.skipped}
	for _, r := range t.rows {
		vals := make([]float64, len(src))
		for j, i := range src {
			vals[j] = r.values[i]
		}
		out.rows = append(out.rows, out.newRow(r.Program, r.Branch, vals))
	}
	return out
}

// SortBy returns the rows sorted by a column. ProgramColumn and BranchColumn
// sort as text; subject columns sort numerically. The sort is stable.
func (t *Table) SortBy(column string, desc bool) (*Table, error) {
	var less func(a, b Row) int
	switch column {
	case ProgramColumn:
		less = func(a, b Row) int { return strings.Compare(a.Program, b.Program) }
	case BranchColumn:
		less = func(a, b Row) int { return strings.Compare(a.Branch, b.Branch) }
	default:
		i, ok := t.index[column]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown column %q", column)
		}
		less = func(a, b Row) int { return cmp.Compare(a.values[i], b.values[i]) }
	}
	rows := slices.Clone(t.rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return t.derive(rows), nil
}

// FormatCoefficient renders a coefficient the way the diagram labels it.
func FormatCoefficient(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
