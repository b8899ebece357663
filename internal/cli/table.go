package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/weights"
)

type tableOpts struct {
	branch   string
	match    string
	programs []string
	subjects []string
	sortBy   string
	desc     bool
	nonZero  bool
	plain    bool
}

func (c *CLI) tableCommand() *cobra.Command {
	var o tableOpts

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the weighting table",
		Long: `Print a filtered slice of the cleaned weighting table. Coefficients of 0.2
are highlighted, 0.1 dimmed to amber and zeros muted.

Examples:
  pondera table -b SD --subject Biología --subject Química --sort Biología --desc
  pondera table -p Medicina --nonzero`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			view, err := o.apply(t)
			if err != nil {
				return err
			}
			if view.Empty() {
				printWarning("No hay datos para mostrar con los filtros seleccionados")
				return nil
			}
			if o.plain {
				writePlain(cmd.OutOrStdout(), view)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(view))
			printDetail("%d programs · %d subjects", view.Len(), len(view.Columns()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.branch, "branch", "b", "", "knowledge branch code")
	cmd.Flags().StringVar(&o.match, "match", "", "branch match: exact (default), primary, any")
	cmd.Flags().StringSliceVarP(&o.programs, "program", "p", nil, "degree programs to show (repeatable)")
	cmd.Flags().StringSliceVarP(&o.subjects, "subject", "s", nil, "subject columns to show (repeatable)")
	cmd.Flags().StringVar(&o.sortBy, "sort", "", "sort by a subject column, Grado or Rama_de_conocimiento")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "print semicolon-separated text instead of a table")
	cmd.Flags().BoolVar(&o.nonZero, "nonzero", false, "drop subject columns that are zero for every shown program")

	return cmd
}

// apply narrows t by the table flags.
func (o tableOpts) apply(t *weights.Table) (*weights.Table, error) {
	match, err := weights.ParseBranchMatch(o.match)
	if err != nil {
		return nil, err
	}
	t = t.FilterBranch(o.branch, match).FilterPrograms(o.programs...)

	subjects := o.subjects
	for _, s := range subjects {
		if !t.HasColumn(s) {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown subject %q", s)
		}
	}
	if o.nonZero && len(subjects) == 0 {
		for _, col := range t.Columns() {
			if t.ColumnSum(col) > 0 {
				subjects = append(subjects, col)
			}
		}
	}
	if len(subjects) > 0 {
		t = t.SelectColumns(subjects...)
	}

	if o.sortBy != "" {
		return t.SortBy(o.sortBy, o.desc)
	}
	return t, nil
}

// renderTable draws t as a bordered terminal table.
func renderTable(t *weights.Table) string {
	cols := t.Columns()
	headers := make([]string, 0, len(cols)+2)
	headers = append(headers, "Grado", "Rama")
	for _, c := range cols {
		headers = append(headers, strings.ReplaceAll(c, "_", " "))
	}

	rows := make([][]string, 0, t.Len())
	values := make([][]float64, 0, t.Len())
	for _, r := range t.Rows() {
		vals := r.Values()
		row := make([]string, 0, len(vals)+2)
		row = append(row, r.Program, r.Branch)
		for _, v := range vals {
			row = append(row, weights.FormatCoefficient(v))
		}
		rows = append(rows, row)
		values = append(values, vals)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col < 2 || row < 0 || row >= len(values) {
				return lipgloss.NewStyle().Padding(0, 1)
			}
			return coefficientStyle(values[row][col-2]).Padding(0, 1)
		}).
		String()
}

// coefficientStyle colors a coefficient by band.
func coefficientStyle(v float64) lipgloss.Style {
	switch {
	case v >= 0.2-1e-9:
		return StyleNumber.Bold(true)
	case v >= 0.1-1e-9:
		return StyleWarning
	case v > 0:
		return StyleValue
	default:
		return StyleDim
	}
}

// writePlain prints t as semicolon-separated text for piping.
func writePlain(w io.Writer, t *weights.Table) {
	fmt.Fprintln(w, strings.Join(append([]string{weights.ProgramColumn, weights.BranchColumn}, t.Columns()...), ";"))
	for _, r := range t.Rows() {
		cells := []string{r.Program, r.Branch}
		for _, v := range r.Values() {
			cells = append(cells, weights.FormatCoefficient(v))
		}
		fmt.Fprintln(w, strings.Join(cells, ";"))
	}
}
