package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/analysis"
	"github.com/matzehuels/pondera/pkg/errors"
)

func (c *CLI) usefulnessCommand() *cobra.Command {
	var (
		minCoef float64
		topN    int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "usefulness",
		Short: "Rank second-year subjects by how many programs weight them",
		Long: `For each knowledge branch, count the programs that weight each subject at
least --min and list the --top subjects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			if minCoef < 0 || minCoef > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--min must be within [0, 1], got %v", minCoef)
			}
			if topN < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--top must be >= 1, got %d", topN)
			}
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			res := analysis.Usefulness(t, minCoef, topN)
			if format != outputText {
				return writeStructured(cmd.OutOrStdout(), format, res)
			}
			if len(res) == 0 {
				printInfo("No subject reaches %.2f in any branch", minCoef)
				return nil
			}
			writeUsefulness(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Float64Var(&minCoef, "min", analysis.DefaultMinCoefficient, "minimum coefficient that counts")
	cmd.Flags().IntVar(&topN, "top", analysis.DefaultTopN, "subjects listed per branch")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output: text, json or yaml")
	return cmd
}

// writeUsefulness prints one block per branch with a bar per subject.
func writeUsefulness(w io.Writer, res []analysis.BranchUsefulness) {
	for i, b := range res {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, StyleTitle.Render(b.Name)+" "+StyleDim.Render("("+b.Branch+")"))
		most := 1
		if len(b.Subjects) > 0 && b.Subjects[0].Programs > most {
			most = b.Subjects[0].Programs
		}
		for _, s := range b.Subjects {
			bar := strings.Repeat("█", max(1, s.Programs*20/most))
			fmt.Fprintf(w, "  %-40s %s %s\n",
				strings.ReplaceAll(s.Subject, "_", " "),
				StyleNumber.Render(bar),
				StyleDim.Render(fmt.Sprint(s.Programs)))
		}
	}
}
