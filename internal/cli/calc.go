package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/weights"
)

type calcOpts struct {
	bachillerato float64
	general      float64
	electives    []string
	selection    string
}

func (c *CLI) calcCommand() *cobra.Command {
	var o calcOpts

	cmd := &cobra.Command{
		Use:   "calc PROGRAM",
		Short: "Estimate an admission score",
		Long: `Estimate the admission score (nota de acceso, out of 14) for a degree program:

  0.6 × Bachillerato + 0.4 × fase general + best two coefficient × score

Specific-phase electives count when the score is at least 5 and the program
weights the subject.

Example:
  pondera calc "Ingeniería Informática" --bachillerato 7.5 --general 7 -e Matemáticas_II=6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := c.settings()
			if err != nil {
				return err
			}
			policy := cfg.Selection()
			if o.selection != "" {
				if policy, err = calculator.ParseSelection(o.selection); err != nil {
					return err
				}
			}
			in, err := o.input(args[0])
			if err != nil {
				return err
			}
			if _, ok := t.Row(in.Program); !ok {
				return errors.New(errors.ErrCodeNotFound, "unknown program %q", in.Program)
			}
			res, err := calculator.Compute(t, in, policy)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().Float64Var(&o.bachillerato, "bachillerato", 0, "Bachillerato average (0-10)")
	cmd.Flags().Float64Var(&o.general, "general", 0, "general phase score (0-10)")
	cmd.Flags().StringArrayVarP(&o.electives, "elective", "e", nil, "specific-phase exam as SUBJECT=SCORE (repeatable)")
	cmd.Flags().StringVar(&o.selection, "selection", "", "which electives count: contribution or input-order")
	_ = cmd.MarkFlagRequired("bachillerato")
	_ = cmd.MarkFlagRequired("general")

	return cmd
}

// input builds the calculator input from the flags.
func (o calcOpts) input(program string) (calculator.Input, error) {
	in := calculator.Input{
		Program:      strings.TrimSpace(program),
		Bachillerato: o.bachillerato,
		GeneralPhase: o.general,
	}
	for _, e := range o.electives {
		el, err := parseElective(e)
		if err != nil {
			return in, err
		}
		in.Electives = append(in.Electives, el)
	}
	return in, nil
}

// parseElective parses "Subject=score". Spaces in the subject become
// underscores and a comma decimal separator is accepted.
func parseElective(s string) (calculator.Elective, error) {
	subject, score, ok := strings.Cut(s, "=")
	subject = weights.NormalizeColumn(subject)
	if !ok || subject == "" {
		return calculator.Elective{}, errors.New(errors.ErrCodeInvalidInput, "elective %q: want SUBJECT=SCORE", s)
	}
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(score), ",", ".", 1), 64)
	if err != nil {
		return calculator.Elective{}, errors.New(errors.ErrCodeInvalidInput, "elective %q: score is not a number", s)
	}
	return calculator.Elective{Subject: subject, Score: v}, nil
}

func printResult(res calculator.Result) {
	fmt.Println(StyleTitle.Render(res.Program))
	printKeyValue("Fase general", fmt.Sprintf("%.3f", res.Base))
	printKeyValue("Específica", fmt.Sprintf("%.3f", res.Bonus))
	printKeyValue("Nota final", StyleHighlight.Bold(true).Render(fmt.Sprintf("%.3f", res.Final))+StyleDim.Render(" / 14"))
	for _, e := range res.Electives {
		line := fmt.Sprintf("%s: %.2f × %s = %.3f",
			strings.ReplaceAll(e.Subject, "_", " "), e.Score, weights.FormatCoefficient(e.Coefficient), e.Contribution)
		if e.Counted {
			fmt.Println("  " + lipgloss.NewStyle().Foreground(colorGreen).Render(iconSuccess+" "+line))
		} else {
			printDetail("%s (%s)", line, e.Reason)
		}
	}
	printDetail("selection: %s", res.Selection)
}
