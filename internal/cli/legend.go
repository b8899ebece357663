package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) legendCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "legend",
		Short: "Print the legend embedded in the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			l := t.Legend()
			if l.Empty() {
				printInfo("The data file has no legend")
				return nil
			}
			if format != outputText {
				return writeStructured(cmd.OutOrStdout(), format, l)
			}
			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render("Leyenda"))
			if len(l.Entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), l.Raw)
				return nil
			}
			for _, e := range l.Entries {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s %s\n",
					StyleHighlight.Width(6).Render(e.Abbreviation),
					StyleValue.Render(e.Description),
					StyleDim.Render(e.Label))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output: text, json or yaml")
	return cmd
}
