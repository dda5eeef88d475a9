package cli

import (
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Portfolio reports",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "executives",
			Short: "Visit counts per executive",
			Args:  cobra.NoArgs,
			RunE:  runReportExecutives,
		},
		&cobra.Command{
			Use:   "stock",
			Short: "Portfolio composition by status",
			Args:  cobra.NoArgs,
			RunE:  runReportStock,
		},
	)

	return cmd
}

func runReportExecutives(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	rows, err := c.ExecutiveReport()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(rows)
	}

	return printExecutiveReport(rows)
}

func runReportStock(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	summary, err := c.StockReport()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(summary)
	}

	printStockSummary(summary)
	return nil
}
