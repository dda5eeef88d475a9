package cli

import (
	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Show stale properties and pending commitments",
		Long:  "Show properties without recent activity and follow-up commitments that are due soon or overdue.",
		Args:  cobra.NoArgs,
		RunE:  runAlerts,
	}
}

func runAlerts(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	result, err := c.Alerts()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(result)
	}

	printAlerts(result)
	return nil
}
