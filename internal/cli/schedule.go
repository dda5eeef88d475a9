package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "schedule <visit-id> <action> <date>",
		Short: "Schedule a new action for a visit",
		Long: `Replace a visit's active commitment with a new action.

The current commitment is archived into the visit's history before the
new one is installed.

Examples:
  pt schedule V-10234 "Enviar contrato" 2026-09-10
  pt schedule V-10234 "Llamar cliente" 2026-09-05 --note "confirmar cifras"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(args[0], args[1], args[2], note)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "optional note attached to the archived action")

	return cmd
}

func runSchedule(visitID, action, date, note string) error {
	c := newAPIClient()

	v, err := c.ScheduleNewAction(visitID, action, date, note)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("New action scheduled: %s on %s (%s)\n", v.NextAction, v.NextActionDate, v.ID)
	return nil
}
