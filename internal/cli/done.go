package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <visit-id>",
		Short: "Complete a visit's pending commitment",
		Long:  "Mark a visit's active commitment as done, recording today as the completion date.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDone,
	}
}

func runDone(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	v, err := c.MarkDone(args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("Commitment completed: %s (%s)\n", v.NextAction, v.ID)
	return nil
}
