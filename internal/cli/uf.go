package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newUFCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "uf",
		Short: "Show the current UF value",
		Long: `Show the current UF reference value in Chilean pesos.

With --amount, also converts that UF amount to pesos.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUF(amount)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "UF amount to convert to CLP")

	return cmd
}

func runUF(amount string) error {
	c := newAPIClient()

	value, err := c.UF()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(value)
	}

	fmt.Printf("UF (%s): $%s CLP\n", value.Date, value.UF.StringFixed(2))

	if amount != "" {
		uf, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %s", amount)
		}
		fmt.Printf("UF %s = $%s CLP\n", uf.StringFixed(0), value.CLP(uf).StringFixed(0))
	}

	return nil
}
