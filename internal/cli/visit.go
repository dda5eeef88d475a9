package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/visit"
)

func newVisitCmd() *cobra.Command {
	var (
		date       string
		executive  string
		client     string
		phone      string
		email      string
		offer      string
		broker     string
		comments   string
		action     string
		actionDate string
	)

	cmd := &cobra.Command{
		Use:   "visit <property-id>",
		Short: "Record a visit to a property",
		Long: `Record a client visit to a property.

Every visit carries a follow-up commitment: the next action and the
date it is due.

Examples:
  pt visit P-1001 --date 2026-08-28 --client "Acme Ltda" \
    --executive "Juan Pérez" --action "Llamar cliente" --action-date 2026-09-04
  pt visit P-1001 --date 2026-08-28 --client "Acme Ltda" --offer 4200 \
    --broker "Corredora XYZ" --action "Enviar propuesta" --action-date 2026-09-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := &visit.Visit{
				Date:           date,
				Executive:      executive,
				ClientName:     client,
				ClientPhone:    phone,
				ClientEmail:    email,
				BrokerName:     broker,
				HasBroker:      broker != "",
				Comments:       comments,
				NextAction:     action,
				NextActionDate: actionDate,
			}
			if offer != "" {
				amount, err := decimal.NewFromString(offer)
				if err != nil {
					return fmt.Errorf("invalid offer: %s", offer)
				}
				v.OfferUF = &amount
			}
			return runVisit(args[0], v)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "visit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&executive, "executive", "", "executive who led the visit")
	cmd.Flags().StringVar(&client, "client", "", "client name")
	cmd.Flags().StringVar(&phone, "phone", "", "client phone")
	cmd.Flags().StringVar(&email, "email", "", "client email")
	cmd.Flags().StringVar(&offer, "offer", "", "offered rent in UF")
	cmd.Flags().StringVar(&broker, "broker", "", "broker name, if one was involved")
	cmd.Flags().StringVar(&comments, "comments", "", "visit comments")
	cmd.Flags().StringVar(&action, "action", "", "next action to take")
	cmd.Flags().StringVar(&actionDate, "action-date", "", "date the next action is due (YYYY-MM-DD)")

	return cmd
}

func runVisit(propertyID string, v *visit.Visit) error {
	c := newAPIClient()

	saved, err := c.AddVisit(propertyID, v)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(saved)
	}

	fmt.Printf("Visit recorded: %s at %s (%s)\n", saved.Date, saved.PropertyID, saved.ID)
	fmt.Printf("  Next: %s on %s\n", saved.NextAction, saved.NextActionDate)
	return nil
}

func newVisitsCmd() *cobra.Command {
	var propertyID string

	cmd := &cobra.Command{
		Use:   "visits [visit-id]",
		Short: "List visits or show one with its history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runVisitShow(args[0])
			}
			return runVisitsList(propertyID)
		},
	}

	cmd.Flags().StringVar(&propertyID, "property", "", "only visits for this property")

	return cmd
}

func runVisitsList(propertyID string) error {
	c := newAPIClient()

	var (
		visits []*visit.Visit
		err    error
	)
	if propertyID != "" {
		visits, err = c.ListPropertyVisits(propertyID)
	} else {
		visits, err = c.ListVisits()
	}
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(visits)
	}

	printVisits(visits)
	return nil
}

func runVisitShow(id string) error {
	c := newAPIClient()

	v, err := c.GetVisit(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	printVisitDetail(v)
	return nil
}
