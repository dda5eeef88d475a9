package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/client"
	"github.com/sauma/portfolio-tracker/internal/property"
)

// propertyFlags holds the shared flag set for property add and save.
type propertyFlags struct {
	name        string
	address     string
	commune     string
	propType    string
	landM2      float64
	builtM2     float64
	storageM2   float64
	condominium string
	owner       string
	priceUF     string
	status      string
	vacancyFrom string
	noticeEnd   string
	tenant      string
	leaseStart  string
	leaseEnd    string
	leaseType   string
}

func (f *propertyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "property name")
	cmd.Flags().StringVar(&f.address, "address", "", "street address")
	cmd.Flags().StringVar(&f.commune, "commune", "", "commune")
	cmd.Flags().StringVar(&f.propType, "type", "", "property type (e.g. Bodega, Oficina)")
	cmd.Flags().Float64Var(&f.landM2, "land", 0, "land surface in m2")
	cmd.Flags().Float64Var(&f.builtM2, "built", 0, "built surface in m2")
	cmd.Flags().Float64Var(&f.storageM2, "storage", 0, "storage surface in m2")
	cmd.Flags().StringVar(&f.condominium, "condominium", "", "condominium name")
	cmd.Flags().StringVar(&f.owner, "owner", "", "owner name")
	cmd.Flags().StringVar(&f.priceUF, "price", "", "asking rent in UF")
	cmd.Flags().StringVar(&f.status, "status", "", "status (AVAILABLE|LEASED|NOTICE_GIVEN)")
	cmd.Flags().StringVar(&f.vacancyFrom, "vacancy-from", "", "vacancy start date (YYYY-MM-DD, AVAILABLE only)")
	cmd.Flags().StringVar(&f.noticeEnd, "notice-end", "", "notice end date (YYYY-MM-DD, NOTICE_GIVEN only)")
	cmd.Flags().StringVar(&f.tenant, "tenant", "", "tenant name (LEASED only)")
	cmd.Flags().StringVar(&f.leaseStart, "lease-start", "", "lease start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.leaseEnd, "lease-end", "", "lease end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.leaseType, "lease-type", "", "lease type (FIXED|RENEWABLE)")
}

// apply copies the set flags onto p.
func (f *propertyFlags) apply(cmd *cobra.Command, p *property.Property) error {
	if cmd.Flags().Changed("name") {
		p.Name = f.name
	}
	if cmd.Flags().Changed("address") {
		p.Address = f.address
	}
	if cmd.Flags().Changed("commune") {
		p.Commune = f.commune
	}
	if cmd.Flags().Changed("type") {
		p.Type = f.propType
	}
	if cmd.Flags().Changed("land") {
		p.LandM2 = f.landM2
	}
	if cmd.Flags().Changed("built") {
		p.BuiltM2 = f.builtM2
	}
	if cmd.Flags().Changed("storage") {
		p.StorageM2 = f.storageM2
	}
	if cmd.Flags().Changed("condominium") {
		p.Condominium = f.condominium
	}
	if cmd.Flags().Changed("owner") {
		p.Owner = f.owner
	}
	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(f.priceUF)
		if err != nil {
			return fmt.Errorf("invalid price: %s", f.priceUF)
		}
		p.PriceUF = price
	}
	if cmd.Flags().Changed("status") {
		p.Status = property.Status(f.status)
	}
	if cmd.Flags().Changed("vacancy-from") {
		p.Availability = &property.Availability{VacancyStartDate: f.vacancyFrom}
	}
	if cmd.Flags().Changed("notice-end") {
		p.Notice = &property.Notice{NoticeEndDate: f.noticeEnd}
	}
	if cmd.Flags().Changed("tenant") || cmd.Flags().Changed("lease-start") ||
		cmd.Flags().Changed("lease-end") || cmd.Flags().Changed("lease-type") {
		lease := p.Lease
		if lease == nil {
			lease = &property.Lease{}
		}
		if cmd.Flags().Changed("tenant") {
			lease.Tenant = f.tenant
		}
		if cmd.Flags().Changed("lease-start") {
			lease.StartDate = f.leaseStart
		}
		if cmd.Flags().Changed("lease-end") {
			lease.EndDate = f.leaseEnd
		}
		if cmd.Flags().Changed("lease-type") {
			lease.Type = property.LeaseType(f.leaseType)
		}
		p.Lease = lease
	}
	return nil
}

func newPropertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property",
		Short: "Manage portfolio properties",
	}

	cmd.AddCommand(
		newPropertyAddCmd(),
		newPropertyListCmd(),
		newPropertyShowCmd(),
		newPropertySaveCmd(),
		newPropertyRemoveCmd(),
	)

	return cmd
}

func newPropertyAddCmd() *cobra.Command {
	var flags propertyFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property to the portfolio",
		Long: `Add a property to the portfolio.

Examples:
  pt property add --name "Bodega Norte" --address "Av. Industrial 1200" \
    --commune Quilicura --type Bodega --built 800 --price 4500 \
    --status AVAILABLE --vacancy-from 2026-08-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropertyAdd(cmd, &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runPropertyAdd(cmd *cobra.Command, flags *propertyFlags) error {
	p := &property.Property{Status: property.StatusAvailable}
	if err := flags.apply(cmd, p); err != nil {
		return err
	}

	c := newAPIClient()

	saved, err := c.SaveProperty(p)
	if err != nil {
		return fmt.Errorf("adding property: %w", err)
	}

	if isJSON() {
		return printJSON(saved)
	}

	fmt.Println("Property added.")
	printPropertySummary(saved)
	return nil
}

func newPropertyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all properties",
		Args:  cobra.NoArgs,
		RunE:  runPropertyList,
	}
}

func runPropertyList(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	props, err := c.ListProperties()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(props)
	}

	return printPropertyTable(props)
}

func newPropertyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Long:  "Show full details for a property, including its visits.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPropertyShow,
	}
}

func runPropertyShow(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	resp, err := c.GetProperty(args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(resp)
	}

	printPropertySummary(resp.Property)
	fmt.Println()
	if len(resp.Visits) > 0 {
		fmt.Printf("Visits (%d):\n", len(resp.Visits))
		printVisits(resp.Visits)
	} else {
		fmt.Println("No visits recorded.")
	}

	return nil
}

func newPropertySaveCmd() *cobra.Command {
	var flags propertyFlags

	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Update a property",
		Long: `Update a property's fields or status.

A change to LEASED is blocked while the winning client still has pending
commitments. Complete them with 'pt done <visit-id>' and save again;
open commitments from other clients are closed automatically.

Examples:
  pt property save P-1001 --price 4800
  pt property save P-1001 --status LEASED --tenant "Acme Ltda" \
    --lease-start 2026-09-01 --lease-end 2028-08-31 --lease-type FIXED`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropertySave(cmd, args[0], &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runPropertySave(cmd *cobra.Command, id string, flags *propertyFlags) error {
	c := newAPIClient()

	resp, err := c.GetProperty(id)
	if err != nil {
		return err
	}

	p := resp.Property
	if err := flags.apply(cmd, p); err != nil {
		return err
	}

	saved, err := c.SaveProperty(p)
	if err != nil {
		var conflict *client.LeaseConflict
		if errors.As(err, &conflict) {
			return printLeaseConflict(conflict)
		}
		return err
	}

	if isJSON() {
		return printJSON(saved)
	}

	fmt.Println("Property saved.")
	printPropertySummary(saved)
	return nil
}

// printLeaseConflict reports the visits blocking a lease and how to clear them.
func printLeaseConflict(conflict *client.LeaseConflict) error {
	if isJSON() {
		if err := printJSON(conflict); err != nil {
			return err
		}
		return fmt.Errorf("lease blocked on pending commitments")
	}

	fmt.Printf("Cannot lease yet: %s has pending commitments.\n\n", conflict.Winner)
	for _, v := range conflict.PendingWinnerVisits {
		fmt.Printf("  %s: %s on %s\n", v.ID, v.NextAction, v.NextActionDate)
	}
	fmt.Println("\nComplete them with 'pt done <visit-id>' and save again.")
	return fmt.Errorf("lease blocked on pending commitments")
}

func newPropertyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a property",
		Long:  "Remove a property and all its visits. Leased properties cannot be removed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPropertyRemove,
	}
}

func runPropertyRemove(cmd *cobra.Command, args []string) error {
	c := newAPIClient()

	if err := c.DeleteProperty(args[0]); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"id":      args[0],
			"removed": true,
		})
	}

	fmt.Printf("Property %s removed.\n", args[0])
	return nil
}
