package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sauma/portfolio-tracker/internal/alerts"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/report"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property summary in text format.
func printPropertySummary(p *property.Property) {
	fmt.Printf("Property %s\n", p.ID)
	fmt.Printf("  Name:     %s\n", p.Name)
	fmt.Printf("  Address:  %s\n", p.Address)
	if p.Commune != "" {
		fmt.Printf("  Commune:  %s\n", p.Commune)
	}
	if p.Type != "" {
		fmt.Printf("  Type:     %s\n", p.Type)
	}
	if p.BuiltM2 > 0 {
		fmt.Printf("  Built:    %.0f m2\n", p.BuiltM2)
	}
	if p.LandM2 > 0 {
		fmt.Printf("  Land:     %.0f m2\n", p.LandM2)
	}
	if p.Owner != "" {
		fmt.Printf("  Owner:    %s\n", p.Owner)
	}
	fmt.Printf("  Price:    UF %s\n", p.PriceUF.StringFixed(0))
	fmt.Printf("  Status:   %s\n", p.Status.Label())
	switch {
	case p.Availability != nil:
		fmt.Printf("  Vacant:   since %s\n", p.Availability.VacancyStartDate)
	case p.Lease != nil:
		fmt.Printf("  Tenant:   %s (%s to %s, %s)\n",
			p.Lease.Tenant, p.Lease.StartDate, p.Lease.EndDate, p.Lease.Type)
	case p.Notice != nil:
		fmt.Printf("  Notice:   ends %s\n", p.Notice.NoticeEndDate)
	}
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(props []*property.Property) error {
	if len(props) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tCOMMUNE\tSTATUS\tPRICE UF\tDETAIL"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-------\t------\t--------\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		detail := "-"
		switch {
		case p.Availability != nil:
			detail = "vacant since " + p.Availability.VacancyStartDate
		case p.Lease != nil:
			detail = p.Lease.Tenant + " until " + p.Lease.EndDate
		case p.Notice != nil:
			detail = "notice ends " + p.Notice.NoticeEndDate
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Name, 30), p.Commune, p.Status.Label(),
			p.PriceUF.StringFixed(0), detail); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(props))
	return nil
}

// printVisits prints visits in text format.
func printVisits(visits []*visit.Visit) {
	if len(visits) == 0 {
		fmt.Println("No visits recorded.")
		return
	}

	for _, v := range visits {
		fmt.Printf("[%s] %s visited by %s (%s)\n", v.Date, v.PropertyID, v.ClientName, v.ID)
		if v.Executive != "" {
			fmt.Printf("  Executive: %s\n", v.Executive)
		}
		if v.OfferUF != nil {
			fmt.Printf("  Offer:     UF %s\n", v.OfferUF.StringFixed(0))
		}
		fmt.Printf("  Next:      %s on %s [%s]\n", v.NextAction, v.NextActionDate, v.ActionStatus)
		fmt.Println()
	}
}

// printVisitDetail prints a visit with its full action history.
func printVisitDetail(v *visit.Visit) {
	fmt.Printf("Visit %s\n", v.ID)
	fmt.Printf("  Property:  %s\n", v.PropertyID)
	fmt.Printf("  Date:      %s\n", v.Date)
	fmt.Printf("  Client:    %s\n", v.ClientName)
	if v.ClientPhone != "" {
		fmt.Printf("  Phone:     %s\n", v.ClientPhone)
	}
	if v.Executive != "" {
		fmt.Printf("  Executive: %s\n", v.Executive)
	}
	if v.OfferUF != nil {
		fmt.Printf("  Offer:     UF %s\n", v.OfferUF.StringFixed(0))
	}
	if v.Comments != "" {
		fmt.Printf("  Comments:  %s\n", v.Comments)
	}
	fmt.Printf("  Action:    %s on %s [%s]\n", v.NextAction, v.NextActionDate, v.ActionStatus)
	if v.ActionCompletedDate != "" {
		fmt.Printf("  Completed: %s\n", v.ActionCompletedDate)
	}

	if len(v.History) > 0 {
		fmt.Printf("\nAction history (%d):\n", len(v.History))
		for _, h := range v.History {
			fmt.Printf("  [%s] %s (%s)", h.ScheduledDate, h.Action, h.Status)
			if h.Note != "" {
				fmt.Printf(": %s", h.Note)
			}
			fmt.Println()
		}
	}
}

// printAlerts prints the alert report in text format.
func printAlerts(result *alerts.Result) {
	if len(result.StaleProperties) == 0 && len(result.ActionAlerts) == 0 {
		fmt.Println("No alerts. Everything is up to date.")
		return
	}

	if len(result.StaleProperties) > 0 {
		fmt.Printf("Stale properties (%d):\n", len(result.StaleProperties))
		for _, s := range result.StaleProperties {
			last := "never visited"
			if s.LastVisitDate != "" {
				last = "last visit " + s.LastVisitDate
			}
			fmt.Printf("  %s %s: %d days without activity (%s)\n",
				s.Property.ID, s.Property.Name, s.DaysIdle, last)
		}
		fmt.Println()
	}

	if len(result.ActionAlerts) > 0 {
		fmt.Printf("Pending commitments (%d):\n", len(result.ActionAlerts))
		for _, a := range result.ActionAlerts {
			when := fmt.Sprintf("due in %d days", a.DaysLeft)
			if a.DaysLeft < 0 {
				when = fmt.Sprintf("%d days overdue", -a.DaysLeft)
			} else if a.DaysLeft == 0 {
				when = "due today"
			}
			fmt.Printf("  [%s] %s: %s for %s, %s (%s)\n",
				a.Level, a.Visit.ID, a.Visit.NextAction, a.Visit.ClientName,
				when, a.Visit.NextActionDate)
		}
	}
}

// printExecutiveReport prints per-executive visit activity.
func printExecutiveReport(rows []report.ExecutiveActivity) error {
	if len(rows) == 0 {
		fmt.Println("No executives found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "EXECUTIVE\tTHIS WEEK\tTHIS MONTH\tPREV MONTH"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
			r.Name, r.ThisWeek, r.ThisMonth, r.PrevMonth); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

// printStockSummary prints the portfolio composition summary.
func printStockSummary(s *report.StockSummary) {
	fmt.Printf("Available:     %d\n", s.Available)
	fmt.Printf("Leased:        %d\n", s.Leased)
	fmt.Printf("Notice given:  %d\n", s.NoticeGiven)
	if s.Available > 0 {
		fmt.Printf("Avg vacancy:   %d days\n", s.AvgVacancyDays)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
