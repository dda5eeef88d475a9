// Package cli defines the cobra command tree for portfolio-tracker.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/client"
	"github.com/sauma/portfolio-tracker/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pt",
		Short:         "Track a rental property portfolio",
		Long:          "A tool to manage a rental property portfolio. Track property status, record visits, follow up on commitments, and review alerts via CLI or web API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.pt/portfolio.db)")

	root.AddCommand(
		newPropertyCmd(),
		newVisitCmd(),
		newVisitsCmd(),
		newDoneCmd(),
		newScheduleCmd(),
		newAlertsCmd(),
		newReportCmd(),
		newUFCmd(),
		newSeedCmd(),
		newSyncCmd(),
		newGeocodeCmd(),
		newServeCmd(),
		newKeyCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
// Used by the serve and seed commands, which talk to the DB directly.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the portfolio-tracker API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getAPIKey())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
