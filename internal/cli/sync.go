package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/ids"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/remote"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import properties from the remote row store",
		Long: `Fetch the property table from the hosted row store and merge it into
the local database. Remote rows overwrite local fields for matching
ids; new rows are inserted. Configure with PT_REMOTE_URL and
PT_REMOTE_KEY, or remote_url/remote_api_key in the config file.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	url, key := getRemote()
	rc, err := remote.NewClient(url, key)
	if err != nil {
		return err
	}

	rows, err := rc.FetchProperties()
	if err != nil {
		return fmt.Errorf("fetching remote properties: %w", err)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	visits := visit.NewRepository(database)
	repo := property.NewRepository(database)
	props := property.NewService(repo, visits, ids.NewRandom(time.Now().UnixNano()))

	var inserted, updated int
	for _, p := range rows {
		existed, err := repo.Exists(p.ID)
		if err != nil {
			return fmt.Errorf("checking %s: %w", p.ID, err)
		}

		// Remote rows are a snapshot; the lease gate doesn't apply.
		if _, err := props.SaveResolved(p); err != nil {
			return fmt.Errorf("saving %s: %w", p.ID, err)
		}

		if existed {
			updated++
		} else {
			inserted++
		}
	}

	if isJSON() {
		return printJSON(map[string]int{
			"fetched":  len(rows),
			"inserted": inserted,
			"updated":  updated,
		})
	}

	fmt.Printf("Synced %d properties (%d new, %d updated).\n", len(rows), inserted, updated)
	return nil
}
