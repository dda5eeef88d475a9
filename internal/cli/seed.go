package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/auth"
	"github.com/sauma/portfolio-tracker/internal/ids"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo data",
		Long:  "Insert demo properties and users into an empty database. Does nothing when data already exists.",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	visits := visit.NewRepository(database)
	props := property.NewService(property.NewRepository(database), visits,
		ids.NewRandom(time.Now().UnixNano()))

	if err := props.EnsureSeed(); err != nil {
		return fmt.Errorf("seeding properties: %w", err)
	}

	users := auth.NewUserStore(database)
	if err := users.EnsureSeed(); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]bool{"seeded": true})
	}

	fmt.Println("Database seeded.")
	return nil
}
