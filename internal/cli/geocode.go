package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/geo"
)

func newGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <property-id>",
		Short: "Look up a property's coordinates",
		Long:  "Geocode a property's address. Requires a Google API key via PT_GEO_KEY or geo_api_key in the config file.",
		Args:  cobra.ExactArgs(1),
		RunE:  runGeocode,
	}
}

func runGeocode(cmd *cobra.Command, args []string) error {
	gc, err := geo.NewClient(getGeoAPIKey())
	if err != nil {
		return err
	}

	c := newAPIClient()

	resp, err := c.GetProperty(args[0])
	if err != nil {
		return err
	}

	address := resp.Property.Address
	if resp.Property.Commune != "" {
		address += ", " + resp.Property.Commune
	}

	coords, err := gc.Geocode(address)
	if err != nil {
		return fmt.Errorf("geocoding %s: %w", address, err)
	}

	if isJSON() {
		return printJSON(coords)
	}

	fmt.Printf("%s\n  %s\n  %.6f, %.6f\n", resp.Property.ID, address, coords.Lat, coords.Lng)
	return nil
}
