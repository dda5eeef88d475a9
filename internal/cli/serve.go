package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/alerts"
	"github.com/sauma/portfolio-tracker/internal/auth"
	"github.com/sauma/portfolio-tracker/internal/ids"
	"github.com/sauma/portfolio-tracker/internal/indicator"
	"github.com/sauma/portfolio-tracker/internal/logging"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
	"github.com/sauma/portfolio-tracker/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP server exposing the portfolio JSON API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, dev)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&dev, "dev", false, "verbose text logging for development")

	return cmd
}

func runServe(port int, dev bool) error {
	logging.Setup(dev)

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	visits := visit.NewRepository(database)
	props := property.NewService(property.NewRepository(database), visits,
		ids.NewRandom(time.Now().UnixNano()))
	lifecycle := visit.NewLifecycle(visits, ids.NewRandom(time.Now().UnixNano()))
	engine := alerts.NewEngine(props, visits)
	users := auth.NewUserStore(database)
	keys := auth.NewAPIKeyStore(database)
	uf := indicator.NewClient()

	srv := web.NewServer(props, visits, lifecycle, engine, users, uf)
	handler := logging.RequestLogger(auth.RequireAPIKey(keys, srv))

	addr := fmt.Sprintf(":%d", port)
	slog.Info("starting server", "addr", addr)
	fmt.Printf("Listening on http://localhost%s\n", addr)

	return http.ListenAndServe(addr, handler)
}
