package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sauma/portfolio-tracker/internal/auth"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name> <email>",
			Short: "Create an API key for a user",
			Long:  "Create an API key tied to a user's email. The raw key is shown once; store it safely.",
			Args:  cobra.ExactArgs(2),
			RunE:  runKeyCreate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List API keys",
			Args:  cobra.NoArgs,
			RunE:  runKeyList,
		},
	)

	return cmd
}

func runKeyCreate(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	users := auth.NewUserStore(database)
	if _, err := users.GetByEmail(args[1]); err != nil {
		return fmt.Errorf("unknown user %s", args[1])
	}

	raw, key, err := auth.NewAPIKeyStore(database).Create(args[0], args[1])
	if err != nil {
		return fmt.Errorf("creating key: %w", err)
	}

	if isJSON() {
		return printJSON(map[string]string{
			"name":  key.Name,
			"email": key.Email,
			"key":   raw,
		})
	}

	fmt.Printf("API key created for %s:\n\n  %s\n\n", key.Email, raw)
	fmt.Println("This key is shown only once. Configure it with 'pt login' or PT_API_KEY.")
	return nil
}

func runKeyList(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	keys, err := auth.NewAPIKeyStore(database).List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tEMAIL\tPREFIX\tCREATED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s…\t%s\n",
			k.Name, k.Email, k.KeyPrefix, k.CreatedAt.Format("2006-01-02")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}
