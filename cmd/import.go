package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bikeshare-dashboard/storage"
)

func importCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV dataset into PostgreSQL",
		Long: `Reads the cleaned daily CSV (DATA_PATH or --data) and replaces the
contents of the daily_rentals table with it. Afterwards the dashboard can
run with DATA_SOURCE=postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			table, err := storage.NewCSVSource(a.cfg.DataPath, a.logger).Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}

			store, err := storage.NewPostgresStore(ctx, a.cfg.DSN(), a.retry(), a.logger)
			if err != nil {
				a.logger.Error("Make sure PostgreSQL is running: docker compose up -d")
				return err
			}
			defer store.Close()

			if err := store.Write(ctx, table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", table.Len(), store.Name())
			return nil
		},
	}
}
