package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shareit/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("migrate")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			// Open applies migrations.
			db, err := database.Open(cmd.Context(), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, db.Driver())
			return nil
		},
	}
}
