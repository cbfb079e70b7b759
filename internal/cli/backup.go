package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shareit/internal/database"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a SQLite backup and prune expired ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("backup")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			db, err := database.Open(cmd.Context(), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := database.NewBackupService(db, cfg.Backup, &logger)
			path, err := svc.PerformBackup(cmd.Context())
			if err != nil {
				return err
			}
			removed := svc.CleanupOldBackups()

			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s (%d expired removed)\n", path, removed)
			return nil
		},
	}
}
