package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
)

func newExportCmd() *cobra.Command {
	var (
		ownerID int64
		state   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's bookings to an xlsx file",
		Long:  "Export the bookings of every item owned by --owner into a spreadsheet under exports.path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ownerID <= 0 {
				return fmt.Errorf("--owner must be a positive user id")
			}
			st, err := models.ParseBookingState(state)
			if err != nil {
				return err
			}

			cfg, logger, closer, err := loadConfigAndLogger("export")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			db, err := database.Open(cmd.Context(), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			services := newServices(db, nil, cfg, &logger)
			bookings, err := services.Bookings.ListForOwner(cmd.Context(), ownerID, st, models.Page{})
			if err != nil {
				return err
			}

			path, err := export.SaveBookings(cfg.Exports.Path, ownerID, bookings, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d bookings to %s\n", len(bookings), path)
			return nil
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "owner user id")
	cmd.Flags().StringVar(&state, "state", "ALL", "booking state filter")

	return cmd
}
