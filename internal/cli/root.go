// Package cli defines the cobra command tree for shareit.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/logging"
	"shareit/internal/service"
)

const defaultConfigPath = "configs/config.yaml"

var flagConfig string

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shareit",
		Short:         "Share items with your neighbours",
		Long:          "ShareIt lets users list items, request things they need and book items owned by others.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newBackupCmd(),
		newSeedCmd(),
		newExportCmd(),
	)

	return root
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return defaultConfigPath
}

func loadConfigAndLogger(component string) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, component), closer, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// newServices builds the business services over db. bus may be nil.
func newServices(db *database.DB, bus domain.EventPublisher, cfg *config.Config, logger *zerolog.Logger) api.Services {
	return api.Services{
		Users:    service.NewUserService(db, bus, logger),
		Items:    service.NewItemService(db, bus, logger),
		Bookings: service.NewBookingService(db, bus, logger),
		Requests: service.NewRequestService(db, bus, cfg.Pagination.RequestsPageSize, logger),
	}
}
