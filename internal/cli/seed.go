package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"shareit/internal/api"
	"shareit/internal/database"
	"shareit/internal/models"
)

const defaultSeedPath = "configs/seed.yaml"

// seedFixture is the YAML layout read by the seed command.
// Users are matched by email, so reseeding does not duplicate them.
type seedFixture struct {
	Users    []seedUser    `yaml:"users"`
	Requests []seedRequest `yaml:"requests"`
	Items    []seedItem    `yaml:"items"`
}

type seedUser struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type seedRequest struct {
	Key         string `yaml:"key"`
	Requester   string `yaml:"requester"`
	Description string `yaml:"description"`
}

type seedItem struct {
	Owner       string `yaml:"owner"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
	Request     string `yaml:"request"`
}

type seedResult struct {
	Users    int
	Requests int
	Items    int
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, requests and items from a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}

			cfg, logger, closer, err := loadConfigAndLogger("seed")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			db, err := database.Open(cmd.Context(), cfg.Database, &logger)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := seed(cmd.Context(), newServices(db, nil, cfg, &logger), fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d requests, %d items\n", res.Users, res.Requests, res.Items)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", defaultSeedPath, "fixture file")

	return cmd
}

func loadFixture(path string) (*seedFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f seedFixture
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

func seed(ctx context.Context, services api.Services, f *seedFixture) (seedResult, error) {
	var res seedResult

	existing, err := services.Users.List(ctx)
	if err != nil {
		return res, err
	}
	userIDs := make(map[string]int64, len(existing)+len(f.Users))
	for _, u := range existing {
		userIDs[strings.ToLower(u.Email)] = u.ID
	}

	for _, u := range f.Users {
		key := strings.ToLower(u.Email)
		if _, ok := userIDs[key]; ok {
			continue
		}
		user := &models.User{Name: u.Name, Email: u.Email}
		if err := services.Users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		userIDs[key] = user.ID
		res.Users++
	}

	lookup := func(email string) (int64, error) {
		id, ok := userIDs[strings.ToLower(email)]
		if !ok {
			return 0, fmt.Errorf("unknown user %q", email)
		}
		return id, nil
	}

	requestIDs := make(map[string]int64, len(f.Requests))
	for _, r := range f.Requests {
		requester, err := lookup(r.Requester)
		if err != nil {
			return res, fmt.Errorf("seed request %q: %w", r.Key, err)
		}
		created, err := services.Requests.Create(ctx, requester, &models.Request{Description: r.Description})
		if err != nil {
			return res, fmt.Errorf("seed request %q: %w", r.Key, err)
		}
		if r.Key != "" {
			requestIDs[r.Key] = created.ID
		}
		res.Requests++
	}

	for _, i := range f.Items {
		owner, err := lookup(i.Owner)
		if err != nil {
			return res, fmt.Errorf("seed item %q: %w", i.Name, err)
		}
		item := &models.Item{Name: i.Name, Description: i.Description, Available: i.Available}
		if i.Request != "" {
			id, ok := requestIDs[i.Request]
			if !ok {
				return res, fmt.Errorf("seed item %q: unknown request %q", i.Name, i.Request)
			}
			item.RequestID = &id
		}
		if err := services.Items.Create(ctx, owner, item); err != nil {
			return res, fmt.Errorf("seed item %q: %w", i.Name, err)
		}
		res.Items++
	}

	return res, nil
}
