package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/config"
	"github.com/phillip/evently-go/store"
)

var defaultCategories = []string{"Music", "Tech", "Sports", "Art", "Food"}

func newSeedCategoriesCommand(opts *rootOptions) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "seed-categories",
		Short: "Create event categories that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewLogger(cfg.Logging)

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			mongo := config.NewMongo(cfg.Mongo)
			defer mongo.Close(context.Background())

			registry, err := openRegistry(ctx, cfg, mongo)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			svc := actions.NewCategoryService(store.NewCategoryRepository(registry), actions.WithLogger(logger))

			created, err := seedCategories(ctx, svc, names)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d categories\n", created, len(names))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&names, "name", defaultCategories, "category name (repeatable)")
	return cmd
}

// seedCategories creates each name, skipping ones that already exist.
func seedCategories(ctx context.Context, svc *actions.CategoryService, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := svc.CreateCategory(ctx, name)
		switch {
		case err == nil:
			created++
		case errors.Is(err, actions.ErrInvalidInput):
			continue
		default:
			return created, fmt.Errorf("create category %q: %w", name, err)
		}
	}
	return created, nil
}
