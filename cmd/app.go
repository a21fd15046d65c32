package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/config"
	"github.com/phillip/evently-go/controllers"
	"github.com/phillip/evently-go/revalidate"
	"github.com/phillip/evently-go/store"
	"github.com/phillip/evently-go/utils"
)

// openRegistry connects to Mongo and makes sure every collection index
// exists.
func openRegistry(ctx context.Context, cfg config.Config, mongo *config.Mongo) (*store.Registry, error) {
	db, err := mongo.Database(ctx)
	if err != nil {
		return nil, err
	}
	registry := store.NewRegistry(db, cfg.Mongo.Timeout)
	if err := registry.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildApp(cfg config.Config, logger zerolog.Logger, registry *store.Registry, mongo *config.Mongo) (*controllers.App, error) {
	images, err := utils.NewImageStore(cfg.Cloudinary)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}
	if images == nil {
		logger.Warn().Msg("cloudinary not configured; image uploads disabled")
	}

	revalidator := revalidate.NewRegistry(logger)
	opts := []actions.Option{
		actions.WithLogger(logger),
		actions.WithRevalidator(revalidator),
		actions.WithListFiltering(cfg.Events.ListFiltering),
		actions.WithDeleteOwnership(cfg.Events.DeleteRequiresOwner),
	}
	if mailer := utils.NewMailer(cfg.Email, logger); mailer != nil {
		opts = append(opts, actions.WithMailer(mailer))
	} else {
		logger.Warn().Msg("email not configured; order receipts disabled")
	}

	events := store.NewEventRepository(registry)
	users := store.NewUserRepository(registry)
	categories := store.NewCategoryRepository(registry)
	orders := store.NewOrderRepository(registry)

	return &controllers.App{
		Events:      actions.NewEventService(events, users, categories, opts...),
		Orders:      actions.NewOrderService(orders, events, users, opts...),
		Users:       actions.NewUserService(users, opts...),
		Categories:  actions.NewCategoryService(categories, opts...),
		Images:      images,
		Revalidator: revalidator,
		Ping:        mongo.Ping,
		Logger:      logger,
	}, nil
}
